package indicators

import (
	"context"
	"fmt"

	"breakoutBot/internal/domain"
	"breakoutBot/internal/ports"
)

// DonchianConfig holds configuration for the Donchian channel indicator
type DonchianConfig struct {
	IndicatorConfig
}

// Channel holds the two Donchian channel boundaries. Upper >= Lower always.
type Channel struct {
	Upper float64 // Highest high over the window
	Lower float64 // Lowest low over the window
}

// Donchian computes the highest high / lowest low over a trailing window.
// The window deliberately excludes the most recent bar: the channel is built
// from the bars preceding the bar under evaluation, otherwise a close could
// never exceed the channel's own high.
type Donchian struct {
	BaseIndicator
	config DonchianConfig
}

// NewDonchian creates a new Donchian channel indicator instance
func NewDonchian(config DonchianConfig) *Donchian {
	return &Donchian{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Calculate computes the channel over the 'period' bars preceding the last bar.
func (d *Donchian) Calculate(ctx context.Context, bars []*domain.Bar) (Channel, error) {
	period := d.config.Period
	if len(bars) < period+1 {
		return Channel{}, fmt.Errorf("%w: Donchian needs %d bars, got %d", ports.ErrInsufficientData, period+1, len(bars))
	}

	// Window of the 'period' bars before the evaluation bar
	window := bars[len(bars)-period-1 : len(bars)-1]

	ch := Channel{Upper: window[0].High, Lower: window[0].Low}
	for _, b := range window[1:] {
		if b.High > ch.Upper {
			ch.Upper = b.High
		}
		if b.Low < ch.Lower {
			ch.Lower = b.Low
		}
	}
	return ch, nil
}
