package indicators

import (
	"context"
	"fmt"
	"math"

	"breakoutBot/internal/domain"
	"breakoutBot/internal/ports"
)

// ATRConfig holds configuration for the Average True Range indicator
type ATRConfig struct {
	IndicatorConfig
}

// ATR implements the Average True Range indicator using Wilder's smoothing.
type ATR struct {
	BaseIndicator
	config ATRConfig
}

// NewATR creates a new Average True Range indicator instance
func NewATR(config ATRConfig) *ATR {
	return &ATR{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// trueRange returns the true range of a bar against the previous close:
// the greatest of high-low, |high-prevClose| and |low-prevClose|.
func trueRange(high, low, prevClose float64) float64 {
	tr1 := high - low
	tr2 := math.Abs(high - prevClose)
	tr3 := math.Abs(low - prevClose)
	return math.Max(tr1, math.Max(tr2, tr3))
}

// Calculate computes the Average True Range value for the given bars.
// The first bar only seeds the previous close; the series of true ranges is
// folded into a single terminal value with Wilder's recursion.
func (a *ATR) Calculate(ctx context.Context, bars []*domain.Bar) (float64, error) {
	period := a.config.Period
	if len(bars) < period+1 {
		return 0, fmt.Errorf("%w: ATR needs %d bars, got %d", ports.ErrInsufficientData, period+1, len(bars))
	}

	// True ranges, skipping the seed bar
	trueRanges := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		trueRanges = append(trueRanges, trueRange(bars[i].High, bars[i].Low, bars[i-1].Close))
	}

	// First ATR is the simple average of the first 'period' true ranges
	atr := 0.0
	for i := 0; i < period; i++ {
		atr += trueRanges[i]
	}
	atr /= float64(period)

	// Wilder smoothing for the remaining true ranges
	for i := period; i < len(trueRanges); i++ {
		atr = (atr*float64(period-1) + trueRanges[i]) / float64(period)
	}

	return atr, nil
}
