package indicators

import (
	"context"
	"fmt"
	"math"

	"breakoutBot/internal/domain"
	"breakoutBot/internal/ports"
)

// ADXConfig holds configuration for the Average Directional Index indicator
type ADXConfig struct {
	IndicatorConfig
}

// ADX implements Wilder's Average Directional Index, a bounded trend-strength
// oscillator in [0,100].
type ADX struct {
	BaseIndicator
	config ADXConfig
}

// NewADX creates a new Average Directional Index indicator instance
func NewADX(config ADXConfig) *ADX {
	return &ADX{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Calculate computes the terminal ADX value for the given bars.
// Directional movement and true range are seeded with simple averages over
// the first 'period' deltas, then Wilder-smoothed; DX values are folded into
// ADX the same way. Only the latest value is returned.
func (a *ADX) Calculate(ctx context.Context, bars []*domain.Bar) (float64, error) {
	period := a.config.Period
	if len(bars) < period+1 {
		return 0, fmt.Errorf("%w: ADX needs %d bars, got %d", ports.ErrInsufficientData, period+1, len(bars))
	}

	// Per-bar directional movement and true range, skipping the seed bar
	n := len(bars) - 1
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	trs := make([]float64, n)
	for i := 1; i < len(bars); i++ {
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low
		if upMove > downMove && upMove > 0 {
			plusDM[i-1] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i-1] = downMove
		}
		trs[i-1] = trueRange(bars[i].High, bars[i].Low, bars[i-1].Close)
	}

	// Seed smoothed values with simple averages of the first 'period' deltas
	var smTR, smPlus, smMinus float64
	for i := 0; i < period; i++ {
		smTR += trs[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}
	smTR /= float64(period)
	smPlus /= float64(period)
	smMinus /= float64(period)

	dx := func() (float64, bool) {
		if smTR == 0 {
			return 0, false // pathological flat data
		}
		plusDI := 100 * smPlus / smTR
		minusDI := 100 * smMinus / smTR
		den := plusDI + minusDI
		if den == 0 {
			return 0, false
		}
		return 100 * math.Abs(plusDI-minusDI) / den, true
	}

	adx, haveADX := dx()

	// Wilder smoothing for the remaining deltas, folding DX into ADX
	for i := period; i < n; i++ {
		smTR = (smTR*float64(period-1) + trs[i]) / float64(period)
		smPlus = (smPlus*float64(period-1) + plusDM[i]) / float64(period)
		smMinus = (smMinus*float64(period-1) + minusDM[i]) / float64(period)

		d, ok := dx()
		if !ok {
			continue
		}
		if !haveADX {
			adx = d
			haveADX = true
			continue
		}
		adx = (adx*float64(period-1) + d) / float64(period)
	}

	// Bound to [0,100]
	if adx > 100 {
		adx = 100
	} else if adx < 0 {
		adx = 0
	}

	return adx, nil
}
