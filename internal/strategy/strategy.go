package strategy

import (
	"context"
	"fmt"

	"breakoutBot/internal/domain"
	"breakoutBot/internal/ports"
	"breakoutBot/internal/strategy/indicators"
)

// Config holds parameters for the breakout strategy.
type Config struct {
	DonchianPeriod int     // e.g., 20
	ADXPeriod      int     // e.g., 14
	ATRPeriod      int     // e.g., 14
	ADXThreshold   float64 // e.g., 25.0; breakouts below this trend strength are ignored
}

// Snapshot holds the indicator values computed for the most recent closed bar.
// It is ephemeral: one snapshot per evaluation cycle, never persisted.
type Snapshot struct {
	DonchianUpper float64
	DonchianLower float64
	ADX           float64
	ATR           float64
}

// Strategy computes indicator snapshots and detects Donchian channel
// breakouts gated by ADX trend strength. It holds no state between cycles;
// evaluating the same inputs twice yields the same signal.
type Strategy struct {
	cfg      Config
	logger   ports.Logger
	donchian *indicators.Donchian
	adx      *indicators.ADX
	atr      *indicators.ATR
}

// New creates a new Strategy instance.
func New(cfg Config, logger ports.Logger) (*Strategy, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for strategy")
	}
	if cfg.DonchianPeriod <= 0 || cfg.ADXPeriod <= 0 || cfg.ATRPeriod <= 0 {
		return nil, fmt.Errorf("strategy periods must be positive")
	}
	if cfg.ADXThreshold < 0 || cfg.ADXThreshold >= 100 {
		return nil, fmt.Errorf("ADX threshold must be in [0,100)")
	}
	return &Strategy{
		cfg:      cfg,
		logger:   logger,
		donchian: indicators.NewDonchian(indicators.DonchianConfig{IndicatorConfig: indicators.IndicatorConfig{Period: cfg.DonchianPeriod}}),
		adx:      indicators.NewADX(indicators.ADXConfig{IndicatorConfig: indicators.IndicatorConfig{Period: cfg.ADXPeriod}}),
		atr:      indicators.NewATR(indicators.ATRConfig{IndicatorConfig: indicators.IndicatorConfig{Period: cfg.ATRPeriod}}),
	}, nil
}

// RequiredDataPoints returns the minimum number of closed bars needed for a
// snapshot: the longest indicator period plus one seed bar for the
// delta-based calculations.
func (s *Strategy) RequiredDataPoints() int {
	maxPeriod := s.cfg.DonchianPeriod
	if s.cfg.ADXPeriod > maxPeriod {
		maxPeriod = s.cfg.ADXPeriod
	}
	if s.cfg.ATRPeriod > maxPeriod {
		maxPeriod = s.cfg.ATRPeriod
	}
	return maxPeriod + 1
}

// ComputeSnapshot calculates all indicator values for the latest closed bar.
// Returns an error wrapping ports.ErrInsufficientData when the window is too
// short for any of the indicators.
func (s *Strategy) ComputeSnapshot(ctx context.Context, bars []*domain.Bar) (*Snapshot, error) {
	if len(bars) < s.RequiredDataPoints() {
		return nil, fmt.Errorf("%w: strategy needs %d bars, got %d", ports.ErrInsufficientData, s.RequiredDataPoints(), len(bars))
	}

	channel, err := s.donchian.Calculate(ctx, bars)
	if err != nil {
		return nil, fmt.Errorf("donchian calculation failed: %w", err)
	}
	adx, err := s.adx.Calculate(ctx, bars)
	if err != nil {
		return nil, fmt.Errorf("ADX calculation failed: %w", err)
	}
	atr, err := s.atr.Calculate(ctx, bars)
	if err != nil {
		return nil, fmt.Errorf("ATR calculation failed: %w", err)
	}

	return &Snapshot{
		DonchianUpper: channel.Upper,
		DonchianLower: channel.Lower,
		ADX:           adx,
		ATR:           atr,
	}, nil
}

// Detect decides the breakout direction for the given snapshot and close
// price. A close exactly on a channel boundary is not a breakout (strict
// inequality), which avoids signal flapping on a flat market; any price
// position with ADX at or below the threshold yields None.
func (s *Strategy) Detect(ctx context.Context, snap *Snapshot, closePrice float64) domain.Direction {
	if snap.ADX <= s.cfg.ADXThreshold {
		s.logger.Debug(ctx, "Trend filter closed: ADX at or below threshold", map[string]interface{}{
			"adx":       snap.ADX,
			"threshold": s.cfg.ADXThreshold,
		})
		return domain.None
	}

	switch {
	case closePrice > snap.DonchianUpper:
		s.logger.Info(ctx, "Breakout above Donchian channel", map[string]interface{}{
			"close": closePrice,
			"upper": snap.DonchianUpper,
			"adx":   snap.ADX,
		})
		return domain.Long
	case closePrice < snap.DonchianLower:
		s.logger.Info(ctx, "Breakout below Donchian channel", map[string]interface{}{
			"close": closePrice,
			"lower": snap.DonchianLower,
			"adx":   snap.ADX,
		})
		return domain.Short
	default:
		return domain.None
	}
}
