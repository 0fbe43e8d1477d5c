package indicators

// IndicatorConfig holds common configuration for indicators
type IndicatorConfig struct {
	Period int
}

// BaseIndicator provides common functionality for indicators
type BaseIndicator struct {
	Config IndicatorConfig
}

// RequiredDataPoints returns the minimum number of bars needed for calculation.
// Delta-based indicators (ATR, ADX, Donchian-with-breakout-bar) need one seed
// bar on top of the period itself.
func (b *BaseIndicator) RequiredDataPoints() int {
	return b.Config.Period + 1
}
