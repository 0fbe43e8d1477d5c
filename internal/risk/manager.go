package risk

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"breakoutBot/internal/domain"
	"breakoutBot/internal/ports"
)

// Config holds configuration for risk calculation and position sizing.
type Config struct {
	StopLossATRMultiplier   float64 // e.g., 1.5
	TakeProfitATRMultiplier float64 // e.g., 3.0
	RiskPerTrade            float64 // Fraction of balance risked per trade, e.g., 0.04
	Leverage                int     // e.g., 10
	TickSize                float64 // Minimum tradable increment, e.g., 0.0001
}

// Manager derives stop-loss/take-profit levels from ATR and sizes positions
// against the account balance and the active phase's lot factor. It is
// stateless; both operations are pure functions of their inputs.
type Manager struct {
	cfg    Config
	logger ports.Logger
}

// NewManager creates a new risk manager instance.
func NewManager(cfg Config, logger ports.Logger) (*Manager, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for risk manager")
	}
	if cfg.StopLossATRMultiplier <= 0 || cfg.TakeProfitATRMultiplier <= 0 {
		return nil, fmt.Errorf("ATR multipliers must be positive")
	}
	if cfg.RiskPerTrade <= 0 || cfg.RiskPerTrade >= 1 {
		return nil, fmt.Errorf("risk per trade must be between 0.0 and 1.0 (exclusive)")
	}
	if cfg.Leverage <= 0 {
		return nil, fmt.Errorf("leverage must be positive")
	}
	if cfg.TickSize <= 0 {
		return nil, fmt.Errorf("tick size must be positive")
	}
	return &Manager{cfg: cfg, logger: logger}, nil
}

// Levels derives the stop-loss and take-profit prices for an entry.
// For LONG the stop sits below the entry and the target above; SHORT is the
// mirror image. Fails wrapping ports.ErrInvalidRisk when ATR is not positive,
// since a zero-width risk band cannot be sized safely.
func (m *Manager) Levels(ctx context.Context, direction domain.Direction, entryPrice, atr float64) (domain.RiskLevels, error) {
	if atr <= 0 {
		return domain.RiskLevels{}, fmt.Errorf("%w: ATR=%v", ports.ErrInvalidRisk, atr)
	}

	stopDistance := m.cfg.StopLossATRMultiplier * atr
	profitDistance := m.cfg.TakeProfitATRMultiplier * atr

	switch direction {
	case domain.Long:
		return domain.RiskLevels{
			StopLoss:   entryPrice - stopDistance,
			TakeProfit: entryPrice + profitDistance,
		}, nil
	case domain.Short:
		return domain.RiskLevels{
			StopLoss:   entryPrice + stopDistance,
			TakeProfit: entryPrice - profitDistance,
		}, nil
	default:
		return domain.RiskLevels{}, fmt.Errorf("%w: no risk levels for direction %s", ports.ErrInvalidRisk, direction)
	}
}

// PositionSize computes the lot quantity in instrument base units:
// balance x riskPerTrade x leverage x lotFactor / entryPrice, rounded down to
// the configured tick size. Rounding never goes up past what the balance
// supports. Fails wrapping ports.ErrSizing when the result rounds to zero.
func (m *Manager) PositionSize(ctx context.Context, balance, entryPrice, lotFactor float64) (float64, error) {
	if entryPrice <= 0 {
		return 0, fmt.Errorf("%w: entry price %v is not positive", ports.ErrSizing, entryPrice)
	}
	if balance <= 0 {
		return 0, fmt.Errorf("%w: balance %v is not positive", ports.ErrSizing, balance)
	}

	raw := balance * m.cfg.RiskPerTrade * float64(m.cfg.Leverage) * lotFactor / entryPrice

	// Floor to the tick grid in decimal arithmetic; float64 division by a
	// tick like 0.0001 lands just below the grid point and would mis-round.
	tick := decimal.NewFromFloat(m.cfg.TickSize)
	size, _ := decimal.NewFromFloat(raw).Div(tick).Floor().Mul(tick).Float64()

	if size <= 0 {
		return 0, fmt.Errorf("%w: raw size %v is below tick size %v", ports.ErrSizing, raw, m.cfg.TickSize)
	}

	m.logger.Debug(ctx, "Position sized", map[string]interface{}{
		"balance":   balance,
		"entry":     entryPrice,
		"lotFactor": lotFactor,
		"rawSize":   raw,
		"size":      size,
	})
	return size, nil
}
