package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"breakoutBot/internal/domain"
	"breakoutBot/internal/ports"
	"breakoutBot/internal/strategy"
)

// SignalStrategy computes indicator snapshots and detects breakout signals.
type SignalStrategy interface {
	RequiredDataPoints() int
	ComputeSnapshot(ctx context.Context, bars []*domain.Bar) (*strategy.Snapshot, error)
	Detect(ctx context.Context, snap *strategy.Snapshot, closePrice float64) domain.Direction
}

// RiskManager derives protective price levels and position sizes.
type RiskManager interface {
	Levels(ctx context.Context, direction domain.Direction, entryPrice, atr float64) (domain.RiskLevels, error)
	PositionSize(ctx context.Context, balance, entryPrice, lotFactor float64) (float64, error)
}

// PhaseResolver maps an account balance to the active capital-growth phase.
type PhaseResolver interface {
	Resolve(ctx context.Context, balance float64) (domain.Phase, bool, error)
}

// Engine turns a closed-bar window and the current balance into one
// immutable decision record per evaluation cycle. The pipeline is pure and
// synchronous; the only carried state lives inside the phase resolver, so
// one engine instance per instrument runs independently of any other.
type Engine struct {
	instrument string
	strat      SignalStrategy
	risk       RiskManager
	phases     PhaseResolver
	logger     ports.Logger
}

// New creates a new decision engine for a single instrument.
func New(instrument string, strat SignalStrategy, risk RiskManager, phases PhaseResolver, logger ports.Logger) (*Engine, error) {
	if instrument == "" {
		return nil, fmt.Errorf("instrument is required for engine")
	}
	if strat == nil || risk == nil || phases == nil {
		return nil, fmt.Errorf("strategy, risk manager and phase resolver are required for engine")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for engine")
	}
	return &Engine{
		instrument: instrument,
		strat:      strat,
		risk:       risk,
		phases:     phases,
		logger:     logger,
	}, nil
}

// Evaluate runs one evaluation cycle over the given closed bars and balance.
//
// Insufficient data produces no decision and no error (silent skip). A
// configuration defect in the phase bands is fatal and propagates. Every
// other failure downgrades the cycle to a NONE decision carrying a
// diagnostic reason, so downstream collaborators always hear "no action"
// rather than silence.
func (e *Engine) Evaluate(ctx context.Context, bars []*domain.Bar, balance float64) (*domain.Decision, error) {
	if len(bars) == 0 {
		return nil, nil
	}

	snap, err := e.strat.ComputeSnapshot(ctx, bars)
	if err != nil {
		if errors.Is(err, ports.ErrInsufficientData) {
			e.logger.Debug(ctx, "Skipping cycle: not enough closed bars", map[string]interface{}{
				"available": len(bars),
				"required":  e.strat.RequiredDataPoints(),
			})
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot computation failed: %w", err)
	}

	lastBar := bars[len(bars)-1]
	signal := e.strat.Detect(ctx, snap, lastBar.Close)

	// The phase is recomputed every cycle regardless of the signal, so
	// transition events fire even in a flat market. A config error here is
	// a business-rule inconsistency and must halt the instance.
	activePhase, phaseChanged, err := e.phases.Resolve(ctx, balance)
	if err != nil {
		return nil, fmt.Errorf("phase resolution failed: %w", err)
	}

	decision := &domain.Decision{
		ID:           uuid.NewString(),
		Instrument:   e.instrument,
		Signal:       signal,
		PhaseLevel:   activePhase.Level,
		PhaseChanged: phaseChanged,
		Balance:      balance,
		Timestamp:    lastBar.OpenTime,
	}

	if !signal.IsActionable() {
		return decision, nil
	}

	entry := lastBar.Close

	levels, err := e.risk.Levels(ctx, signal, entry, snap.ATR)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidRisk) {
			e.logger.Warn(ctx, "Signal downgraded: risk levels unavailable", map[string]interface{}{
				"signal": string(signal),
				"atr":    snap.ATR,
			})
			decision.Signal = domain.None
			decision.Reason = fmt.Sprintf("downgraded %s: %v", signal, err)
			return decision, nil
		}
		return nil, fmt.Errorf("risk level derivation failed: %w", err)
	}

	size, err := e.risk.PositionSize(ctx, balance, entry, activePhase.LotFactor)
	if err != nil {
		if errors.Is(err, ports.ErrSizing) {
			e.logger.Warn(ctx, "Signal downgraded: position size rounds to zero", map[string]interface{}{
				"signal":  string(signal),
				"balance": balance,
				"entry":   entry,
			})
			decision.Signal = domain.None
			decision.Reason = fmt.Sprintf("downgraded %s: %v", signal, err)
			return decision, nil
		}
		return nil, fmt.Errorf("position sizing failed: %w", err)
	}

	decision.Plan = &domain.TradePlan{
		EntryPrice:   entry,
		Risk:         levels,
		PositionSize: size,
	}
	return decision, nil
}
