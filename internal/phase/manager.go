package phase

import (
	"context"
	"fmt"
	"math"

	"breakoutBot/internal/domain"
	"breakoutBot/internal/ports"
)

// Band describes one configured capital-growth band.
type Band struct {
	Level      int     // 1-based phase number
	LowerBound float64 // Inclusive lower balance bound
	UpperBound float64 // Exclusive upper bound; 0 or +Inf marks the open-ended last band
	LotFactor  float64 // Position-size multiplier while this band is active
}

// Manager resolves the active capital-growth phase for a balance and reports
// transitions between consecutive cycles. The previous cycle's resolved level
// is its only carried state, owned per instance so independent instruments
// never interfere.
type Manager struct {
	bands     []domain.Phase
	logger    ports.Logger
	lastLevel int // 0 until the first resolution
}

// NewManager validates the configured bands and creates a manager.
// Bands must be ordered by level, strictly increasing, contiguous and
// non-overlapping; violations are configuration defects and fail with an
// error wrapping ports.ErrPhaseConfig.
func NewManager(bands []Band, logger ports.Logger) (*Manager, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for phase manager")
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: no bands configured", ports.ErrPhaseConfig)
	}

	phases := make([]domain.Phase, 0, len(bands))
	for i, b := range bands {
		if b.Level != i+1 {
			return nil, fmt.Errorf("%w: band %d has level %d, want %d", ports.ErrPhaseConfig, i, b.Level, i+1)
		}
		if b.LotFactor <= 0 {
			return nil, fmt.Errorf("%w: band %d has non-positive lot factor %v", ports.ErrPhaseConfig, b.Level, b.LotFactor)
		}

		upper := b.UpperBound
		if i == len(bands)-1 {
			// Last band is open-ended regardless of the configured upper bound
			upper = math.Inf(1)
		} else {
			if upper <= b.LowerBound {
				return nil, fmt.Errorf("%w: band %d upper bound %v not above lower bound %v", ports.ErrPhaseConfig, b.Level, upper, b.LowerBound)
			}
			if next := bands[i+1]; next.LowerBound != upper {
				return nil, fmt.Errorf("%w: band %d upper bound %v does not meet band %d lower bound %v", ports.ErrPhaseConfig, b.Level, upper, next.Level, next.LowerBound)
			}
		}

		phases = append(phases, domain.Phase{
			Level:      b.Level,
			LowerBound: b.LowerBound,
			UpperBound: upper,
			LotFactor:  b.LotFactor,
		})
	}

	return &Manager{bands: phases, logger: logger}, nil
}

// Resolve returns the single phase whose [lower, upper) band contains the
// balance, plus a flag that is true when the level differs from the previous
// cycle's resolved level. A balance exactly on a boundary resolves to the
// band that owns it as its lower bound, never the band below. A balance
// below the lowest bound is a configuration defect (ports.ErrPhaseConfig).
func (m *Manager) Resolve(ctx context.Context, balance float64) (domain.Phase, bool, error) {
	if balance < m.bands[0].LowerBound {
		return domain.Phase{}, false, fmt.Errorf("%w: balance %v below minimum supported phase bound %v",
			ports.ErrPhaseConfig, balance, m.bands[0].LowerBound)
	}

	for _, p := range m.bands {
		if !p.Contains(balance) {
			continue
		}
		transitioned := m.lastLevel != 0 && m.lastLevel != p.Level
		if transitioned {
			m.logger.Info(ctx, "Phase transition", map[string]interface{}{
				"fromLevel": m.lastLevel,
				"toLevel":   p.Level,
				"balance":   balance,
			})
		}
		m.lastLevel = p.Level
		return p, transitioned, nil
	}

	// Unreachable with validated contiguous bands
	return domain.Phase{}, false, fmt.Errorf("%w: no band contains balance %v", ports.ErrPhaseConfig, balance)
}

// LastLevel returns the phase level resolved in the previous cycle (0 before
// the first resolution).
func (m *Manager) LastLevel() int {
	return m.lastLevel
}
