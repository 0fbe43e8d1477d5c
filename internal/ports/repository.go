package ports

import (
	"context"

	"breakoutBot/internal/domain"
)

// DecisionRepository defines the interface for journaling decision records.
type DecisionRepository interface {
	// SaveDecision persists a decision record.
	SaveDecision(ctx context.Context, decision *domain.Decision) error
	// FindRecent retrieves the most recent decisions for a given symbol, up to a limit.
	FindRecent(ctx context.Context, symbol string, limit int) ([]*domain.Decision, error)
	// CountTodayBySymbol counts the number of actionable (non-NONE) decisions
	// recorded today for a given symbol.
	CountTodayBySymbol(ctx context.Context, symbol string) (int, error)
}
