package ports

import (
	"context"

	"breakoutBot/internal/domain"
)

// Notifier delivers decision records to a human-facing channel.
type Notifier interface {
	// NotifyDecision renders and sends a single decision record.
	NotifyDecision(ctx context.Context, decision *domain.Decision) error
}
