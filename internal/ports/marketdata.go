package ports

import (
	"context"
	"time"

	"breakoutBot/internal/domain"
)

// MarketDataProvider defines the interface for acquiring OHLC bars and the
// account balance from an exchange. This abstraction decouples the decision
// core from any specific exchange implementation; order placement is
// deliberately absent (execution is out of scope for this system).
type MarketDataProvider interface {
	// GetBars retrieves the most recent historical bars for the given symbol.
	GetBars(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Bar, error)

	// GetBarsRange fetches all bars for a symbol/interval between start and end time.
	GetBarsRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error)

	// StreamBars starts a stream of bar updates. The handler receives every
	// update including unfinished bars; callers filter on Bar.IsFinal.
	// Returns channels to control the stream (doneCh, stopCh) or an error if
	// the connection fails.
	StreamBars(ctx context.Context, symbol, interval string, handler func(bar *domain.Bar), errHandler func(err error)) (doneCh chan struct{}, stopCh chan struct{}, err error)

	// GetAccountBalance retrieves the available balance for a specific asset (e.g., "USDT").
	GetAccountBalance(ctx context.Context, asset string) (float64, error)

	// Ping checks the connectivity to the exchange API.
	Ping(ctx context.Context) error

	// GetServerTime retrieves the current server time from the exchange.
	GetServerTime(ctx context.Context) (time.Time, error)
}
