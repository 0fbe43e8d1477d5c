package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"breakoutBot/config"
	"breakoutBot/internal/domain"
	"breakoutBot/internal/ports"
)

const (
	maxBarCacheSize = 500 // Limit cache size to avoid memory issues
)

// DecisionEngine runs one evaluation cycle over closed bars and a balance.
type DecisionEngine interface {
	Evaluate(ctx context.Context, bars []*domain.Bar, balance float64) (*domain.Decision, error)
}

// Service orchestrates the evaluation cycles: it keeps the rolling
// closed-bar window fed from the bar stream, queries the account balance,
// runs the decision engine once per closed bar and hands the resulting
// decision to the notifier and the journal.
type Service struct {
	cfg      *config.Config
	logger   ports.Logger
	market   ports.MarketDataProvider
	repo     ports.DecisionRepository
	notifier ports.Notifier // May be nil; notification is optional
	engine   DecisionEngine

	requiredBars int

	// State fields
	mu       sync.Mutex // Guards barCache, fatalErr and cycle execution
	barCache []*domain.Bar
	fatalErr error              // First fatal cycle error; stops the service
	cancel   context.CancelFunc // Set by Start, used to halt on fatal errors
}

// NewService creates a new application service instance.
func NewService(
	cfg *config.Config,
	logger ports.Logger,
	market ports.MarketDataProvider,
	repo ports.DecisionRepository,
	notifier ports.Notifier,
	eng DecisionEngine,
	requiredBars int,
) (*Service, error) {
	// Notifier is optional; everything else is required
	if cfg == nil || logger == nil || market == nil || repo == nil || eng == nil {
		return nil, fmt.Errorf("missing required dependencies for Service")
	}
	if requiredBars <= 0 {
		return nil, fmt.Errorf("requiredBars must be positive")
	}

	return &Service{
		cfg:          cfg,
		logger:       logger,
		market:       market,
		repo:         repo,
		notifier:     notifier,
		engine:       eng,
		requiredBars: requiredBars,
		barCache:     make([]*domain.Bar, 0, maxBarCacheSize),
	}, nil
}

// Start begins the evaluation loop. It blocks until the context is cancelled,
// a shutdown signal arrives, or a fatal error occurs.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting decision service...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancel = cancel

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
		cancel()
	}()

	// 1. Verify exchange connectivity
	if err := s.market.Ping(ctx); err != nil {
		s.logger.Error(ctx, err, "Exchange not reachable")
		return fmt.Errorf("exchange ping failed: %w", err)
	}

	s.checkClockDrift(ctx)

	// 2. Preload the closed-bar window for the first cycle
	s.logger.Info(ctx, "Loading initial bars", map[string]interface{}{"required": s.requiredBars})
	initialBars, err := s.market.GetBars(ctx, s.cfg.Symbol, s.cfg.Interval, s.requiredBars+1)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load initial bars")
		return fmt.Errorf("failed to load initial bars: %w", err)
	}
	// The most recent bar from the REST endpoint may still be in progress;
	// a bar whose close time has not passed yet is not a closed bar.
	s.barCache = closedBars(initialBars, time.Now())
	s.logger.Info(ctx, "Loaded initial bars", map[string]interface{}{"count": len(s.barCache)})

	// 3. Start the bar stream; handleBarEvent drives everything from here
	wsDoneCh, wsStopCh, err := s.market.StreamBars(ctx, s.cfg.Symbol, s.cfg.Interval, s.handleBarEvent, s.handleStreamError)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to start bar stream")
		return fmt.Errorf("failed to start bar stream: %w", err)
	}
	s.logger.Info(ctx, "Bar stream started", map[string]interface{}{"symbol": s.cfg.Symbol, "interval": s.cfg.Interval})

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Main context cancelled, initiating shutdown...")
		select {
		case wsStopCh <- struct{}{}:
			s.logger.Info(ctx, "Stop signal sent to bar stream")
		default:
			s.logger.Warn(ctx, "Failed to send stop signal to bar stream (already closed?)")
		}
		select {
		case <-wsDoneCh:
			s.logger.Info(ctx, "Bar stream shut down gracefully")
		case <-time.After(5 * time.Second):
			s.logger.Warn(ctx, "Timeout waiting for bar stream to shut down")
		}
	case <-wsDoneCh:
		// Stream closed unexpectedly (e.g., max reconnect attempts failed)
		s.logger.Error(ctx, fmt.Errorf("bar stream closed unexpectedly"), "Bar stream stopped")
		return fmt.Errorf("bar stream stopped unexpectedly")
	}

	s.mu.Lock()
	fatal := s.fatalErr
	s.mu.Unlock()
	if fatal != nil {
		return fatal
	}

	s.logger.Info(ctx, "Decision service stopped.")
	return nil
}

// handleBarEvent processes incoming bar data from the stream. One closed bar
// equals one evaluation cycle; cycles for this instance never overlap thanks
// to the mutex.
func (s *Service) handleBarEvent(bar *domain.Bar) {
	ctx := context.Background()

	s.logger.Debug(ctx, "Received bar event", map[string]interface{}{
		"symbol":   bar.Symbol,
		"interval": bar.Interval,
		"close":    bar.Close,
		"isFinal":  bar.IsFinal,
	})

	// Only closed bars trigger a cycle; the in-progress bar is ignored
	if !bar.IsFinal {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Update the rolling window, dropping a duplicate re-delivery of the
	// same bar after a stream reconnect
	if n := len(s.barCache); n > 0 && !bar.OpenTime.After(s.barCache[n-1].OpenTime) {
		s.logger.Warn(ctx, "Ignoring out-of-order bar", map[string]interface{}{"openTime": bar.OpenTime})
		return
	}
	s.barCache = append(s.barCache, bar)
	if len(s.barCache) > maxBarCacheSize {
		s.barCache = s.barCache[len(s.barCache)-maxBarCacheSize:]
	}

	if err := s.runCycle(ctx); err != nil {
		// Fatal by definition: recoverable conditions surface as NONE
		// decisions, never as errors. A configuration defect must not be
		// retried, so the instance is halted.
		s.logger.Error(ctx, err, "Evaluation cycle failed fatally")
		if s.fatalErr == nil {
			s.fatalErr = err
		}
		if s.cancel != nil {
			s.cancel()
		}
	}
}

// runCycle executes one evaluation cycle: balance, engine, notify, persist.
func (s *Service) runCycle(ctx context.Context) error {
	balance, err := s.market.GetAccountBalance(ctx, s.cfg.QuoteAsset)
	if err != nil {
		// Transient exchange failure: skip this cycle, the next bar retries
		s.logger.Warn(ctx, "Skipping cycle: balance unavailable", map[string]interface{}{"error": err.Error()})
		return nil
	}

	decision, err := s.engine.Evaluate(ctx, s.barCache, balance)
	if err != nil {
		return err
	}
	if decision == nil {
		// Not enough data yet; silent skip
		return nil
	}

	s.applyDailyCap(ctx, decision)

	s.logger.Info(ctx, "Decision made", map[string]interface{}{
		"decisionID":   decision.ID,
		"signal":       string(decision.Signal),
		"phaseLevel":   decision.PhaseLevel,
		"phaseChanged": decision.PhaseChanged,
		"balance":      decision.Balance,
	})

	if err := s.repo.SaveDecision(ctx, decision); err != nil {
		// Journal failure should not lose the notification
		s.logger.Error(ctx, err, "Failed to journal decision", map[string]interface{}{"decisionID": decision.ID})
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyDecision(ctx, decision); err != nil {
			s.logger.Error(ctx, err, "Failed to deliver decision notification", map[string]interface{}{"decisionID": decision.ID})
		}
	}

	return nil
}

// applyDailyCap downgrades an actionable decision to NONE once the
// configured number of actionable decisions has been journaled today. The
// cap keeps a runaway signal from flooding the notification channel; a
// count query failure leaves the decision untouched.
func (s *Service) applyDailyCap(ctx context.Context, decision *domain.Decision) {
	if s.cfg.MaxDecisionsPerDay <= 0 || !decision.Signal.IsActionable() {
		return
	}

	count, err := s.repo.CountTodayBySymbol(ctx, decision.Instrument)
	if err != nil {
		s.logger.Warn(ctx, "Daily cap check skipped: count unavailable", map[string]interface{}{"error": err.Error()})
		return
	}
	if count < s.cfg.MaxDecisionsPerDay {
		return
	}

	s.logger.Warn(ctx, "Signal downgraded: daily decision cap reached", map[string]interface{}{
		"signal": string(decision.Signal),
		"count":  count,
		"cap":    s.cfg.MaxDecisionsPerDay,
	})
	decision.Reason = fmt.Sprintf("downgraded %s: daily cap of %d actionable decisions reached", decision.Signal, s.cfg.MaxDecisionsPerDay)
	decision.Signal = domain.None
	decision.Plan = nil
}

// checkClockDrift compares the exchange server clock against the local one.
// Indicator windows are keyed by bar open times from the exchange, so a
// large skew usually points at a broken local clock.
func (s *Service) checkClockDrift(ctx context.Context) {
	serverTime, err := s.market.GetServerTime(ctx)
	if err != nil {
		s.logger.Warn(ctx, "Could not read exchange server time", map[string]interface{}{"error": err.Error()})
		return
	}

	drift := time.Since(serverTime)
	if drift < 0 {
		drift = -drift
	}
	if drift > time.Minute {
		s.logger.Warn(ctx, "Local clock drifts from exchange server time", map[string]interface{}{
			"serverTime": serverTime,
			"drift":      drift.String(),
		})
		return
	}
	s.logger.Debug(ctx, "Clock drift within tolerance", map[string]interface{}{"drift": drift.String()})
}

// handleStreamError receives errors reported by the bar stream.
func (s *Service) handleStreamError(err error) {
	s.logger.Warn(context.Background(), "Bar stream error", map[string]interface{}{"error": err.Error()})
}

func closedBars(bars []*domain.Bar, now time.Time) []*domain.Bar {
	out := make([]*domain.Bar, 0, len(bars))
	for _, b := range bars {
		if b.IsFinal && !b.CloseTime.After(now) {
			out = append(out, b)
		}
	}
	return out
}
