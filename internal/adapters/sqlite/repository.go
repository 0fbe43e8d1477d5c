package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"breakoutBot/internal/domain"
	"breakoutBot/internal/ports"
)

// Repository implements the ports.DecisionRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/decisions.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		instrument TEXT NOT NULL,
		signal TEXT NOT NULL,
		entry_price REAL DEFAULT NULL,
		stop_loss REAL DEFAULT NULL,
		take_profit REAL DEFAULT NULL,
		position_size REAL DEFAULT NULL,
		phase_level INTEGER NOT NULL,
		phase_changed INTEGER NOT NULL DEFAULT 0,
		balance REAL NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		decided_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_instrument_decided_at ON decisions (instrument, decided_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveDecision persists a decision record. The trade plan columns stay NULL
// for NONE decisions so the stored row mirrors the tagged-variant shape.
func (r *Repository) SaveDecision(ctx context.Context, decision *domain.Decision) error {
	const query = `
	INSERT INTO decisions (id, instrument, signal, entry_price, stop_loss, take_profit, position_size, phase_level, phase_changed, balance, reason, decided_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var entry, stop, take, size sql.NullFloat64
	if decision.Plan != nil {
		entry = sql.NullFloat64{Float64: decision.Plan.EntryPrice, Valid: true}
		stop = sql.NullFloat64{Float64: decision.Plan.Risk.StopLoss, Valid: true}
		take = sql.NullFloat64{Float64: decision.Plan.Risk.TakeProfit, Valid: true}
		size = sql.NullFloat64{Float64: decision.Plan.PositionSize, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		decision.ID, decision.Instrument, string(decision.Signal),
		entry, stop, take, size,
		decision.PhaseLevel, decision.PhaseChanged, decision.Balance, decision.Reason, decision.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert decision %s for %s: %w: %w", decision.ID, decision.Instrument, ports.ErrQueryFailed, err)
	}

	r.logger.Debug(ctx, "Decision saved", map[string]interface{}{"decisionID": decision.ID, "instrument": decision.Instrument, "signal": string(decision.Signal)})
	return nil
}

// FindRecent retrieves the most recent decisions for a given symbol, up to a limit.
func (r *Repository) FindRecent(ctx context.Context, symbol string, limit int) ([]*domain.Decision, error) {
	const query = `
	SELECT id, instrument, signal, entry_price, stop_loss, take_profit, position_size, phase_level, phase_changed, balance, reason, decided_at
	FROM decisions
	WHERE instrument = ?
	ORDER BY decided_at DESC
	LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent decisions for %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var decisions []*domain.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decision rows for %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	return decisions, nil
}

// CountTodayBySymbol counts the number of actionable (non-NONE) decisions
// recorded today for a given symbol.
func (r *Repository) CountTodayBySymbol(ctx context.Context, symbol string) (int, error) {
	const query = `
	SELECT COUNT(*)
	FROM decisions
	WHERE instrument = ? AND signal != 'NONE' AND decided_at >= ?`

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)

	var count int
	err := r.db.QueryRowContext(ctx, query, symbol, startOfDay).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count today's decisions for %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	return count, nil
}

func scanDecision(rows *sql.Rows) (*domain.Decision, error) {
	var (
		d                       domain.Decision
		signal                  string
		entry, stop, take, size sql.NullFloat64
	)
	if err := rows.Scan(&d.ID, &d.Instrument, &signal, &entry, &stop, &take, &size,
		&d.PhaseLevel, &d.PhaseChanged, &d.Balance, &d.Reason, &d.Timestamp); err != nil {
		return nil, fmt.Errorf("failed to scan decision row: %w: %w", ports.ErrQueryFailed, err)
	}
	d.Signal = domain.Direction(signal)

	if d.Signal.IsActionable() && entry.Valid {
		d.Plan = &domain.TradePlan{
			EntryPrice: entry.Float64,
			Risk: domain.RiskLevels{
				StopLoss:   stop.Float64,
				TakeProfit: take.Float64,
			},
			PositionSize: size.Float64,
		}
	}
	return &d, nil
}
