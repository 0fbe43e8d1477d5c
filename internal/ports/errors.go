package ports

import "errors"

// Standard application-level errors.
// Adapters and core components wrap underlying errors with these standard
// errors so callers can branch with errors.Is.
var (
	// Engine taxonomy. The first three are recoverable within a cycle:
	// the engine answers with a NONE-signal decision (or skips the cycle
	// for ErrInsufficientData) instead of failing. ErrPhaseConfig is a
	// configuration defect and is always fatal.
	ErrInsufficientData = errors.New("not enough bars for indicator calculation")
	ErrInvalidRisk      = errors.New("risk levels cannot be derived (non-positive ATR)")
	ErrSizing           = errors.New("position size rounds to zero")
	ErrPhaseConfig      = errors.New("phase band configuration is inconsistent")

	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Exchange Specific Errors
	ErrExchangeUnavailable  = errors.New("exchange API is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)
