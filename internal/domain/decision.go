package domain

import "time"

// RiskLevels holds the protective price levels derived for an entry.
type RiskLevels struct {
	StopLoss   float64 // Price level that closes the trade at a loss
	TakeProfit float64 // Price level that closes the trade at a profit
}

// TradePlan holds the actionable part of a decision. It is only attached to
// LONG/SHORT decisions, so a NONE decision structurally cannot carry risk
// levels or a position size.
type TradePlan struct {
	EntryPrice   float64    // Close price that triggered the signal
	Risk         RiskLevels // Stop-loss / take-profit levels
	PositionSize float64    // Lot quantity in instrument base units
}

// Decision is the immutable record emitted once per evaluation cycle.
type Decision struct {
	ID           string     // Unique identifier for the decision
	Instrument   string     // Trading symbol the decision applies to
	Signal       Direction  // LONG, SHORT or NONE
	Plan         *TradePlan // nil when Signal is NONE
	PhaseLevel   int        // Capital-growth phase active at decision time
	PhaseChanged bool       // True when the phase level differs from the previous cycle
	Balance      float64    // Account balance the decision was sized against
	Reason       string     // Diagnostic note (e.g. why a signal was downgraded)
	Timestamp    time.Time  // Open time of the bar that closed this cycle
}
