package domain

import "math"

// Phase represents a capital-growth band with its position-sizing multiplier.
// Exactly one phase is active for any given balance; the last band's upper
// bound is +Inf.
type Phase struct {
	Level      int     // 1-based phase number
	LowerBound float64 // Inclusive lower balance bound
	UpperBound float64 // Exclusive upper balance bound (+Inf for the last band)
	LotFactor  float64 // Multiplier applied to the base position size
}

// Contains reports whether the balance falls inside this phase's band.
func (p Phase) Contains(balance float64) bool {
	if math.IsInf(p.UpperBound, 1) {
		return balance >= p.LowerBound
	}
	return balance >= p.LowerBound && balance < p.UpperBound
}
