package domain

// Direction represents the direction of a trade signal.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
	None  Direction = "NONE"
)

// IsActionable reports whether the direction calls for opening a trade.
func (d Direction) IsActionable() bool {
	return d == Long || d == Short
}
