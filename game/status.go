package game

// Status is the state of a game.
// The values are stored and sent over the wire, so they must not change.
type Status string

const (
	// WaitingToStart is the status of a game that has open player slots or has
	// not had its start triggered.
	WaitingToStart Status = "WAITING_TO_START"
	// InProgress is the status of a game that accepts moves.
	InProgress Status = "IN_PROGRESS"
	// Over is the status of a game that has ended.  Games never leave it.
	Over Status = "OVER"
)

// String returns the wire value for the status.
func (s Status) String() string {
	return string(s)
}
