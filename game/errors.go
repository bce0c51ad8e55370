package game

import "errors"

// The errors games and the manager return for rejected operations.
// Callers branch on them with errors.Is; the wrapped text carries the detail.
var (
	// ErrGameNotFound is returned when no game exists for an id, in memory or in the store.
	ErrGameNotFound = errors.New("game requested does not exist")
	// ErrInvalidState is returned when an operation is not legal for the game's current status.
	ErrInvalidState = errors.New("game is not in a valid state for the operation")
	// ErrInvalidMove is returned when a move is malformed or not legal right now.
	ErrInvalidMove = errors.New("invalid move")
	// ErrDuplicatePlayer is returned when a player tries to join a game they are already in.
	ErrDuplicatePlayer = errors.New("player already in game")
	// ErrNotInGame is returned when an operation names a player that is not in the game.
	ErrNotInGame = errors.New("player is not in the game")
	// ErrUnsupportedOperation is returned when a game type does not exist or does not support an operation.
	ErrUnsupportedOperation = errors.New("unsupported operation for game type")
)
