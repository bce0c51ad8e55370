// Package game contains the shared session contract implemented by each game variant.
package game

import "context"

type (
	// ID is the id of a game.
	ID string

	// Type identifies the rules a game is played by.
	Type string

	// PlayerID is the username of a player in a game.
	PlayerID string

	// Game is a live game session.
	// Implementations mutate their state through Join, Leave, and ApplyMove and
	// expose it through Model and Snapshot.
	Game interface {
		// ID is unique among the other games that currently exist.
		ID() ID
		// Type identifies the variant the game is played by.
		Type() Type
		// Players is the list of players in the game, in join order.
		Players() []PlayerID
		// CreatedBy is the player that requested the game.
		CreatedBy() PlayerID
		// Join adds the player to the first open slot.
		Join(playerID PlayerID) error
		// Leave removes the player, forfeiting the game if it is in progress.
		Leave(playerID PlayerID) error
		// ApplyMove advances the game with the player's move.
		ApplyMove(m Move) error
		// Model is the projection of the game that is safe to send to players.
		Model() Instance
		// Snapshot is the projection of the game that is persisted.  It may
		// contain data that players must not see, such as trivia answers.
		Snapshot() Snapshot
	}

	// Starter is implemented by variants that require an explicit start after
	// both players have joined.  Variants without it start on their own.
	Starter interface {
		Start(ctx context.Context) error
	}
)

const (
	// TypeNim is the misère Nim variant.
	TypeNim Type = "Nim"
	// TypeTrivia is the head-to-head quiz variant.
	TypeTrivia Type = "Trivia"

	// MaxPlayers is the number of players every game is played by.
	MaxPlayers = 2
)
