// Package nim implements misère Nim: players alternate taking 1-3 objects from
// a shared pool and the player forced to take the last object loses.
package nim

import (
	"fmt"

	"github.com/fanout-games/arcade/game"
)

const (
	// MaxObjects is the size of the pool every game starts with.
	MaxObjects = 21
	// MinTake and MaxTake bound how many objects a move may remove.
	MinTake = 1
	MaxTake = 3
)

// Game is a Nim game.  It is not safe for concurrent use; the manager
// serializes access to it.
type Game struct {
	id        game.ID
	createdBy game.PlayerID
	players   []game.PlayerID
	state     game.State
}

// New creates an empty Nim game with a full pool.
func New(id game.ID, createdBy game.PlayerID) *Game {
	return &Game{
		id:        id,
		createdBy: createdBy,
		state: game.State{
			Status:           game.WaitingToStart,
			Moves:            []game.NimMove{},
			RemainingObjects: MaxObjects,
		},
	}
}

// FromSnapshot restores a Nim game from its persisted form.
func FromSnapshot(snap game.Snapshot) (*Game, error) {
	if snap.GameType != game.TypeNim {
		return nil, fmt.Errorf("restoring nim game: snapshot has type %q", snap.GameType)
	}
	snap = snap.Copy()
	g := Game{
		id:        snap.GameID,
		createdBy: snap.CreatedBy,
		players:   snap.Players,
		state:     snap.State,
	}
	return &g, nil
}

// ID implements game.Game.
func (g *Game) ID() game.ID {
	return g.id
}

// Type implements game.Game.
func (g *Game) Type() game.Type {
	return game.TypeNim
}

// Players implements game.Game.
func (g *Game) Players() []game.PlayerID {
	players := make([]game.PlayerID, len(g.players))
	copy(players, g.players)
	return players
}

// CreatedBy implements game.Game.
func (g *Game) CreatedBy() game.PlayerID {
	return g.createdBy
}

// Join adds the player to the first open slot.
// The game starts as soon as the second slot is filled.
func (g *Game) Join(playerID game.PlayerID) error {
	switch {
	case g.state.Status != game.WaitingToStart:
		return fmt.Errorf("cannot join game: already started: %w", game.ErrInvalidState)
	case g.hasPlayer(playerID):
		return fmt.Errorf("cannot join game: %w", game.ErrDuplicatePlayer)
	}
	s := g.state.Copy()
	switch {
	case s.Player1 == "":
		s.Player1 = playerID
	default:
		s.Player2 = playerID
	}
	if s.Player1 != "" && s.Player2 != "" {
		s.Status = game.InProgress
	}
	g.players = append(g.players, playerID)
	g.state = s
	return nil
}

// Leave removes the player.  Leaving a game in progress forfeits it, making
// the remaining player the winner.
func (g *Game) Leave(playerID game.PlayerID) error {
	if !g.hasPlayer(playerID) {
		return fmt.Errorf("cannot leave game: player %v: %w", playerID, game.ErrNotInGame)
	}
	s := g.state.Copy()
	switch playerID {
	case s.Player1:
		s.Player1 = ""
	case s.Player2:
		s.Player2 = ""
	}
	if s.Status == game.InProgress {
		s.Status = game.Over
		remaining := s.Player1
		if remaining == "" {
			remaining = s.Player2
		}
		if remaining != "" {
			s.Winners = []game.PlayerID{remaining}
		}
	}
	g.players = removePlayer(g.players, playerID)
	g.state = s
	return nil
}

// ApplyMove takes objects from the pool for the player.
// Taking the last object loses the game.
func (g *Game) ApplyMove(m game.Move) error {
	s := g.state
	switch {
	case s.Status != game.InProgress:
		return fmt.Errorf("%w: game is not in progress", game.ErrInvalidMove)
	case !g.hasPlayer(m.PlayerID):
		return fmt.Errorf("%w: player not in game", game.ErrInvalidMove)
	case m.PlayerID != g.turnPlayer():
		return fmt.Errorf("%w: not player %v's turn", game.ErrInvalidMove, m.PlayerID)
	case m.Move.NumObjects < MinTake || m.Move.NumObjects > MaxTake:
		return fmt.Errorf("%w: must take between %v and %v objects", game.ErrInvalidMove, MinTake, MaxTake)
	case m.Move.NumObjects > s.RemainingObjects:
		return fmt.Errorf("%w: only %v objects remain", game.ErrInvalidMove, s.RemainingObjects)
	}
	s = s.Copy()
	s.Moves = append(s.Moves, game.NimMove{
		Player:     m.PlayerID,
		NumObjects: m.Move.NumObjects,
	})
	s.RemainingObjects -= m.Move.NumObjects
	if s.RemainingObjects == 0 {
		s.Status = game.Over
		s.Winners = []game.PlayerID{otherPlayer(s, m.PlayerID)}
	}
	g.state = s
	return nil
}

// Model implements game.Game.
func (g *Game) Model() game.Instance {
	i := game.Instance{
		GameID:    g.id,
		GameType:  game.TypeNim,
		Players:   g.players,
		State:     g.state,
		CreatedBy: g.createdBy,
	}
	return i.Copy()
}

// Snapshot implements game.Game.  Nim has no hidden state, so the snapshot is
// the public model.
func (g *Game) Snapshot() game.Snapshot {
	return game.Snapshot{
		Instance: g.Model(),
	}
}

// turnPlayer is the player expected to move next.  Moves alternate starting
// with the first slot.
func (g *Game) turnPlayer() game.PlayerID {
	if len(g.state.Moves)%2 == 0 {
		return g.state.Player1
	}
	return g.state.Player2
}

func (g *Game) hasPlayer(playerID game.PlayerID) bool {
	for _, p := range g.players {
		if p == playerID {
			return true
		}
	}
	return false
}

// otherPlayer is the occupant of the slot playerID does not hold.
func otherPlayer(s game.State, playerID game.PlayerID) game.PlayerID {
	if s.Player1 == playerID {
		return s.Player2
	}
	return s.Player1
}

func removePlayer(players []game.PlayerID, playerID game.PlayerID) []game.PlayerID {
	remaining := make([]game.PlayerID, 0, len(players))
	for _, p := range players {
		if p != playerID {
			remaining = append(remaining, p)
		}
	}
	return remaining
}
