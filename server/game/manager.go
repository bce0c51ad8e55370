// Package game manages the live game sessions on the server.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/fanout-games/arcade/db/gamestate"
	"github.com/fanout-games/arcade/game"
	"github.com/fanout-games/arcade/server/log"
)

type (
	// Manager owns the games that are currently playable.  Every mutation is
	// persisted through the dao before its result is returned, and games that
	// are not in memory are rehydrated from the dao on demand.
	Manager struct {
		mu    sync.Mutex
		games map[game.ID]game.Game
		ManagerConfig
	}

	// ManagerConfig is used to create a game Manager.
	ManagerConfig struct {
		// Log is used to log errors and other information.
		Log log.Logger
		// Dao loads and saves game snapshots.
		Dao Dao
		// Variants maps each playable game type to its constructors.
		Variants map[game.Type]Variant
	}

	// Variant holds the constructors for one game type.
	Variant struct {
		// New creates an empty game.
		New func(id game.ID, createdBy game.PlayerID) (game.Game, error)
		// Load restores a game from its persisted snapshot.
		Load func(snap game.Snapshot) (game.Game, error)
	}

	// Dao is the persistence the manager needs.  *gamestate.Dao implements it.
	Dao interface {
		Save(ctx context.Context, snap game.Snapshot) error
		Find(ctx context.Context, id game.ID) (*game.Snapshot, error)
		List(ctx context.Context, f gamestate.Filter) ([]game.Snapshot, error)
	}
)

// NewManager creates a game manager from the config.
func (cfg ManagerConfig) NewManager() (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating game manager: validation: %w", err)
	}
	m := Manager{
		games:         make(map[game.ID]game.Game),
		ManagerConfig: cfg,
	}
	return &m, nil
}

// validate ensures the configuration has no errors.
func (cfg ManagerConfig) validate() error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.Dao == nil:
		return fmt.Errorf("dao required")
	case len(cfg.Variants) == 0:
		return fmt.Errorf("at least one game variant required")
	}
	for gameType, variant := range cfg.Variants {
		if variant.New == nil || variant.Load == nil {
			return fmt.Errorf("variant %v: New and Load constructors required", gameType)
		}
	}
	return nil
}

// AddGame creates and persists an empty game of the type.
func (m *Manager) AddGame(ctx context.Context, gameType game.Type, createdBy game.PlayerID) (game.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	variant, ok := m.Variants[gameType]
	if !ok {
		return "", fmt.Errorf("invalid game type %q: %w", gameType, game.ErrUnsupportedOperation)
	}
	id := game.ID(uuid.NewString())
	g, err := variant.New(id, createdBy)
	if err != nil {
		return "", fmt.Errorf("creating %v game: %w", gameType, err)
	}
	if err := m.Dao.Save(ctx, g.Snapshot()); err != nil {
		return "", err
	}
	m.games[id] = g
	gamesCreated.WithLabelValues(string(gameType)).Inc()
	return id, nil
}

// JoinGame adds the player to the game and returns its new state.
func (m *Manager) JoinGame(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, err := m.loadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := g.Join(playerID); err != nil {
		return nil, err
	}
	return m.publish(ctx, g)
}

// StartGame starts the game and returns its new state.  Variants that start
// on their own reject the operation.
func (m *Manager) StartGame(ctx context.Context, id game.ID) (*game.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, err := m.loadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	starter, ok := g.(game.Starter)
	if !ok {
		return nil, fmt.Errorf("game type %v does not support starting: %w", g.Type(), game.ErrUnsupportedOperation)
	}
	if err := starter.Start(ctx); err != nil {
		return nil, err
	}
	return m.publish(ctx, g)
}

// LeaveGame removes the player from the game and returns its new state.
// Leaving a game in progress forfeits it.
func (m *Manager) LeaveGame(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, err := m.loadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := g.Leave(playerID); err != nil {
		return nil, err
	}
	return m.publish(ctx, g)
}

// ApplyMove advances the move's game and returns its new state.
func (m *Manager) ApplyMove(ctx context.Context, mv game.Move) (*game.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, err := m.loadGame(ctx, mv.GameID)
	if err != nil {
		return nil, err
	}
	if err := g.ApplyMove(mv); err != nil {
		return nil, err
	}
	movesApplied.WithLabelValues(string(g.Type())).Inc()
	return m.publish(ctx, g)
}

// Games lists persisted games matching the filter.
func (m *Manager) Games(ctx context.Context, f gamestate.Filter) ([]game.Instance, error) {
	snaps, err := m.Dao.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return instances(snaps), nil
}

// GamesByPlayer lists the persisted games the player is in.
func (m *Manager) GamesByPlayer(ctx context.Context, playerID game.PlayerID) ([]game.Instance, error) {
	return m.Games(ctx, gamestate.Filter{Player: playerID})
}

// ActiveGames lists the games currently held in memory.
func (m *Manager) ActiveGames() []game.Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := make([]game.Instance, 0, len(m.games))
	for _, g := range m.games {
		active = append(active, g.Model())
	}
	return active
}

// RemoveGame drops the game from memory, reporting whether it was there.
// The persisted record is kept.
func (m *Manager) RemoveGame(id game.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.games[id]
	delete(m.games, id)
	return ok
}

// loadGame gets the game from memory, rehydrating it from the dao on a miss.
// The caller must hold the mutex.
func (m *Manager) loadGame(ctx context.Context, id game.ID) (game.Game, error) {
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	snap, err := m.Dao.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gamestate.ErrNotFound) {
			return nil, fmt.Errorf("game %v: %w", id, game.ErrGameNotFound)
		}
		return nil, err
	}
	variant, ok := m.Variants[snap.GameType]
	if !ok {
		return nil, fmt.Errorf("stored game %v has invalid game type %q: %w", id, snap.GameType, game.ErrUnsupportedOperation)
	}
	g, err := variant.Load(*snap)
	if err != nil {
		return nil, fmt.Errorf("rehydrating game %v: %w", id, err)
	}
	m.games[id] = g
	m.Log.Printf("rehydrated %v game %v from store", g.Type(), id)
	return g, nil
}

// publish persists the game's state and returns the public instance.
// A game that failed to persist is dropped from memory so the next operation
// rehydrates it from the last stored snapshot; a game that ended is dropped
// because it will never accept another operation.  The caller must hold the
// mutex.
func (m *Manager) publish(ctx context.Context, g game.Game) (*game.Instance, error) {
	snap := g.Snapshot()
	if err := m.Dao.Save(ctx, snap); err != nil {
		delete(m.games, g.ID())
		return nil, err
	}
	if snap.State.Status == game.Over {
		delete(m.games, g.ID())
	}
	instance := snap.Instance
	return &instance, nil
}

// instances strips the server-only snapshot fields for players.
func instances(snaps []game.Snapshot) []game.Instance {
	all := make([]game.Instance, len(snaps))
	for i, snap := range snaps {
		all[i] = snap.Instance
	}
	return all
}
