// Package gamestate persists game snapshots so games survive server restarts.
package gamestate

import (
	"context"
	"errors"
	"fmt"

	"github.com/fanout-games/arcade/game"
)

type (
	// Backend stores game snapshots, one record per game id.
	Backend interface {
		// Upsert writes the snapshot, replacing any record with the same game id.
		Upsert(ctx context.Context, snap game.Snapshot) error
		// Find reads the snapshot for the game id, returning ErrNotFound if none exists.
		Find(ctx context.Context, id game.ID) (*game.Snapshot, error)
		// List reads the snapshots matching the filter.
		List(ctx context.Context, f Filter) ([]game.Snapshot, error)
	}

	// Filter narrows a List call.  Zero-valued fields match everything.
	Filter struct {
		GameType game.Type
		Status   game.Status
		Player   game.PlayerID
	}

	// Dao validates and wraps access to a game snapshot Backend.
	Dao struct {
		backend Backend
	}
)

// ErrNotFound is returned by Find when no record exists for the game id.
var ErrNotFound = errors.New("no game stored for id")

// NewDao creates a Dao on the specified backend.
func NewDao(backend Backend) (*Dao, error) {
	if backend == nil {
		return nil, fmt.Errorf("creating game state dao: backend required")
	}
	d := Dao{
		backend: backend,
	}
	return &d, nil
}

// Save persists the snapshot.
func (d Dao) Save(ctx context.Context, snap game.Snapshot) error {
	switch {
	case snap.GameID == "":
		return fmt.Errorf("saving game state: game id required")
	case snap.GameType == "":
		return fmt.Errorf("saving game state: game type required")
	}
	if err := d.backend.Upsert(ctx, snap); err != nil {
		return fmt.Errorf("saving game state: %w", err)
	}
	return nil
}

// Find loads the snapshot for the game id.
func (d Dao) Find(ctx context.Context, id game.ID) (*game.Snapshot, error) {
	if id == "" {
		return nil, fmt.Errorf("loading game state: game id required")
	}
	snap, err := d.backend.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("loading game state: %w", err)
	}
	return snap, nil
}

// List loads the snapshots matching the filter.
func (d Dao) List(ctx context.Context, f Filter) ([]game.Snapshot, error) {
	snaps, err := d.backend.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listing game states: %w", err)
	}
	return snaps, nil
}

// Matches reports whether the snapshot satisfies the filter.  Backends without
// rich queries use it to filter records after reading them.
func (f Filter) Matches(snap game.Snapshot) bool {
	switch {
	case f.GameType != "" && snap.GameType != f.GameType:
		return false
	case f.Status != "" && snap.State.Status != f.Status:
		return false
	}
	if f.Player != "" {
		for _, p := range snap.Players {
			if p == f.Player {
				return true
			}
		}
		return false
	}
	return true
}
