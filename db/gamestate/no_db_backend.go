package gamestate

import (
	"context"

	"github.com/fanout-games/arcade/game"
)

// NoDatabaseBackend runs the service without durability.  Writes are dropped
// and reads find nothing, so games live only as long as the process.
type NoDatabaseBackend struct{}

// Upsert drops the snapshot.
func (b NoDatabaseBackend) Upsert(ctx context.Context, snap game.Snapshot) error {
	return nil
}

// Find returns ErrNotFound.
func (b NoDatabaseBackend) Find(ctx context.Context, id game.ID) (*game.Snapshot, error) {
	return nil, ErrNotFound
}

// List returns no snapshots.
func (b NoDatabaseBackend) List(ctx context.Context, f Filter) ([]game.Snapshot, error) {
	return nil, nil
}
