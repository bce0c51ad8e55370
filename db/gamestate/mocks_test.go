package gamestate

import (
	"context"

	"github.com/fanout-games/arcade/game"
)

type mockBackend struct {
	UpsertFunc func(ctx context.Context, snap game.Snapshot) error
	FindFunc   func(ctx context.Context, id game.ID) (*game.Snapshot, error)
	ListFunc   func(ctx context.Context, f Filter) ([]game.Snapshot, error)
}

func (m mockBackend) Upsert(ctx context.Context, snap game.Snapshot) error {
	return m.UpsertFunc(ctx, snap)
}

func (m mockBackend) Find(ctx context.Context, id game.ID) (*game.Snapshot, error) {
	return m.FindFunc(ctx, id)
}

func (m mockBackend) List(ctx context.Context, f Filter) ([]game.Snapshot, error) {
	return m.ListFunc(ctx, f)
}
