// Package firestore implements the game store on a google cloud firestore database.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/fanout-games/arcade/db"
	"github.com/fanout-games/arcade/db/gamestate"
	"github.com/fanout-games/arcade/game"
)

// GameBackend is a gamestate.Backend on a firestore games collection.
type GameBackend struct {
	client *firestore.Client
	db.Config
}

// NewGameBackend creates a backend manager for games in the project.
func NewGameBackend(ctx context.Context, cfg db.Config, projectID string) (*GameBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating firestore game backend: validation: %w", err)
	}
	client, err := firestore.NewClient(ctx, projectID) // do not timeout context - the client is used by the backend
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	gb := GameBackend{
		client: client,
		Config: cfg,
	}
	return &gb, nil
}

func (gb *GameBackend) gamesCollection() *firestore.CollectionRef {
	return gb.client.Collection("services").Doc("arcade").Collection("games")
}

// withTimeoutContext configures the context to timeout when running the function.
func (gb *GameBackend) withTimeoutContext(ctx context.Context, f func(ctx context.Context) error) error {
	ctx, cancelFunc := context.WithTimeout(ctx, gb.QueryPeriod)
	defer cancelFunc()
	return f(ctx)
}

// Upsert writes the document for the snapshot's game id.
func (gb *GameBackend) Upsert(ctx context.Context, snap game.Snapshot) error {
	if err := gb.withTimeoutContext(ctx, func(ctx context.Context) error {
		games := gb.gamesCollection()
		docRef := games.Doc(string(snap.GameID))
		_, err := docRef.Set(ctx, snap)
		return err
	}); err != nil {
		return fmt.Errorf("upserting game: %w", err)
	}
	return nil
}

// Find reads the document for the game id.
func (gb *GameBackend) Find(ctx context.Context, id game.ID) (*game.Snapshot, error) {
	var snap game.Snapshot
	if err := gb.withTimeoutContext(ctx, func(ctx context.Context) error {
		games := gb.gamesCollection()
		docRef := games.Doc(string(id))
		snapshot, err := docRef.Get(ctx)
		if err != nil {
			if snapshot != nil && !snapshot.Exists() {
				return gamestate.ErrNotFound
			}
			return err
		}
		return snapshot.DataTo(&snap)
	}); err != nil {
		if err == gamestate.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("finding game: %w", err)
	}
	return &snap, nil
}

// List reads the documents matching the filter.  The collection is read whole
// and filtered in memory; field names are not indexed for the filter's shapes.
func (gb *GameBackend) List(ctx context.Context, f gamestate.Filter) ([]game.Snapshot, error) {
	var snaps []game.Snapshot
	if err := gb.withTimeoutContext(ctx, func(ctx context.Context) error {
		games := gb.gamesCollection()
		documents, err := games.Documents(ctx).GetAll()
		if err != nil {
			return err
		}
		for _, doc := range documents {
			var snap game.Snapshot
			if err := doc.DataTo(&snap); err != nil {
				return err
			}
			if f.Matches(snap) {
				snaps = append(snaps, snap)
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return snaps, nil
}
