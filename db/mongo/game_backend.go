// Package mongo implements the game store and trivia question source on mongodb.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fanout-games/arcade/db"
	"github.com/fanout-games/arcade/db/gamestate"
	"github.com/fanout-games/arcade/game"
)

const (
	databaseName            = "arcade-db"
	gamesCollectionName     = "games"
	questionsCollectionName = "triviaQuestions"
	gameIDField             = "gameID"
	gameTypeField           = "gameType"
	playersField            = "players"
	statusField             = "state.status"
)

type (
	// Database is a connection to the mongodb database the service stores data in.
	Database struct {
		database *mongo.Database
		db.Config
	}

	// GameBackend is a gamestate.Backend on the games collection.
	GameBackend struct {
		games *mongo.Collection
		db.Config
	}
)

// NewDatabase connects to the mongodb database at the url.
func NewDatabase(ctx context.Context, cfg db.Config, databaseURL string) (*Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating mongodb database: validation: %w", err)
	}
	clientOptions := options.Client()
	clientOptions.ApplyURI(databaseURL)
	ctx, cancelFunc := context.WithTimeout(ctx, cfg.QueryPeriod)
	defer cancelFunc()
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	d := Database{
		database: client.Database(databaseName),
		Config:   cfg,
	}
	return &d, nil
}

// GameBackend creates a backend manager for the games collection.
func (d *Database) GameBackend() *GameBackend {
	return &GameBackend{
		games:  d.database.Collection(gamesCollectionName),
		Config: d.Config,
	}
}

// Setup initializes the games collection with a unique index on the game id.
func (gb *GameBackend) Setup(ctx context.Context) error {
	indexOptions := options.Index()
	indexOptions.SetUnique(true)
	model := mongo.IndexModel{
		Keys:    d(e(gameIDField, 1)),
		Options: indexOptions,
	}
	ctx, cancelFunc := context.WithTimeout(ctx, gb.QueryPeriod)
	defer cancelFunc()
	if _, err := gb.games.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("creating unique game id index: %w", err)
	}
	return nil
}

// Upsert replaces the document for the snapshot's game id, inserting it if absent.
func (gb *GameBackend) Upsert(ctx context.Context, snap game.Snapshot) error {
	filter := d(e(gameIDField, snap.GameID))
	replaceOptions := options.Replace()
	replaceOptions.SetUpsert(true)
	ctx, cancelFunc := context.WithTimeout(ctx, gb.QueryPeriod)
	defer cancelFunc()
	if _, err := gb.games.ReplaceOne(ctx, filter, snap, replaceOptions); err != nil {
		return fmt.Errorf("upserting game: %w", err)
	}
	return nil
}

// Find reads the document for the game id.
func (gb *GameBackend) Find(ctx context.Context, id game.ID) (*game.Snapshot, error) {
	filter := d(e(gameIDField, id))
	ctx, cancelFunc := context.WithTimeout(ctx, gb.QueryPeriod)
	defer cancelFunc()
	result := gb.games.FindOne(ctx, filter)
	var snap game.Snapshot
	if err := result.Decode(&snap); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, gamestate.ErrNotFound
		}
		return nil, fmt.Errorf("finding game: %w", err)
	}
	return &snap, nil
}

// List reads the documents matching the filter.
func (gb *GameBackend) List(ctx context.Context, f gamestate.Filter) ([]game.Snapshot, error) {
	var elements []bson.E
	if f.GameType != "" {
		elements = append(elements, e(gameTypeField, f.GameType))
	}
	if f.Status != "" {
		elements = append(elements, e(statusField, f.Status))
	}
	if f.Player != "" {
		elements = append(elements, e(playersField, f.Player))
	}
	ctx, cancelFunc := context.WithTimeout(ctx, gb.QueryPeriod)
	defer cancelFunc()
	cursor, err := gb.games.Find(ctx, d(elements...))
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	var snaps []game.Snapshot
	if err := cursor.All(ctx, &snaps); err != nil {
		return nil, fmt.Errorf("decoding games: %w", err)
	}
	return snaps, nil
}

// d is a helper function to create bson.D elements.
func d(e ...bson.E) bson.D {
	return bson.D(e)
}

// e is a helper function to create bson.E elements.
func e(key string, value interface{}) bson.E {
	return bson.E{Key: key, Value: value}
}
