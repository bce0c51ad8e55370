// Package postgres implements the game store on a PostgreSQL database.
// Snapshots are stored as jsonb documents keyed by game id.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq" // register "postgres" database driver from package init() function

	"github.com/fanout-games/arcade/db"
	"github.com/fanout-games/arcade/db/gamestate"
	"github.com/fanout-games/arcade/game"
)

// GameBackend is a gamestate.Backend on a postgres games table.
type GameBackend struct {
	database *sql.DB
	db.Config
}

// NewGameBackend opens the postgres database at the url.
func NewGameBackend(cfg db.Config, databaseURL string) (*GameBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating postgres game backend: validation: %w", err)
	}
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening postgres database: %w", err)
	}
	gb := GameBackend{
		database: database,
		Config:   cfg,
	}
	return &gb, nil
}

// Setup initializes the games table.
func (gb *GameBackend) Setup(ctx context.Context) error {
	cmd := `CREATE TABLE IF NOT EXISTS games (
		game_id   text PRIMARY KEY,
		game_type text NOT NULL,
		status    text NOT NULL,
		snapshot  jsonb NOT NULL
	)`
	ctx, cancelFunc := context.WithTimeout(ctx, gb.QueryPeriod)
	defer cancelFunc()
	if _, err := gb.database.ExecContext(ctx, cmd); err != nil {
		return fmt.Errorf("creating games table: %w", err)
	}
	return nil
}

// Upsert writes the row for the snapshot's game id.
func (gb *GameBackend) Upsert(ctx context.Context, snap game.Snapshot) error {
	document, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding game: %w", err)
	}
	cmd := `INSERT INTO games (game_id, game_type, status, snapshot)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game_id)
		DO UPDATE SET game_type = EXCLUDED.game_type, status = EXCLUDED.status, snapshot = EXCLUDED.snapshot`
	ctx, cancelFunc := context.WithTimeout(ctx, gb.QueryPeriod)
	defer cancelFunc()
	if _, err := gb.database.ExecContext(ctx, cmd, snap.GameID, snap.GameType, snap.State.Status, document); err != nil {
		return fmt.Errorf("upserting game: %w", err)
	}
	return nil
}

// Find reads the row for the game id.
func (gb *GameBackend) Find(ctx context.Context, id game.ID) (*game.Snapshot, error) {
	cmd := `SELECT snapshot FROM games WHERE game_id = $1`
	ctx, cancelFunc := context.WithTimeout(ctx, gb.QueryPeriod)
	defer cancelFunc()
	row := gb.database.QueryRowContext(ctx, cmd, id)
	var document []byte
	if err := row.Scan(&document); err != nil {
		if err == sql.ErrNoRows {
			return nil, gamestate.ErrNotFound
		}
		return nil, fmt.Errorf("finding game: %w", err)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(document, &snap); err != nil {
		return nil, fmt.Errorf("decoding game: %w", err)
	}
	return &snap, nil
}

// List reads the rows matching the filter.  Type and status narrow the query;
// the player filter is applied to the decoded snapshots.
func (gb *GameBackend) List(ctx context.Context, f gamestate.Filter) ([]game.Snapshot, error) {
	cmd := `SELECT snapshot FROM games WHERE 1 = 1`
	var args []interface{}
	if f.GameType != "" {
		args = append(args, f.GameType)
		cmd += fmt.Sprintf(" AND game_type = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		cmd += fmt.Sprintf(" AND status = $%d", len(args))
	}
	ctx, cancelFunc := context.WithTimeout(ctx, gb.QueryPeriod)
	defer cancelFunc()
	rows, err := gb.database.QueryContext(ctx, cmd, args...)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	defer rows.Close()
	var snaps []game.Snapshot
	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		var snap game.Snapshot
		if err := json.Unmarshal(document, &snap); err != nil {
			return nil, fmt.Errorf("decoding game: %w", err)
		}
		if f.Matches(snap) {
			snaps = append(snaps, snap)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return snaps, nil
}
