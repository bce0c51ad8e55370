package lobby

import (
	"context"

	"github.com/fanout-games/arcade/game"
)

type mockGameManager struct {
	AddGameFunc       func(ctx context.Context, gameType game.Type, createdBy game.PlayerID) (game.ID, error)
	JoinGameFunc      func(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error)
	StartGameFunc     func(ctx context.Context, id game.ID) (*game.Instance, error)
	LeaveGameFunc     func(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error)
	ApplyMoveFunc     func(ctx context.Context, mv game.Move) (*game.Instance, error)
	GamesByPlayerFunc func(ctx context.Context, playerID game.PlayerID) ([]game.Instance, error)
}

func (m mockGameManager) AddGame(ctx context.Context, gameType game.Type, createdBy game.PlayerID) (game.ID, error) {
	return m.AddGameFunc(ctx, gameType, createdBy)
}

func (m mockGameManager) JoinGame(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error) {
	return m.JoinGameFunc(ctx, id, playerID)
}

func (m mockGameManager) StartGame(ctx context.Context, id game.ID) (*game.Instance, error) {
	return m.StartGameFunc(ctx, id)
}

func (m mockGameManager) LeaveGame(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error) {
	return m.LeaveGameFunc(ctx, id, playerID)
}

func (m mockGameManager) ApplyMove(ctx context.Context, mv game.Move) (*game.Instance, error) {
	return m.ApplyMoveFunc(ctx, mv)
}

func (m mockGameManager) GamesByPlayer(ctx context.Context, playerID game.PlayerID) ([]game.Instance, error) {
	return m.GamesByPlayerFunc(ctx, playerID)
}

type mockPresence struct {
	SetOnlineFunc  func(ctx context.Context, username, socketAddr string) error
	SetOfflineFunc func(ctx context.Context, username string) error
	LookupFunc     func(ctx context.Context, username string) (string, bool, error)
}

func (m mockPresence) SetOnline(ctx context.Context, username, socketAddr string) error {
	return m.SetOnlineFunc(ctx, username, socketAddr)
}

func (m mockPresence) SetOffline(ctx context.Context, username string) error {
	return m.SetOfflineFunc(ctx, username)
}

func (m mockPresence) Lookup(ctx context.Context, username string) (string, bool, error) {
	return m.LookupFunc(ctx, username)
}
