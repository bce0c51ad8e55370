package server

import (
	"context"
	"net/http"

	"github.com/fanout-games/arcade/db/gamestate"
	"github.com/fanout-games/arcade/game"
)

type mockTokenizer struct {
	ReadUsernameFunc func(tokenString string) (string, error)
}

func (m mockTokenizer) ReadUsername(tokenString string) (string, error) {
	return m.ReadUsernameFunc(tokenString)
}

type mockGameManager struct {
	AddGameFunc     func(ctx context.Context, gameType game.Type, createdBy game.PlayerID) (game.ID, error)
	JoinGameFunc    func(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error)
	StartGameFunc   func(ctx context.Context, id game.ID) (*game.Instance, error)
	LeaveGameFunc   func(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error)
	GamesFunc       func(ctx context.Context, f gamestate.Filter) ([]game.Instance, error)
	ActiveGamesFunc func() []game.Instance
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

func (m mockGameManager) Games(ctx context.Context, f gamestate.Filter) ([]game.Instance, error) {
	return m.GamesFunc(ctx, f)
}

func (m mockGameManager) ActiveGames() []game.Instance {
	return m.ActiveGamesFunc()
}

type mockLobby struct {
	AddUserFunc func(ctx context.Context, playerID game.PlayerID, w http.ResponseWriter, r *http.Request) error
}

func (m mockLobby) AddUser(ctx context.Context, playerID game.PlayerID, w http.ResponseWriter, r *http.Request) error {
	return m.AddUserFunc(ctx, playerID, w, r)
}
