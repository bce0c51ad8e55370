package main

import (
	"context"
	crypto_rand "crypto/rand"
	"fmt"
	"time"

	"github.com/fanout-games/arcade/db"
	"github.com/fanout-games/arcade/db/firestore"
	"github.com/fanout-games/arcade/db/gamestate"
	"github.com/fanout-games/arcade/db/mongo"
	"github.com/fanout-games/arcade/db/postgres"
	"github.com/fanout-games/arcade/db/redis"
	"github.com/fanout-games/arcade/game"
	"github.com/fanout-games/arcade/game/invite"
	"github.com/fanout-games/arcade/game/nim"
	"github.com/fanout-games/arcade/game/trivia"
	"github.com/fanout-games/arcade/server"
	"github.com/fanout-games/arcade/server/auth"
	gameController "github.com/fanout-games/arcade/server/game"
	"github.com/fanout-games/arcade/server/game/lobby"
	"github.com/fanout-games/arcade/server/game/socket"
	"github.com/fanout-games/arcade/server/log"
)

// createServer builds the server from the flags, wiring the durable store,
// question source, presence registry, tokenizer, game manager, and lobby.
func createServer(ctx context.Context, m mainFlags, log log.Logger) (*server.Server, error) {
	timeFunc := func() int64 {
		return time.Now().UTC().Unix()
	}
	tokenizer, err := tokenizerConfig(m, timeFunc).NewTokenizer()
	if err != nil {
		return nil, fmt.Errorf("creating authentication tokenizer: %w", err)
	}
	dbCfg := db.Config{
		QueryPeriod: 5 * time.Second,
	}
	backend, questionSource, err := gameStore(ctx, m, log, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("creating game store: %w", err)
	}
	dao, err := gamestate.NewDao(backend)
	if err != nil {
		return nil, fmt.Errorf("creating game state dao: %w", err)
	}
	managerCfg := gameController.ManagerConfig{
		Log:      log,
		Dao:      dao,
		Variants: gameVariants(questionSource),
	}
	manager, err := managerCfg.NewManager()
	if err != nil {
		return nil, fmt.Errorf("creating game manager: %w", err)
	}
	presence, err := presenceRegistry(m, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("creating presence registry: %w", err)
	}
	lobbyCfg := lobbyConfig(m, log, manager, presence, timeFunc)
	l, err := lobbyCfg.NewLobby()
	if err != nil {
		return nil, fmt.Errorf("creating lobby: %w", err)
	}
	cfg := server.Config{
		HTTPPort: m.httpPort,
		StopDur:  time.Duration(m.stopSec) * time.Second,
	}
	return cfg.NewServer(log, tokenizer, manager, l)
}

// tokenizerConfig creates the configuration for the authentication token reader/writer.
// The lobby only reads tokens; they are minted by the community's auth service
// with the shared key.
func tokenizerConfig(m mainFlags, timeFunc func() int64) auth.TokenizerConfig {
	var tokenValidDurationSec int64 = int64((24 * time.Hour).Seconds()) // 1 day
	return auth.TokenizerConfig{
		Key:       []byte(m.tokenKey),
		KeyReader: crypto_rand.Reader,
		TimeFunc:  timeFunc,
		ValidSec:  tokenValidDurationSec,
	}
}

// gameStore picks the durable game store from the flags: mongo, then postgres,
// then firestore, then an in-memory-only fallback that drops writes.  Trivia
// questions come from mongo when it is configured, otherwise from the embedded
// question bank.
func gameStore(ctx context.Context, m mainFlags, log log.Logger, dbCfg db.Config) (gamestate.Backend, trivia.QuestionSource, error) {
	switch {
	case len(m.mongoURI) != 0:
		mdb, err := mongo.NewDatabase(ctx, dbCfg, m.mongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to mongo: %w", err)
		}
		gb := mdb.GameBackend()
		if err := gb.Setup(ctx); err != nil {
			return nil, nil, fmt.Errorf("setting up mongo game backend: %w", err)
		}
		return gb, mdb.QuestionSource(), nil
	case len(m.postgresURL) != 0:
		gb, err := postgres.NewGameBackend(dbCfg, m.postgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := gb.Setup(ctx); err != nil {
			return nil, nil, fmt.Errorf("setting up postgres game backend: %w", err)
		}
		return gb, trivia.DefaultBank(), nil
	case len(m.firestoreProjectID) != 0:
		gb, err := firestore.NewGameBackend(ctx, dbCfg, m.firestoreProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to firestore: %w", err)
		}
		return gb, trivia.DefaultBank(), nil
	default:
		log.Printf("no database configured, games will not survive restarts")
		return gamestate.NoDatabaseBackend{}, trivia.DefaultBank(), nil
	}
}

// gameVariants registers the constructors of the playable game types.
func gameVariants(questionSource trivia.QuestionSource) map[game.Type]gameController.Variant {
	return map[game.Type]gameController.Variant{
		game.TypeNim: {
			New: func(id game.ID, createdBy game.PlayerID) (game.Game, error) {
				return nim.New(id, createdBy), nil
			},
			Load: func(snap game.Snapshot) (game.Game, error) {
				return nim.FromSnapshot(snap)
			},
		},
		game.TypeTrivia: {
			New: func(id game.ID, createdBy game.PlayerID) (game.Game, error) {
				return trivia.New(id, createdBy, questionSource)
			},
			Load: func(snap game.Snapshot) (game.Game, error) {
				return trivia.FromSnapshot(snap, questionSource)
			},
		},
	}
}

// presenceRegistry creates the user presence registry: redis when configured,
// process memory otherwise.
func presenceRegistry(m mainFlags, dbCfg db.Config) (lobby.Presence, error) {
	if len(m.redisURL) == 0 {
		return lobby.NewMemoryPresence(), nil
	}
	return redis.NewPresence(dbCfg, m.redisURL)
}

// lobbyConfig creates the configuration for the websocket lobby and its sockets.
func lobbyConfig(m mainFlags, log log.Logger, manager lobby.GameManager, presence lobby.Presence, timeFunc func() int64) lobby.Config {
	socketCfg := socket.Config{
		Debug:      m.debugMessages,
		Log:        log,
		TimeFunc:   timeFunc,
		PongPeriod: 60 * time.Second,
		PingPeriod: 54 * time.Second, // pongPeriod * 0.9
		IdlePeriod: 10 * time.Minute,
	}
	return lobby.Config{
		Debug:      m.debugMessages,
		Log:        log,
		MaxSockets: 32,
		Manager:    manager,
		Presence:   presence,
		Invites:    invite.NewRegistry(),
		SocketCfg:  socketCfg,
	}
}
