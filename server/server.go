// Package server runs the http server that exposes the game api and the
// websocket lobby.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fanout-games/arcade/db/gamestate"
	"github.com/fanout-games/arcade/game"
	"github.com/fanout-games/arcade/server/log"
)

type (
	// Server runs the game service.
	Server struct {
		log        log.Logger
		tokenizer  Tokenizer
		manager    GameManager
		lobby      Lobby
		httpServer *http.Server
		Config
	}

	// Config contains fields which describe the server.
	Config struct {
		// HTTPPort is the TCP port for http requests.
		HTTPPort int
		// StopDur is the maximum amount of time Stop waits for the server to shut down.
		StopDur time.Duration
	}

	// Tokenizer reads tokens from http traffic.
	Tokenizer interface {
		ReadUsername(tokenString string) (string, error)
	}

	// GameManager is how the api handlers manipulate games.  *game.Manager implements it.
	GameManager interface {
		AddGame(ctx context.Context, gameType game.Type, createdBy game.PlayerID) (game.ID, error)
		JoinGame(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error)
		StartGame(ctx context.Context, id game.ID) (*game.Instance, error)
		LeaveGame(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error)
		Games(ctx context.Context, f gamestate.Filter) ([]game.Instance, error)
		ActiveGames() []game.Instance
	}

	// Lobby is the websocket endpoint players connect to.
	Lobby interface {
		AddUser(ctx context.Context, playerID game.PlayerID, w http.ResponseWriter, r *http.Request) error
	}
)

const (
	// HeaderContentType is used to set the document type header on http responses.
	HeaderContentType = "Content-Type"
	// HeaderAuthorization carries the bearer token of api requests.
	HeaderAuthorization = "Authorization"
	// contentTypeJSON is the content type of api responses.
	contentTypeJSON = "application/json"
)

// NewServer creates a Server from the Config.
func (cfg Config) NewServer(log log.Logger, tokenizer Tokenizer, manager GameManager, lobby Lobby) (*Server, error) {
	if err := cfg.validate(log, tokenizer, manager, lobby); err != nil {
		return nil, fmt.Errorf("creating server: validation: %w", err)
	}
	serveMux := new(http.ServeMux)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: serveMux,
	}
	s := Server{
		log:        log,
		tokenizer:  tokenizer,
		manager:    manager,
		lobby:      lobby,
		httpServer: httpServer,
		Config:     cfg,
	}
	serveMux.HandleFunc("/", s.handle)
	serveMux.Handle("/metrics", promhttp.Handler())
	return &s, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(log log.Logger, tokenizer Tokenizer, manager GameManager, lobby Lobby) error {
	switch {
	case log == nil:
		return fmt.Errorf("log required")
	case tokenizer == nil:
		return fmt.Errorf("tokenizer required")
	case manager == nil:
		return fmt.Errorf("game manager required")
	case lobby == nil:
		return fmt.Errorf("lobby required")
	case cfg.HTTPPort <= 0:
		return fmt.Errorf("positive http port required")
	case cfg.StopDur <= 0:
		return fmt.Errorf("stop timeout duration required")
	}
	return nil
}

// Run the server asynchronously until it is stopped.
// Errors from the http server are sent to the returned channel.
func (s *Server) Run(ctx context.Context) <-chan error {
	errC := make(chan error, 1)
	s.log.Printf("starting server at http://127.0.0.1%v", s.httpServer.Addr)
	go func() {
		errC <- s.httpServer.ListenAndServe()
	}()
	return errC
}

// Stop asks the server to shutdown and waits for the shutdown to complete.
// An error is returned if the shutdown times out.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancelFunc := context.WithTimeout(ctx, s.StopDur)
	defer cancelFunc()
	return s.httpServer.Shutdown(ctx)
}

// handle dispatches requests by method.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.handleGet(w, r)
	case "POST":
		s.handlePost(w, r)
	default:
		s.httpError(w, http.StatusMethodNotAllowed)
	}
}

// handleGet calls handlers for GET endpoints.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/games":
		s.withUsername(w, r, s.handleGames)
	case "/api/lobby":
		s.withUsername(w, r, s.handleLobby)
	default:
		s.httpError(w, http.StatusNotFound)
	}
}

// handlePost checks authentication and calls handlers for POST endpoints.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/game/create":
		s.withUsername(w, r, s.handleGameCreate)
	case "/api/game/join":
		s.withUsername(w, r, s.handleGameJoin)
	case "/api/game/leave":
		s.withUsername(w, r, s.handleGameLeave)
	case "/api/game/start":
		s.withUsername(w, r, s.handleGameStart)
	default:
		s.httpError(w, http.StatusNotFound)
	}
}

// withUsername reads the username from the request's token before calling the
// handler, rejecting the request if the token is missing or bad.
func (s *Server) withUsername(w http.ResponseWriter, r *http.Request, h func(w http.ResponseWriter, r *http.Request, username string)) {
	username, err := s.readTokenUsername(r)
	if err != nil {
		s.log.Printf("%v", err)
		s.httpError(w, http.StatusForbidden)
		return
	}
	h(w, r, username)
}

// readTokenUsername gets the username from the bearer token of the
// authorization header, falling back to the access_token query parameter for
// websocket requests.
func (s *Server) readTokenUsername(r *http.Request) (string, error) {
	tokenString := r.URL.Query().Get("access_token")
	if len(tokenString) == 0 {
		authorization := r.Header.Get(HeaderAuthorization)
		if len(authorization) < 7 || authorization[:7] != "Bearer " {
			return "", fmt.Errorf("invalid authorization header: %v", authorization)
		}
		tokenString = authorization[7:]
	}
	username, err := s.tokenizer.ReadUsername(tokenString)
	if err != nil {
		return "", fmt.Errorf("reading username from token: %w", err)
	}
	return username, nil
}

// httpError writes the error status code.
func (*Server) httpError(w http.ResponseWriter, statusCode int) {
	http.Error(w, http.StatusText(statusCode), statusCode)
}
