package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fanout-games/arcade/db/gamestate"
	"github.com/fanout-games/arcade/game"
)

type (
	// createGameRequest is the body of a create request.
	createGameRequest struct {
		GameType game.Type `json:"gameType"`
	}

	// createGameResponse is the body of a successful create response.
	createGameResponse struct {
		GameID game.ID `json:"gameID"`
	}

	// gameRequest is the body of join, leave, and start requests.
	gameRequest struct {
		GameID game.ID `json:"gameID"`
	}
)

// handleGameCreate creates a game of the requested type for the user.
func (s *Server) handleGameCreate(w http.ResponseWriter, r *http.Request, username string) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.httpError(w, http.StatusBadRequest)
		return
	}
	id, err := s.manager.AddGame(r.Context(), req.GameType, game.PlayerID(username))
	if err != nil {
		s.handleGameError(w, err)
		return
	}
	s.writeJSON(w, createGameResponse{GameID: id})
}

// handleGameJoin adds the user to the game.
func (s *Server) handleGameJoin(w http.ResponseWriter, r *http.Request, username string) {
	var req gameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.httpError(w, http.StatusBadRequest)
		return
	}
	instance, err := s.manager.JoinGame(r.Context(), req.GameID, game.PlayerID(username))
	if err != nil {
		s.handleGameError(w, err)
		return
	}
	s.writeJSON(w, instance)
}

// handleGameLeave removes the user from the game.
func (s *Server) handleGameLeave(w http.ResponseWriter, r *http.Request, username string) {
	var req gameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.httpError(w, http.StatusBadRequest)
		return
	}
	instance, err := s.manager.LeaveGame(r.Context(), req.GameID, game.PlayerID(username))
	if err != nil {
		s.handleGameError(w, err)
		return
	}
	s.writeJSON(w, instance)
}

// handleGameStart starts the game.
func (s *Server) handleGameStart(w http.ResponseWriter, r *http.Request, username string) {
	var req gameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.httpError(w, http.StatusBadRequest)
		return
	}
	instance, err := s.manager.StartGame(r.Context(), req.GameID)
	if err != nil {
		s.handleGameError(w, err)
		return
	}
	s.writeJSON(w, instance)
}

// handleGames lists games, filtered by the type, status, and player query
// parameters.  The active parameter lists the games held in server memory
// instead of querying the store.
func (s *Server) handleGames(w http.ResponseWriter, r *http.Request, username string) {
	q := r.URL.Query()
	if q.Has("active") {
		instances := s.manager.ActiveGames()
		if instances == nil {
			instances = []game.Instance{}
		}
		s.writeJSON(w, instances)
		return
	}
	f := gamestate.Filter{
		GameType: game.Type(q.Get("type")),
		Status:   game.Status(q.Get("status")),
		Player:   game.PlayerID(q.Get("player")),
	}
	instances, err := s.manager.Games(r.Context(), f)
	if err != nil {
		s.handleGameError(w, err)
		return
	}
	if instances == nil {
		instances = []game.Instance{}
	}
	s.writeJSON(w, instances)
}

// handleLobby hands the connection to the lobby as the user.
func (s *Server) handleLobby(w http.ResponseWriter, r *http.Request, username string) {
	if err := s.lobby.AddUser(r.Context(), game.PlayerID(username), w, r); err != nil {
		s.log.Printf("adding %v to lobby: %v", username, err)
	}
}

// writeJSON writes the value as the json response body.
func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set(HeaderContentType, contentTypeJSON)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("writing json response: %v", err)
	}
}

// handleGameError maps domain errors to http status codes: unknown games are
// not found, rejected operations are bad requests, and everything else is a
// server error.
func (s *Server) handleGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, game.ErrInvalidState),
		errors.Is(err, game.ErrInvalidMove),
		errors.Is(err, game.ErrDuplicatePlayer),
		errors.Is(err, game.ErrNotInGame),
		errors.Is(err, game.ErrUnsupportedOperation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Printf("server error: %v", err)
		s.httpError(w, http.StatusInternalServerError)
	}
}
