// Package lobby handles players connecting over websockets and routes their
// game and invitation events.
package lobby

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/fanout-games/arcade/game"
	"github.com/fanout-games/arcade/game/invite"
	"github.com/fanout-games/arcade/game/message"
	"github.com/fanout-games/arcade/server/game/socket"
	"github.com/fanout-games/arcade/server/log"
)

// writeBufferSize is how many messages can queue for a slow socket before
// further messages to it are dropped.
const writeBufferSize = 16

type (
	// Lobby is the place users connect to play games and challenge each other.
	Lobby struct {
		mu       sync.Mutex
		upgrader socket.Upgrader
		sockets  map[game.PlayerID]*playerConn
		rooms    map[game.ID]map[game.PlayerID]struct{}
		Config
	}

	// Config contains the properties to create a lobby.
	Config struct {
		// Debug is a flag that causes the lobby to log the events of messages it handles.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// MaxSockets is the maximum number of player connections the lobby supports.
		MaxSockets int
		// Manager owns the games players interact with.
		Manager GameManager
		// Presence tracks which users are online.
		Presence Presence
		// Invites tracks quiz invitations being negotiated.
		Invites *invite.Registry
		// SocketCfg is used to create new sockets.
		SocketCfg socket.Config
	}

	// GameManager is how the lobby manipulates games.  *game.Manager implements it.
	GameManager interface {
		AddGame(ctx context.Context, gameType game.Type, createdBy game.PlayerID) (game.ID, error)
		JoinGame(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error)
		StartGame(ctx context.Context, id game.ID) (*game.Instance, error)
		LeaveGame(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error)
		ApplyMove(ctx context.Context, mv game.Move) (*game.Instance, error)
		GamesByPlayer(ctx context.Context, playerID game.PlayerID) ([]game.Instance, error)
	}

	// Presence records which users are online and where their connections live.
	// *redis.Presence implements it.
	Presence interface {
		SetOnline(ctx context.Context, username, socketAddr string) error
		SetOffline(ctx context.Context, username string) error
		Lookup(ctx context.Context, username string) (socketAddr string, online bool, err error)
	}

	// playerConn is the lobby's handle on one player's socket.
	playerConn struct {
		writeMessages chan message.Message
		cancelFunc    context.CancelFunc
	}
)

// NewLobby creates a lobby from the config.
func (cfg Config) NewLobby() (*Lobby, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating lobby: validation: %w", err)
	}
	l := Lobby{
		upgrader: socket.NewGorillaUpgrader(),
		sockets:  make(map[game.PlayerID]*playerConn, cfg.MaxSockets),
		rooms:    make(map[game.ID]map[game.PlayerID]struct{}),
		Config:   cfg,
	}
	return &l, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate() error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.MaxSockets <= 0:
		return fmt.Errorf("must allow at least one socket")
	case cfg.Manager == nil:
		return fmt.Errorf("game manager required")
	case cfg.Presence == nil:
		return fmt.Errorf("presence registry required")
	case cfg.Invites == nil:
		return fmt.Errorf("invitation registry required")
	}
	return nil
}

// AddUser upgrades the request to a websocket connection for the player and
// pumps its messages until the connection drops.  A second connection for the
// same player replaces the first.
func (l *Lobby) AddUser(ctx context.Context, playerID game.PlayerID, w http.ResponseWriter, r *http.Request) error {
	conn, err := l.upgrader.Upgrade(w, r)
	if err != nil {
		return fmt.Errorf("upgrading to websocket connection: %v", err)
	}
	s, err := l.SocketCfg.NewSocket(conn, playerID)
	if err != nil {
		conn.WriteClose(err.Error())
		conn.Close()
		return err
	}
	socketCtx, cancelFunc := context.WithCancel(context.Background())
	pc := &playerConn{
		writeMessages: make(chan message.Message, writeBufferSize),
		cancelFunc:    cancelFunc,
	}
	l.mu.Lock()
	if old, ok := l.sockets[playerID]; ok {
		l.Log.Printf("socket for %v already exists, replacing", playerID)
		old.cancelFunc()
	} else if len(l.sockets) >= l.MaxSockets {
		l.mu.Unlock()
		cancelFunc()
		conn.WriteClose("lobby full")
		conn.Close()
		return fmt.Errorf("lobby full")
	}
	l.sockets[playerID] = pc
	l.mu.Unlock()
	if err := l.Presence.SetOnline(ctx, string(playerID), s.Addr()); err != nil {
		l.Log.Printf("setting %v online: %v", playerID, err)
	}
	online := true
	l.broadcast(message.Message{
		Event:    message.UserStatusUpdate,
		Username: string(playerID),
		Online:   &online,
	}, playerID)
	readMessages := make(chan message.Message)
	removeSocketFunc := func() {
		l.removeSocket(playerID, pc)
	}
	go func() {
		for {
			select {
			case <-socketCtx.Done():
				return
			case m := <-readMessages:
				l.handleMessage(socketCtx, m)
			}
		}
	}()
	go s.Run(socketCtx, removeSocketFunc, readMessages, pc.writeMessages)
	return nil
}

// removeSocket cleans up after the player's connection drops.  It does nothing
// when the player has already reconnected on a different socket.
func (l *Lobby) removeSocket(playerID game.PlayerID, pc *playerConn) {
	l.mu.Lock()
	current, ok := l.sockets[playerID]
	if !ok || current != pc {
		l.mu.Unlock()
		return
	}
	delete(l.sockets, playerID)
	for id, room := range l.rooms {
		delete(room, playerID)
		if len(room) == 0 {
			delete(l.rooms, id)
		}
	}
	l.mu.Unlock()
	pc.cancelFunc()
	l.handleDisconnect(context.Background(), playerID)
}

// handleDisconnect forfeits the player's running games and tells everyone they
// went offline.
func (l *Lobby) handleDisconnect(ctx context.Context, playerID game.PlayerID) {
	if err := l.Presence.SetOffline(ctx, string(playerID)); err != nil {
		l.Log.Printf("setting %v offline: %v", playerID, err)
	}
	playerGames, err := l.Manager.GamesByPlayer(ctx, playerID)
	if err != nil {
		l.Log.Printf("listing games for disconnected player %v: %v", playerID, err)
	}
	for _, g := range playerGames {
		if g.State.Status != game.InProgress {
			continue
		}
		instance, err := l.Manager.LeaveGame(ctx, g.GameID, playerID)
		if err != nil {
			l.Log.Printf("forfeiting game %v for disconnected player %v: %v", g.GameID, playerID, err)
			continue
		}
		var winner game.PlayerID
		if len(instance.State.Winners) == 1 {
			winner = instance.State.Winners[0]
		}
		l.broadcastToRoom(g.GameID, message.Message{
			Event:              message.OpponentDisconnected,
			GameID:             g.GameID,
			DisconnectedPlayer: playerID,
			Winner:             winner,
			Info:               fmt.Sprintf("%v disconnected. You win by default!", playerID),
			Game:               instance,
		}, playerID)
		l.closeRoomIfOver(g.GameID, instance)
	}
	offline := false
	l.broadcast(message.Message{
		Event:    message.UserStatusUpdate,
		Username: string(playerID),
		Online:   &offline,
	}, playerID)
}

// handleMessage dispatches one message read from a player's socket.
// The joinGame and leaveGame events change room subscriptions only; game
// state changes arrive through the http api or the other events.
func (l *Lobby) handleMessage(ctx context.Context, m message.Message) {
	if l.Debug {
		l.Log.Printf("lobby handling message with event %v from %v", m.Event, m.PlayerID)
	}
	switch m.Event {
	case message.JoinGame:
		l.joinRoom(m.GameID, m.PlayerID)
	case message.LeaveGame:
		l.leaveRoom(m.GameID, m.PlayerID)
	case message.MakeMove:
		l.handleMakeMove(ctx, m)
	case message.SendQuizInvite:
		l.handleSendInvite(ctx, m)
	case message.RespondToQuizInvite:
		l.handleInviteResponse(ctx, m)
	default:
		l.send(m.PlayerID, message.Message{
			Event: message.GameError,
			Error: fmt.Sprintf("unknown event %q", m.Event),
		})
	}
}

func (l *Lobby) handleMakeMove(ctx context.Context, m message.Message) {
	if m.Move == nil {
		l.sendGameError(m, fmt.Errorf("%w: move required", game.ErrInvalidMove))
		return
	}
	mv := game.Move{
		PlayerID: m.PlayerID,
		GameID:   m.GameID,
		Move:     m.Move.Move,
	}
	instance, err := l.Manager.ApplyMove(ctx, mv)
	if err != nil {
		l.sendGameError(m, err)
		return
	}
	l.broadcastGameUpdate(instance, m.PlayerID)
	l.closeRoomIfOver(m.GameID, instance)
}

func (l *Lobby) handleSendInvite(ctx context.Context, m message.Message) {
	challenger := string(m.PlayerID)
	recipient := m.RecipientUsername
	switch {
	case recipient == "":
		l.sendInviteError(m, "recipient username required")
		return
	case recipient == challenger:
		l.sendInviteError(m, "cannot invite yourself")
		return
	}
	addr, online, err := l.Presence.Lookup(ctx, recipient)
	if err != nil {
		l.Log.Printf("looking up presence of %v: %v", recipient, err)
		l.sendInviteError(m, "could not look up user")
		return
	}
	if !online {
		l.sendInviteError(m, "Recipient is not online")
		return
	}
	if l.Invites.HasPending(challenger, recipient) {
		l.sendInviteError(m, "Invitation already sent")
		return
	}
	inv := l.Invites.Create(challenger, recipient, addr)
	l.send(game.PlayerID(recipient), message.Message{
		Event:  message.QuizInviteReceived,
		Invite: &inv,
	})
}

func (l *Lobby) handleInviteResponse(ctx context.Context, m message.Message) {
	if m.Accepted == nil {
		l.sendInviteError(m, "accepted flag required")
		return
	}
	inv, ok := l.Invites.Get(m.InviteID)
	if !ok {
		l.sendInviteError(m, "invitation not found")
		return
	}
	if inv.RecipientUsername != string(m.PlayerID) {
		l.sendInviteError(m, "invitation is not yours to answer")
		return
	}
	defer l.Invites.Remove(inv.InviteID)
	challengerID := game.PlayerID(inv.ChallengerUsername)
	recipientID := game.PlayerID(inv.RecipientUsername)
	if !*m.Accepted {
		l.Invites.SetStatus(inv.InviteID, invite.Declined)
		declined := message.Message{
			Event:              message.QuizInviteDeclined,
			InviteID:           inv.InviteID,
			ChallengerUsername: inv.ChallengerUsername,
			RecipientUsername:  inv.RecipientUsername,
			Accepted:           m.Accepted,
		}
		l.send(challengerID, declined)
		l.send(recipientID, declined)
		return
	}
	l.Invites.SetStatus(inv.InviteID, invite.Accepted)
	id, err := l.Manager.AddGame(ctx, game.TypeTrivia, challengerID)
	if err != nil {
		l.Log.Printf("creating game for invitation %v: %v", inv.InviteID, err)
		l.sendInviteError(m, "could not create game")
		return
	}
	for _, playerID := range []game.PlayerID{challengerID, recipientID} {
		if _, err := l.Manager.JoinGame(ctx, id, playerID); err != nil {
			l.Log.Printf("joining %v to game %v for invitation %v: %v", playerID, id, inv.InviteID, err)
			l.sendInviteError(m, "could not join game")
			return
		}
	}
	instance, err := l.Manager.StartGame(ctx, id)
	if err != nil {
		l.Log.Printf("starting game %v for invitation %v: %v", id, inv.InviteID, err)
		l.sendInviteError(m, "could not start game")
		return
	}
	l.joinRoom(id, challengerID)
	l.joinRoom(id, recipientID)
	accepted := message.Message{
		Event:              message.QuizInviteAccepted,
		InviteID:           inv.InviteID,
		GameID:             id,
		ChallengerUsername: inv.ChallengerUsername,
		RecipientUsername:  inv.RecipientUsername,
		Accepted:           m.Accepted,
		Game:               instance,
	}
	l.send(challengerID, accepted)
	l.send(recipientID, accepted)
}

// joinRoom subscribes the player to the game's updates.
func (l *Lobby) joinRoom(id game.ID, playerID game.PlayerID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	room, ok := l.rooms[id]
	if !ok {
		room = make(map[game.PlayerID]struct{}, game.MaxPlayers)
		l.rooms[id] = room
	}
	room[playerID] = struct{}{}
}

// leaveRoom unsubscribes the player from the game's updates.
func (l *Lobby) leaveRoom(id game.ID, playerID game.PlayerID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	room, ok := l.rooms[id]
	if !ok {
		return
	}
	delete(room, playerID)
	if len(room) == 0 {
		delete(l.rooms, id)
	}
}

// closeRoomIfOver drops the room of a game that ended.
func (l *Lobby) closeRoomIfOver(id game.ID, instance *game.Instance) {
	if instance.State.Status != game.Over {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rooms, id)
}

// broadcastGameUpdate sends the game's new state to everyone in its room.
// The actor always gets the update, even before they join the room.
func (l *Lobby) broadcastGameUpdate(instance *game.Instance, actor game.PlayerID) {
	m := message.Message{
		Event:  message.GameUpdate,
		GameID: instance.GameID,
		Game:   instance,
	}
	recipients := l.roomMembers(instance.GameID)
	if _, ok := recipients[actor]; !ok {
		recipients[actor] = struct{}{}
	}
	for playerID := range recipients {
		l.send(playerID, m)
	}
}

// broadcastToRoom sends the message to every room member except one.
func (l *Lobby) broadcastToRoom(id game.ID, m message.Message, except game.PlayerID) {
	for playerID := range l.roomMembers(id) {
		if playerID != except {
			l.send(playerID, m)
		}
	}
}

// broadcast sends the message to every connected player except one.
func (l *Lobby) broadcast(m message.Message, except game.PlayerID) {
	l.mu.Lock()
	playerIDs := make([]game.PlayerID, 0, len(l.sockets))
	for playerID := range l.sockets {
		if playerID != except {
			playerIDs = append(playerIDs, playerID)
		}
	}
	l.mu.Unlock()
	for _, playerID := range playerIDs {
		l.send(playerID, m)
	}
}

// roomMembers copies the room's member set.
func (l *Lobby) roomMembers(id game.ID) map[game.PlayerID]struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	members := make(map[game.PlayerID]struct{}, len(l.rooms[id]))
	for playerID := range l.rooms[id] {
		members[playerID] = struct{}{}
	}
	return members
}

// send queues the message for the player's socket, dropping it if the socket
// is gone or its queue is full.
func (l *Lobby) send(playerID game.PlayerID, m message.Message) {
	l.mu.Lock()
	pc, ok := l.sockets[playerID]
	l.mu.Unlock()
	if !ok {
		l.Log.Printf("no socket for player %v to send %v message to", playerID, m.Event)
		return
	}
	select {
	case pc.writeMessages <- m:
	default:
		l.Log.Printf("dropping %v message for %v: write queue full", m.Event, playerID)
	}
}

// sendGameError reports a rejected game request to its sender.
func (l *Lobby) sendGameError(m message.Message, err error) {
	l.send(m.PlayerID, message.Message{
		Event:  message.GameError,
		GameID: m.GameID,
		Error:  err.Error(),
	})
}

// sendInviteError reports a rejected invitation request to its sender.
func (l *Lobby) sendInviteError(m message.Message, info string) {
	l.send(m.PlayerID, message.Message{
		Event:    message.QuizInviteError,
		InviteID: m.InviteID,
		Error:    info,
	})
}
