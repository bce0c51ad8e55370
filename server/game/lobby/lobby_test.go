package lobby

import (
	"context"
	"errors"
	"testing"

	"github.com/fanout-games/arcade/game"
	"github.com/fanout-games/arcade/game/invite"
	"github.com/fanout-games/arcade/game/message"
	"github.com/fanout-games/arcade/server/log/logtest"
)

func testLobby(t *testing.T, manager GameManager, presence Presence) *Lobby {
	t.Helper()
	cfg := Config{
		Log:        logtest.DiscardLogger,
		MaxSockets: 8,
		Manager:    manager,
		Presence:   presence,
		Invites:    invite.NewRegistry(),
	}
	l, err := cfg.NewLobby()
	if err != nil {
		t.Fatalf("creating lobby: %v", err)
	}
	return l
}

// addTestPlayer registers a connection for the player directly, returning the
// channel their outbound messages land on.
func addTestPlayer(l *Lobby, playerID game.PlayerID) chan message.Message {
	pc := &playerConn{
		writeMessages: make(chan message.Message, writeBufferSize),
		cancelFunc:    func() {},
	}
	l.mu.Lock()
	l.sockets[playerID] = pc
	l.mu.Unlock()
	return pc.writeMessages
}

func receivedMessage(t *testing.T, messages chan message.Message) message.Message {
	t.Helper()
	select {
	case m := <-messages:
		return m
	default:
		t.Fatal("wanted a message to have been sent")
		return message.Message{}
	}
}

func TestNewLobby(t *testing.T) {
	testLog := logtest.DiscardLogger
	manager := mockGameManager{}
	presence := mockPresence{}
	registry := invite.NewRegistry()
	newLobbyTests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "no log",
			cfg: Config{
				MaxSockets: 1,
				Manager:    manager,
				Presence:   presence,
				Invites:    registry,
			},
			wantErr: true,
		},
		{
			name: "no sockets allowed",
			cfg: Config{
				Log:      testLog,
				Manager:  manager,
				Presence: presence,
				Invites:  registry,
			},
			wantErr: true,
		},
		{
			name: "no manager",
			cfg: Config{
				Log:        testLog,
				MaxSockets: 1,
				Presence:   presence,
				Invites:    registry,
			},
			wantErr: true,
		},
		{
			name: "no presence",
			cfg: Config{
				Log:        testLog,
				MaxSockets: 1,
				Manager:    manager,
				Invites:    registry,
			},
			wantErr: true,
		},
		{
			name: "no invites",
			cfg: Config{
				Log:        testLog,
				MaxSockets: 1,
				Manager:    manager,
				Presence:   presence,
			},
			wantErr: true,
		},
		{
			name: "ok",
			cfg: Config{
				Log:        testLog,
				MaxSockets: 1,
				Manager:    manager,
				Presence:   presence,
				Invites:    registry,
			},
		},
	}
	for i, test := range newLobbyTests {
		l, err := test.cfg.NewLobby()
		switch {
		case test.wantErr:
			if err == nil {
				t.Errorf("Test %v (%v): wanted error", i, test.name)
			}
		case err != nil:
			t.Errorf("Test %v (%v): unwanted error: %v", i, test.name, err)
		case l == nil:
			t.Errorf("Test %v (%v): wanted lobby", i, test.name)
		}
	}
}

func TestHandleJoinGame(t *testing.T) {
	instance := game.Instance{
		GameID:   "g1",
		GameType: game.TypeNim,
		State:    game.State{Status: game.InProgress, RemainingObjects: 18},
	}
	manager := mockGameManager{
		JoinGameFunc: func(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error) {
			t.Error("wanted joinGame to change room membership only, not game state")
			return nil, game.ErrDuplicatePlayer
		},
		ApplyMoveFunc: func(ctx context.Context, mv game.Move) (*game.Instance, error) {
			return &instance, nil
		},
	}
	l := testLobby(t, manager, mockPresence{})
	alice := addTestPlayer(l, "alice")
	addTestPlayer(l, "bob")
	// alice already joined the game over the http api; the event only subscribes her
	l.handleMessage(context.Background(), message.Message{
		Event:    message.JoinGame,
		GameID:   "g1",
		PlayerID: "alice",
	})
	if _, ok := l.roomMembers("g1")["alice"]; !ok {
		t.Fatalf("wanted alice subscribed to the game's room, got %v", l.roomMembers("g1"))
	}
	if len(alice) != 0 {
		t.Errorf("wanted no message for a room subscription, got %v", <-alice)
	}
	l.joinRoom("g1", "bob")
	l.handleMessage(context.Background(), message.Message{
		Event:    message.MakeMove,
		GameID:   "g1",
		PlayerID: "bob",
		Move: &game.Move{
			Move: game.MovePayload{NumObjects: 3},
		},
	})
	got := receivedMessage(t, alice)
	if got.Event != message.GameUpdate {
		t.Errorf("wanted subscribed alice to get bob's move update, got %v", got.Event)
	}
}

func TestHandleLeaveGameDoesNotForfeit(t *testing.T) {
	manager := mockGameManager{
		LeaveGameFunc: func(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error) {
			t.Error("wanted leaveGame to change room membership only, not game state")
			return nil, game.ErrNotInGame
		},
	}
	l := testLobby(t, manager, mockPresence{})
	addTestPlayer(l, "alice")
	addTestPlayer(l, "bob")
	l.joinRoom("g1", "alice")
	l.joinRoom("g1", "bob")
	l.handleMessage(context.Background(), message.Message{
		Event:    message.LeaveGame,
		GameID:   "g1",
		PlayerID: "alice",
	})
	members := l.roomMembers("g1")
	if _, ok := members["alice"]; ok {
		t.Errorf("wanted alice unsubscribed from the room, got %v", members)
	}
	if _, ok := members["bob"]; !ok {
		t.Errorf("wanted bob still subscribed, got %v", members)
	}
}

func TestHandleMakeMove(t *testing.T) {
	instance := game.Instance{
		GameID: "g1",
		State:  game.State{Status: game.InProgress, RemainingObjects: 18},
	}
	var gotMove game.Move
	manager := mockGameManager{
		ApplyMoveFunc: func(ctx context.Context, mv game.Move) (*game.Instance, error) {
			gotMove = mv
			return &instance, nil
		},
	}
	l := testLobby(t, manager, mockPresence{})
	alice := addTestPlayer(l, "alice")
	bob := addTestPlayer(l, "bob")
	l.joinRoom("g1", "alice")
	l.joinRoom("g1", "bob")
	l.handleMessage(context.Background(), message.Message{
		Event:    message.MakeMove,
		GameID:   "g1",
		PlayerID: "alice",
		Move: &game.Move{
			Move: game.MovePayload{NumObjects: 3},
		},
	})
	switch {
	case gotMove.PlayerID != "alice":
		t.Errorf("wanted move stamped with the sender, got %v", gotMove.PlayerID)
	case gotMove.GameID != "g1":
		t.Errorf("wanted move stamped with the game, got %v", gotMove.GameID)
	case gotMove.Move.NumObjects != 3:
		t.Errorf("wanted move payload kept, got %v", gotMove.Move)
	}
	for _, messages := range []chan message.Message{alice, bob} {
		got := receivedMessage(t, messages)
		if got.Event != message.GameUpdate {
			t.Errorf("wanted both room members to get the update, got %v", got.Event)
		}
	}
}

func TestHandleMakeMoveRequiresMove(t *testing.T) {
	l := testLobby(t, mockGameManager{}, mockPresence{})
	alice := addTestPlayer(l, "alice")
	l.handleMessage(context.Background(), message.Message{
		Event:    message.MakeMove,
		GameID:   "g1",
		PlayerID: "alice",
	})
	got := receivedMessage(t, alice)
	if got.Event != message.GameError {
		t.Errorf("wanted game error for message without a move, got %v", got.Event)
	}
}

func TestHandleMakeMoveClosesRoomWhenOver(t *testing.T) {
	instance := game.Instance{
		GameID: "g1",
		State:  game.State{Status: game.Over, Winners: []game.PlayerID{"alice"}},
	}
	manager := mockGameManager{
		ApplyMoveFunc: func(ctx context.Context, mv game.Move) (*game.Instance, error) {
			return &instance, nil
		},
	}
	l := testLobby(t, manager, mockPresence{})
	addTestPlayer(l, "alice")
	addTestPlayer(l, "bob")
	l.joinRoom("g1", "alice")
	l.joinRoom("g1", "bob")
	l.handleMessage(context.Background(), message.Message{
		Event:    message.MakeMove,
		GameID:   "g1",
		PlayerID: "alice",
		Move: &game.Move{
			Move: game.MovePayload{NumObjects: 1},
		},
	})
	if members := l.roomMembers("g1"); len(members) != 0 {
		t.Errorf("wanted the finished game's room closed, got %v", members)
	}
}

func TestHandleSendInvite(t *testing.T) {
	sendInviteTests := []struct {
		name      string
		recipient string
		online    bool
		lookupErr error
		pending   bool
		wantError string
	}{
		{
			name:      "no recipient",
			wantError: "recipient username required",
		},
		{
			name:      "self invite",
			recipient: "alice",
			wantError: "cannot invite yourself",
		},
		{
			name:      "lookup error",
			recipient: "bob",
			lookupErr: errors.New("redis down"),
			wantError: "could not look up user",
		},
		{
			name:      "recipient offline",
			recipient: "bob",
			wantError: "Recipient is not online",
		},
		{
			name:      "duplicate invite",
			recipient: "bob",
			online:    true,
			pending:   true,
			wantError: "Invitation already sent",
		},
		{
			name:      "ok",
			recipient: "bob",
			online:    true,
		},
	}
	for i, test := range sendInviteTests {
		presence := mockPresence{
			LookupFunc: func(ctx context.Context, username string) (string, bool, error) {
				return "bob.pc:8080", test.online, test.lookupErr
			},
		}
		l := testLobby(t, mockGameManager{}, presence)
		alice := addTestPlayer(l, "alice")
		bob := addTestPlayer(l, "bob")
		if test.pending {
			l.Invites.Create("alice", "bob", "bob.pc:8080")
		}
		l.handleMessage(context.Background(), message.Message{
			Event:             message.SendQuizInvite,
			PlayerID:          "alice",
			RecipientUsername: test.recipient,
		})
		if test.wantError != "" {
			got := receivedMessage(t, alice)
			switch {
			case got.Event != message.QuizInviteError:
				t.Errorf("Test %v (%v): wanted invite error, got %v", i, test.name, got.Event)
			case got.Error != test.wantError:
				t.Errorf("Test %v (%v): wanted error %q, got %q", i, test.name, test.wantError, got.Error)
			}
			continue
		}
		got := receivedMessage(t, bob)
		switch {
		case got.Event != message.QuizInviteReceived:
			t.Errorf("Test %v (%v): wanted invite received, got %v", i, test.name, got.Event)
		case got.Invite == nil:
			t.Errorf("Test %v (%v): wanted invite in message", i, test.name)
		case got.Invite.Status != invite.Pending:
			t.Errorf("Test %v (%v): wanted pending invite, got %v", i, test.name, got.Invite.Status)
		case got.Invite.ChallengerUsername != "alice":
			t.Errorf("Test %v (%v): wanted challenger alice, got %v", i, test.name, got.Invite.ChallengerUsername)
		}
	}
}

func TestHandleInviteResponseAccept(t *testing.T) {
	instance := game.Instance{
		GameID:   "g1",
		GameType: game.TypeTrivia,
		State:    game.State{Status: game.InProgress},
	}
	var joined []game.PlayerID
	manager := mockGameManager{
		AddGameFunc: func(ctx context.Context, gameType game.Type, createdBy game.PlayerID) (game.ID, error) {
			if gameType != game.TypeTrivia {
				t.Errorf("wanted trivia game for accepted invitation, got %v", gameType)
			}
			return "g1", nil
		},
		JoinGameFunc: func(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error) {
			joined = append(joined, playerID)
			return &instance, nil
		},
		StartGameFunc: func(ctx context.Context, id game.ID) (*game.Instance, error) {
			return &instance, nil
		},
	}
	l := testLobby(t, manager, mockPresence{})
	alice := addTestPlayer(l, "alice")
	bob := addTestPlayer(l, "bob")
	inv := l.Invites.Create("alice", "bob", "bob.pc:8080")
	accepted := true
	l.handleMessage(context.Background(), message.Message{
		Event:    message.RespondToQuizInvite,
		PlayerID: "bob",
		InviteID: inv.InviteID,
		Accepted: &accepted,
	})
	if len(joined) != 2 {
		t.Fatalf("wanted both players joined to the new game, got %v", joined)
	}
	for _, messages := range []chan message.Message{alice, bob} {
		got := receivedMessage(t, messages)
		switch {
		case got.Event != message.QuizInviteAccepted:
			t.Errorf("wanted invite accepted message, got %v", got.Event)
		case got.GameID != "g1":
			t.Errorf("wanted new game id in message, got %v", got.GameID)
		case got.ChallengerUsername != "alice":
			t.Errorf("wanted challenger in message, got %q", got.ChallengerUsername)
		case got.RecipientUsername != "bob":
			t.Errorf("wanted recipient in message, got %q", got.RecipientUsername)
		case got.Game == nil:
			t.Error("wanted started game state in message")
		}
	}
	if _, ok := l.Invites.Get(inv.InviteID); ok {
		t.Error("wanted resolved invitation removed")
	}
	if members := l.roomMembers("g1"); len(members) != 2 {
		t.Errorf("wanted both players subscribed to the new game's room, got %v", members)
	}
}

func TestHandleInviteResponseDecline(t *testing.T) {
	l := testLobby(t, mockGameManager{}, mockPresence{})
	alice := addTestPlayer(l, "alice")
	bob := addTestPlayer(l, "bob")
	inv := l.Invites.Create("alice", "bob", "bob.pc:8080")
	accepted := false
	l.handleMessage(context.Background(), message.Message{
		Event:    message.RespondToQuizInvite,
		PlayerID: "bob",
		InviteID: inv.InviteID,
		Accepted: &accepted,
	})
	for _, messages := range []chan message.Message{alice, bob} {
		got := receivedMessage(t, messages)
		switch {
		case got.Event != message.QuizInviteDeclined:
			t.Errorf("wanted invite declined message, got %v", got.Event)
		case got.ChallengerUsername != "alice":
			t.Errorf("wanted challenger in message, got %q", got.ChallengerUsername)
		case got.RecipientUsername != "bob":
			t.Errorf("wanted recipient in message, got %q", got.RecipientUsername)
		}
	}
	if _, ok := l.Invites.Get(inv.InviteID); ok {
		t.Error("wanted resolved invitation removed")
	}
}

func TestHandleInviteResponseWrongRecipient(t *testing.T) {
	l := testLobby(t, mockGameManager{}, mockPresence{})
	addTestPlayer(l, "alice")
	carol := addTestPlayer(l, "carol")
	inv := l.Invites.Create("alice", "bob", "bob.pc:8080")
	accepted := true
	l.handleMessage(context.Background(), message.Message{
		Event:    message.RespondToQuizInvite,
		PlayerID: "carol",
		InviteID: inv.InviteID,
		Accepted: &accepted,
	})
	got := receivedMessage(t, carol)
	if got.Event != message.QuizInviteError {
		t.Errorf("wanted invite error for answering someone else's invitation, got %v", got.Event)
	}
	if _, ok := l.Invites.Get(inv.InviteID); !ok {
		t.Error("wanted unanswered invitation kept")
	}
}

func TestHandleDisconnect(t *testing.T) {
	over := game.Instance{
		GameID: "g1",
		State:  game.State{Status: game.Over, Winners: []game.PlayerID{"bob"}},
	}
	var leftGames []game.ID
	manager := mockGameManager{
		GamesByPlayerFunc: func(ctx context.Context, playerID game.PlayerID) ([]game.Instance, error) {
			return []game.Instance{
				{GameID: "g1", State: game.State{Status: game.InProgress}},
				{GameID: "g0", State: game.State{Status: game.Over}},
				{GameID: "g2", State: game.State{Status: game.WaitingToStart}},
			}, nil
		},
		LeaveGameFunc: func(ctx context.Context, id game.ID, playerID game.PlayerID) (*game.Instance, error) {
			leftGames = append(leftGames, id)
			return &over, nil
		},
	}
	var wentOffline string
	presence := mockPresence{
		SetOfflineFunc: func(ctx context.Context, username string) error {
			wentOffline = username
			return nil
		},
	}
	l := testLobby(t, manager, presence)
	bob := addTestPlayer(l, "bob")
	l.joinRoom("g1", "bob")
	l.joinRoom("g2", "bob")
	l.handleDisconnect(context.Background(), "alice")
	if wentOffline != "alice" {
		t.Errorf("wanted alice set offline, got %q", wentOffline)
	}
	if len(leftGames) != 1 || leftGames[0] != "g1" {
		t.Errorf("wanted only the running game forfeited, got %v", leftGames)
	}
	got := receivedMessage(t, bob)
	switch {
	case got.Event != message.OpponentDisconnected:
		t.Errorf("wanted opponent disconnected message, got %v", got.Event)
	case got.DisconnectedPlayer != "alice":
		t.Errorf("wanted alice reported as disconnected, got %v", got.DisconnectedPlayer)
	case got.Winner != "bob":
		t.Errorf("wanted bob reported as winner, got %v", got.Winner)
	}
	status := receivedMessage(t, bob)
	switch {
	case status.Event != message.UserStatusUpdate:
		t.Errorf("wanted user status update, got %v", status.Event)
	case status.Online == nil || *status.Online:
		t.Errorf("wanted alice reported offline, got %v", status.Online)
	}
}

func TestMemoryPresence(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPresence()
	if _, online, _ := p.Lookup(ctx, "alice"); online {
		t.Error("wanted unknown user to be offline")
	}
	p.SetOnline(ctx, "alice", "alice.pc:8080")
	addr, online, err := p.Lookup(ctx, "alice")
	switch {
	case err != nil:
		t.Fatalf("unwanted error: %v", err)
	case !online:
		t.Error("wanted alice online")
	case addr != "alice.pc:8080":
		t.Errorf("wanted alice's socket address, got %v", addr)
	}
	p.SetOffline(ctx, "alice")
	if _, online, _ := p.Lookup(ctx, "alice"); online {
		t.Error("wanted alice offline after disconnect")
	}
}
