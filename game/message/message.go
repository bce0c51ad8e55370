// Package message contains the structures passed between clients and the
// server over the lobby websocket.
package message

import (
	"github.com/fanout-games/arcade/game"
	"github.com/fanout-games/arcade/game/invite"
)

type (
	// Event names the purpose of a message.
	Event string

	// Message is one lobby websocket frame.  Only the fields an event uses are
	// populated; the rest are omitted from the JSON.
	Message struct {
		// Event is the purpose of the message.
		Event Event `json:"event"`
		// GameID is the game the message is about.
		GameID game.ID `json:"gameID,omitempty"`
		// Move is the payload of a MakeMove message.
		Move *game.Move `json:"move,omitempty"`
		// Game is the state of the game after the event.
		Game *game.Instance `json:"game,omitempty"`
		// Error is the text of a rejected request.
		Error string `json:"error,omitempty"`
		// Info is human-readable text to show the player.
		Info string `json:"info,omitempty"`

		// Invite fields.
		Invite             *invite.Invite `json:"invite,omitempty"`
		InviteID           string         `json:"inviteId,omitempty"`
		ChallengerUsername string         `json:"challengerUsername,omitempty"`
		RecipientUsername  string         `json:"recipientUsername,omitempty"`
		Accepted           *bool          `json:"accepted,omitempty"`

		// Presence fields.
		Username string `json:"username,omitempty"`
		Online   *bool  `json:"online,omitempty"`

		// DisconnectedPlayer is the player whose connection dropped mid-game.
		DisconnectedPlayer game.PlayerID `json:"disconnectedPlayer,omitempty"`
		// Winner is the player awarded the game after a disconnect.
		Winner game.PlayerID `json:"winner,omitempty"`

		// PlayerID is the player the message is to/from.  It is bound to the
		// connection, never trusted from the wire.
		PlayerID game.PlayerID `json:"-"`
	}
)

// The events clients send.
const (
	// JoinGame subscribes the connection to a game's updates.
	JoinGame Event = "joinGame"
	// LeaveGame unsubscribes the connection from a game's updates.
	LeaveGame Event = "leaveGame"
	// MakeMove applies the attached move to its game.
	MakeMove Event = "makeMove"
	// SendQuizInvite challenges another user to a trivia game.
	SendQuizInvite Event = "sendQuizInvite"
	// RespondToQuizInvite accepts or declines an invitation.
	RespondToQuizInvite Event = "respondToQuizInvite"
)

// The events the server sends.
const (
	// GameUpdate carries the new state of a game to its room.
	GameUpdate Event = "gameUpdate"
	// GameError reports a rejected game request to its sender.
	GameError Event = "gameError"
	// QuizInviteReceived notifies a recipient of a new invitation.
	QuizInviteReceived Event = "quizInviteReceived"
	// QuizInviteAccepted notifies both sides that a game was set up.
	QuizInviteAccepted Event = "quizInviteAccepted"
	// QuizInviteDeclined notifies both sides that the invitation was declined.
	QuizInviteDeclined Event = "quizInviteDeclined"
	// QuizInviteError reports a rejected invitation request to its sender.
	QuizInviteError Event = "quizInviteError"
	// OpponentDisconnected notifies the remaining player that they won by default.
	OpponentDisconnected Event = "opponentDisconnected"
	// UserStatusUpdate broadcasts a user's online/offline transition.
	UserStatusUpdate Event = "userStatusUpdate"
)
