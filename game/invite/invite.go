// Package invite tracks quiz invitations between users.  Invitations only
// exist while they are being negotiated and are never persisted.
package invite

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type (
	// Status is the negotiation state of an invitation.
	Status string

	// Invite is a challenge from one user to another to play a trivia game.
	Invite struct {
		// InviteID is unique among the invitations that currently exist.
		InviteID string `json:"inviteId"`
		// ChallengerUsername is the user that sent the invitation.
		ChallengerUsername string `json:"challengerUsername"`
		// RecipientUsername is the user being challenged.
		RecipientUsername string `json:"recipientUsername"`
		// RecipientSocketAddr is where the recipient's connection lives, from the presence registry.
		RecipientSocketAddr string `json:"recipientSocketAddr,omitempty"`
		// Status is pending until the recipient responds.
		Status Status `json:"status"`
	}

	// Registry holds the invitations that have not been resolved yet.
	Registry struct {
		mu      sync.Mutex
		invites map[string]Invite
	}
)

const (
	// Pending is the status of an invitation awaiting a response.
	Pending Status = "pending"
	// Accepted is the status of an invitation the recipient accepted.
	Accepted Status = "accepted"
	// Declined is the status of an invitation the recipient declined.
	Declined Status = "declined"
)

// NewRegistry creates an empty invitation registry.
func NewRegistry() *Registry {
	return &Registry{
		invites: make(map[string]Invite),
	}
}

// Create adds a pending invitation and returns it.
func (r *Registry) Create(challengerUsername, recipientUsername, recipientSocketAddr string) Invite {
	inv := Invite{
		InviteID:            uuid.NewString(),
		ChallengerUsername:  challengerUsername,
		RecipientUsername:   recipientUsername,
		RecipientSocketAddr: recipientSocketAddr,
		Status:              Pending,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invites[inv.InviteID] = inv
	return inv
}

// HasPending reports whether the challenger already has an unresolved
// invitation to the recipient.  The check is direction-sensitive: an
// invitation the other way does not count.
func (r *Registry) HasPending(challengerUsername, recipientUsername string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invites {
		if inv.Status == Pending &&
			inv.ChallengerUsername == challengerUsername &&
			inv.RecipientUsername == recipientUsername {
			return true
		}
	}
	return false
}

// Get looks up an invitation by id.
func (r *Registry) Get(inviteID string) (Invite, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[inviteID]
	return inv, ok
}

// SetStatus resolves an invitation, returning its updated value.
func (r *Registry) SetStatus(inviteID string, status Status) (Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[inviteID]
	if !ok {
		return Invite{}, fmt.Errorf("no invitation with id %v", inviteID)
	}
	inv.Status = status
	r.invites[inviteID] = inv
	return inv, nil
}

// Remove deletes an invitation.  Removing an unknown id is a no-op.
func (r *Registry) Remove(inviteID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invites, inviteID)
}
