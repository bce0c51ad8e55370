package lobby

import (
	"context"
	"sync"
)

// MemoryPresence tracks which users are online in process memory.  It is used
// when the server is run without a redis url.
type MemoryPresence struct {
	mu    sync.Mutex
	addrs map[string]string
}

// NewMemoryPresence creates an empty in-memory presence registry.
func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{
		addrs: make(map[string]string),
	}
}

// SetOnline marks the user online at the socket address.
func (p *MemoryPresence) SetOnline(ctx context.Context, username, socketAddr string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addrs[username] = socketAddr
	return nil
}

// SetOffline marks the user offline.
func (p *MemoryPresence) SetOffline(ctx context.Context, username string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.addrs, username)
	return nil
}

// Lookup reads the user's presence.  Users never seen before are offline.
func (p *MemoryPresence) Lookup(ctx context.Context, username string) (socketAddr string, online bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	addr, ok := p.addrs[username]
	return addr, ok, nil
}
