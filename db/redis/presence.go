// Package redis implements the user presence registry on a redis server.
// The registry records whether each user is online and which socket address
// their lobby connection lives at.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fanout-games/arcade/db"
)

const (
	onlineField = "online"
	addrField   = "addr"
)

// Presence reads and writes per-user presence hashes.
type Presence struct {
	client *redis.Client
	db.Config
}

// NewPresence connects to the redis server at the url.
func NewPresence(cfg db.Config, redisURL string) (*Presence, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating redis presence registry: validation: %w", err)
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	p := Presence{
		client: redis.NewClient(opts),
		Config: cfg,
	}
	return &p, nil
}

func presenceKey(username string) string {
	return "presence:" + username
}

// SetOnline marks the user online at the socket address.
func (p *Presence) SetOnline(ctx context.Context, username, socketAddr string) error {
	ctx, cancelFunc := context.WithTimeout(ctx, p.QueryPeriod)
	defer cancelFunc()
	fields := map[string]interface{}{
		onlineField: "1",
		addrField:   socketAddr,
	}
	if err := p.client.HSet(ctx, presenceKey(username), fields).Err(); err != nil {
		return fmt.Errorf("setting user online: %w", err)
	}
	return nil
}

// SetOffline marks the user offline and forgets their socket address.
func (p *Presence) SetOffline(ctx context.Context, username string) error {
	ctx, cancelFunc := context.WithTimeout(ctx, p.QueryPeriod)
	defer cancelFunc()
	key := presenceKey(username)
	if err := p.client.HSet(ctx, key, onlineField, "0").Err(); err != nil {
		return fmt.Errorf("setting user offline: %w", err)
	}
	if err := p.client.HDel(ctx, key, addrField).Err(); err != nil {
		return fmt.Errorf("clearing user socket address: %w", err)
	}
	return nil
}

// Lookup reads the user's presence.  Users never seen before are offline.
func (p *Presence) Lookup(ctx context.Context, username string) (socketAddr string, online bool, err error) {
	ctx, cancelFunc := context.WithTimeout(ctx, p.QueryPeriod)
	defer cancelFunc()
	fields, err := p.client.HGetAll(ctx, presenceKey(username)).Result()
	if err != nil {
		return "", false, fmt.Errorf("looking up user presence: %w", err)
	}
	return fields[addrField], fields[onlineField] == "1", nil
}
