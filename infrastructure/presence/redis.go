// Package presence mirrors presence transitions into Redis so other
// services can answer "is this user online" without talking to the hub.
package presence

import (
	"context"
	"dialog-hub/contract"
	"dialog-hub/domain"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 2 * time.Minute

var _ contract.IPresenceMirror = (*RedisMirror)(nil)

// RedisMirror keeps online:{user} alive with a TTL while the user is
// connected and records online:{user}:last_seen when they leave.
type RedisMirror struct {
	client *redis.Client
	ttl    time.Duration
}

// Dial connects to addr, which is either host:port or a redis:// URL.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		opt = &redis.Options{Addr: addr}
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func NewRedisMirror(client *redis.Client, ttl time.Duration) *RedisMirror {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisMirror{client: client, ttl: ttl}
}

func OnlineKey(user domain.UserID) string {
	return fmt.Sprintf("online:%d", user)
}

func LastSeenKey(user domain.UserID) string {
	return fmt.Sprintf("online:%d:last_seen", user)
}

// SetOnline is also used as the periodic refresh, so it only extends the TTL.
func (m *RedisMirror) SetOnline(ctx context.Context, user domain.UserID) error {
	return m.client.Set(ctx, OnlineKey(user), "1", m.ttl).Err()
}

func (m *RedisMirror) SetOffline(ctx context.Context, user domain.UserID, at time.Time) error {
	_, err := m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, OnlineKey(user))
		pipe.Set(ctx, LastSeenKey(user), at.UTC().Format(time.RFC3339), 0)
		return nil
	})
	return err
}

// IsOnline reads back the mirror; used by the inspect tool.
func (m *RedisMirror) IsOnline(ctx context.Context, user domain.UserID) (bool, error) {
	n, err := m.client.Exists(ctx, OnlineKey(user)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// LastSeen returns the recorded offline time, false when never recorded.
func (m *RedisMirror) LastSeen(ctx context.Context, user domain.UserID) (time.Time, bool, error) {
	raw, err := m.client.Get(ctx, LastSeenKey(user)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

func (m *RedisMirror) Close() error {
	return m.client.Close()
}
