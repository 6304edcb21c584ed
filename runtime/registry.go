package runtime

import (
	"dialog-hub/contract"
	"dialog-hub/domain"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const defaultShardCount = 32

var _ contract.IRegistry = (*Registry)(nil)

type shard struct {
	mu       sync.RWMutex
	users    map[domain.UserID]map[uuid.UUID]contract.Outbound
	lastSeen map[domain.UserID]time.Time // users that went offline
}

// Registry maps users to their live connections.
// Users are spread over shards, each guarded by its own RWMutex, so presence
// churn for one user never contends with lookups for another shard.
type Registry struct {
	shards []*shard
	now    func() time.Time
}

func NewRegistry(shardCount int) *Registry {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{
			users:    make(map[domain.UserID]map[uuid.UUID]contract.Outbound),
			lastSeen: make(map[domain.UserID]time.Time),
		}
	}
	return &Registry{shards: shards, now: time.Now}
}

func (r *Registry) shardOf(user domain.UserID) *shard {
	return r.shards[uint64(user)%uint64(len(r.shards))]
}

// Register adds conn and reports whether its user just went from 0 to 1 connection.
// Registering the same connection twice is a no-op.
func (r *Registry) Register(conn contract.Outbound) bool {
	s := r.shardOf(conn.UserID())
	s.mu.Lock()
	defer s.mu.Unlock()

	conns, ok := s.users[conn.UserID()]
	if !ok {
		conns = make(map[uuid.UUID]contract.Outbound)
		s.users[conn.UserID()] = conns
	}
	if _, exists := conns[conn.ID()]; exists {
		return false
	}
	conns[conn.ID()] = conn
	delete(s.lastSeen, conn.UserID())
	return len(conns) == 1
}

// Unregister removes conn and reports whether its user just went from 1 to 0 connection.
func (r *Registry) Unregister(conn contract.Outbound) bool {
	s := r.shardOf(conn.UserID())
	s.mu.Lock()
	defer s.mu.Unlock()

	conns, ok := s.users[conn.UserID()]
	if !ok {
		return false
	}
	if _, exists := conns[conn.ID()]; !exists {
		return false
	}
	delete(conns, conn.ID())
	if len(conns) > 0 {
		return false
	}
	delete(s.users, conn.UserID())
	s.lastSeen[conn.UserID()] = latest([]time.Time{conn.LastSeen(), r.now()})
	return true
}

func (r *Registry) ConnectionsOf(user domain.UserID) []contract.Outbound {
	s := r.shardOf(user)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Values(s.users[user])
}

func (r *Registry) IsOnline(user domain.UserID) bool {
	s := r.shardOf(user)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users[user]) > 0
}

// LastSeen returns the latest activity of an online user, or the moment an
// offline user dropped its last connection. ok is false for unknown users.
func (r *Registry) LastSeen(user domain.UserID) (time.Time, bool) {
	s := r.shardOf(user)
	s.mu.RLock()
	defer s.mu.RUnlock()

	if conns, online := s.users[user]; online {
		return latest(lo.Map(lo.Values(conns), func(conn contract.Outbound, _ int) time.Time {
			return conn.LastSeen()
		})), true
	}
	at, ok := s.lastSeen[user]
	return at, ok
}

// Idle lists connections without inbound activity since cutoff.
func (r *Registry) Idle(cutoff time.Time) []contract.Outbound {
	return r.collect(func(conn contract.Outbound) bool {
		return conn.LastSeen().Before(cutoff)
	})
}

func (r *Registry) OnlineUsers() []domain.UserID {
	var users []domain.UserID
	for _, s := range r.shards {
		s.mu.RLock()
		users = append(users, lo.Keys(s.users)...)
		s.mu.RUnlock()
	}
	return users
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	return len(r.collect(func(contract.Outbound) bool { return true }))
}

// CloseAll closes every live connection. Sessions unregister themselves on close.
func (r *Registry) CloseAll(code int, reason string) {
	for _, conn := range r.collect(func(contract.Outbound) bool { return true }) {
		conn.Close(code, reason)
	}
}

func (r *Registry) collect(keep func(contract.Outbound) bool) []contract.Outbound {
	var result []contract.Outbound
	for _, s := range r.shards {
		s.mu.RLock()
		for _, conns := range s.users {
			for _, conn := range conns {
				if keep(conn) {
					result = append(result, conn)
				}
			}
		}
		s.mu.RUnlock()
	}
	return result
}

func latest(times []time.Time) time.Time {
	return lo.MaxBy(times, func(a, b time.Time) bool {
		return a.After(b)
	})
}
