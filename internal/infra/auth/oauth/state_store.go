package oauth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"restapi/internal/domain/service"
	"restapi/internal/errors"
)

const stateKeyPrefix = "oauth:state:"

type stateEntry struct {
	verifier string
	expiry   time.Time
}

// memoryStateStore keeps states in process memory.
type memoryStateStore struct {
	mu     sync.Mutex
	states map[string]stateEntry
	now    func() time.Time
}

// NewMemoryStateStore returns a single-process state store.
func NewMemoryStateStore() service.OAuthStateStore {
	return &memoryStateStore{states: map[string]stateEntry{}, now: time.Now}
}

func (s *memoryStateStore) Save(_ context.Context, state, verifier string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cleanupExpired()
	s.states[state] = stateEntry{verifier: verifier, expiry: s.now().Add(ttl)}

	return nil
}

// Consume removes the state whether or not it expired, so it cannot be replayed.
func (s *memoryStateStore) Consume(_ context.Context, state string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.states[state]
	if !exists {
		return "", false, nil
	}
	delete(s.states, state)

	if s.now().After(entry.expiry) {
		return "", false, nil
	}

	return entry.verifier, true, nil
}

func (s *memoryStateStore) cleanupExpired() {
	now := s.now()
	for state, entry := range s.states {
		if now.After(entry.expiry) {
			delete(s.states, state)
		}
	}
}

// redisStateStore shares states between instances.
type redisStateStore struct {
	client redis.UniversalClient
}

// NewRedisStateStore returns a state store backed by redis.
func NewRedisStateStore(client redis.UniversalClient) service.OAuthStateStore {
	return &redisStateStore{client: client}
}

func (s *redisStateStore) Save(ctx context.Context, state, verifier string, ttl time.Duration) error {
	if err := s.client.Set(ctx, stateKeyPrefix+state, verifier, ttl).Err(); err != nil {
		return errors.Wrap(err, "store oauth state")
	}

	return nil
}

func (s *redisStateStore) Consume(ctx context.Context, state string) (string, bool, error) {
	verifier, err := s.client.GetDel(ctx, stateKeyPrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "consume oauth state")
	}

	return verifier, true, nil
}

// NewStateStore picks the redis store when a client is available.
func NewStateStore(client *redis.Client) service.OAuthStateStore {
	if client == nil {
		return NewMemoryStateStore()
	}

	return NewRedisStateStore(client)
}
