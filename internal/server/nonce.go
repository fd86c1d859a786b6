package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultNonceTTL is how long an issued checkout nonce stays valid.
const DefaultNonceTTL = time.Hour

// NonceStore issues single-use checkout nonces.
type NonceStore struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	ttl    time.Duration
	tokens map[string]time.Time
}

func NewNonceStore(clock clockwork.Clock, ttl time.Duration) *NonceStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultNonceTTL
	}
	return &NonceStore{
		clock:  clock,
		ttl:    ttl,
		tokens: make(map[string]time.Time),
	}
}

// Issue returns a fresh token. Expired tokens are swept on the way.
func (s *NonceStore) Issue() string {
	token := uuid.NewString()
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, expires := range s.tokens {
		if !now.Before(expires) {
			delete(s.tokens, key)
		}
	}
	s.tokens[token] = now.Add(s.ttl)
	return token
}

// Consume reports whether token was issued and has not expired. A token is
// accepted at most once.
func (s *NonceStore) Consume(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expires, ok := s.tokens[token]
	if !ok {
		return false
	}
	delete(s.tokens, token)
	return s.clock.Now().Before(expires)
}
