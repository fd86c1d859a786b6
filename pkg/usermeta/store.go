package usermeta

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrAnonymous is returned when a user id is the zero UUID.
	ErrAnonymous = errors.New("usermeta: anonymous user")
	// ErrInvalidKey is returned for empty meta keys.
	ErrInvalidKey = errors.New("usermeta: invalid key")
)

// Store reads and writes string meta values per user.
type Store interface {
	Get(ctx context.Context, userID uuid.UUID, key string) (string, bool, error)
	Set(ctx context.Context, userID uuid.UUID, key, value string) error
}

// ParseUserID parses a textual user id. Blank input yields uuid.Nil.
func ParseUserID(input string) (uuid.UUID, error) {
	value := strings.TrimSpace(input)
	if value == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("usermeta: parse user id: %w", err)
	}
	return id, nil
}

func checkArgs(ctx context.Context, userID uuid.UUID, key string) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if userID == uuid.Nil {
		return ErrAnonymous
	}
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}

// MemoryStore keeps meta values in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[uuid.UUID]map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[uuid.UUID]map[string]string)}
}

func (s *MemoryStore) Get(ctx context.Context, userID uuid.UUID, key string) (string, bool, error) {
	if err := checkArgs(ctx, userID, key); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[userID][key]
	return value, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, userID uuid.UUID, key, value string) error {
	if err := checkArgs(ctx, userID, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[uuid.UUID]map[string]string)
	}
	meta, ok := s.values[userID]
	if !ok {
		meta = make(map[string]string)
		s.values[userID] = meta
	}
	meta[key] = value
	return nil
}
