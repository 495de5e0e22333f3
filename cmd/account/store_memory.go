package account

import (
	"context"
	"sync"
)

// MemoryStore is the dev fallback used when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]Account
	byEmail map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]Account),
		byEmail: make(map[string]string),
	}
}

// Create stores a new account; the email must be unused.
func (s *MemoryStore) Create(ctx context.Context, in CreateInput) (Account, error) {
	const op = "account.Create"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	acc, err := prepare(op, in)
	if err != nil {
		return Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[acc.Email]; taken {
		return Account{}, ConflictError{Op: op, Field: "email"}
	}
	s.byID[acc.ID] = acc
	s.byEmail[acc.Email] = acc.ID
	return acc, nil
}

// GetByEmail looks an account up by its normalized email.
func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return Account{}, notFound("account.GetByEmail")
	}
	return s.byID[id], nil
}

// GetByID looks an account up by ID.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.byID[id]
	if !ok {
		return Account{}, notFound("account.GetByID")
	}
	return acc, nil
}
