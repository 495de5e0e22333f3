package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// memorySweepEvery spaces out the expired-row sweeps run by Create.
const memorySweepEvery = time.Minute

// MemoryStore keeps sessions in process memory. Rows are lost on restart.
// Expired rows are evicted by Create, at most once per memorySweepEvery.
type MemoryStore struct {
	mu        sync.RWMutex
	rows      map[string]Row
	byToken   map[string]string
	lastSweep time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows:    make(map[string]Row),
		byToken: make(map[string]string),
	}
}

func (s *MemoryStore) Create(ctx context.Context, now time.Time, userID string, dev DeviceContext, tokenHash string, expiresAt time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := ulid.Make().String()
	row := Row{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		Platform:  dev.Platform,
		UserAgent: dev.UserAgent,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= memorySweepEvery {
		s.sweepLocked(now)
	}
	s.rows[id] = row
	if tokenHash != "" {
		s.byToken[tokenHash] = id
	}
	return id, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, sessionID string) (Row, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[sessionID]
	if !ok {
		return Row{}, ErrSessionNotFound
	}
	return cloneRow(row), nil
}

func (s *MemoryStore) GetByTokenHash(ctx context.Context, tokenHash string) (Row, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byToken[tokenHash]
	if !ok {
		return Row{}, ErrSessionNotFound
	}
	return cloneRow(s.rows[id]), nil
}

func (s *MemoryStore) Revoke(ctx context.Context, now time.Time, sessionID string, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if row, ok := s.rows[sessionID]; ok && row.RevokedAt == nil {
		s.rows[sessionID] = revoked(row, now, reason)
	}
	return nil
}

func (s *MemoryStore) RevokeAll(ctx context.Context, now time.Time, userID string, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, row := range s.rows {
		if row.UserID == userID && row.RevokedAt == nil {
			s.rows[id] = revoked(row, now, reason)
		}
	}
	return nil
}

// Len returns the number of stored rows, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	s.lastSweep = now
	for id, row := range s.rows {
		if now.Before(row.ExpiresAt) {
			continue
		}
		delete(s.rows, id)
		if row.TokenHash != "" {
			delete(s.byToken, row.TokenHash)
		}
	}
}

func revoked(row Row, now time.Time, reason string) Row {
	at := now
	row.RevokedAt = &at
	row.RevocationReason = reason
	return row
}

func cloneRow(row Row) Row {
	if row.RevokedAt != nil {
		at := *row.RevokedAt
		row.RevokedAt = &at
	}
	return row
}
