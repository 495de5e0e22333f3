package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// redisRecordVersion is bumped whenever redisRecord changes shape.
const redisRecordVersion = 1

// RedisStore implements Store on Redis.
//
// Layout under prefix:
//
//	<prefix>:s:<id>    JSON record, expires with the session
//	<prefix>:t:<hash>  session ID for a cookie token digest
//	<prefix>:u:<user>  set of the user's session IDs, expires with the
//	                   user's longest possible session
//
// Revoked records are kept until they expire so that a revoked credential
// is reported as revoked rather than unknown.
type RedisStore struct {
	client   redis.UniversalClient
	prefix   string
	indexTTL time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithUserIndexTTL sets the lifetime of the per-user index, refreshed on
// every Create. It should be at least the longest session TTL; the default
// is DefaultConfig().SessionTTLNative.
func WithUserIndexTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.indexTTL = d
		}
	}
}

// NewRedisStore creates a Redis-backed session store. An empty prefix
// selects "sf:sess".
func NewRedisStore(client redis.UniversalClient, prefix string, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("session: nil redis client")
	}
	if prefix == "" {
		prefix = "sf:sess"
	}
	s := &RedisStore{client: client, prefix: prefix, indexTTL: DefaultConfig().SessionTTLNative}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

type redisRecord struct {
	V                int        `json:"v"`
	ID               string     `json:"id"`
	UserID           string     `json:"uid"`
	TokenHash        string     `json:"th,omitempty"`
	Platform         string     `json:"pf"`
	UserAgent        string     `json:"ua,omitempty"`
	CreatedAt        time.Time  `json:"ct"`
	ExpiresAt        time.Time  `json:"et"`
	RevokedAt        *time.Time `json:"rt,omitempty"`
	RevocationReason string     `json:"rr,omitempty"`
}

func (s *RedisStore) sessionKey(id string) string  { return s.prefix + ":s:" + id }
func (s *RedisStore) tokenKey(hash string) string  { return s.prefix + ":t:" + hash }
func (s *RedisStore) userKey(userID string) string { return s.prefix + ":u:" + userID }

func (s *RedisStore) Create(ctx context.Context, now time.Time, userID string, dev DeviceContext, tokenHash string, expiresAt time.Time) (string, error) {
	ttl := expiresAt.Sub(now)
	if ttl < time.Second {
		return "", fmt.Errorf("session: expiry %s is not in the future", expiresAt.Format(time.RFC3339))
	}

	id := ulid.Make().String()
	data, err := json.Marshal(redisRecord{
		V:         redisRecordVersion,
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		Platform:  string(dev.Platform),
		UserAgent: dev.UserAgent,
		CreatedAt: now.UTC(),
		ExpiresAt: expiresAt.UTC(),
	})
	if err != nil {
		return "", err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(id), data, ttl)
		if tokenHash != "" {
			pipe.Set(ctx, s.tokenKey(tokenHash), id, ttl)
		}
		pipe.SAdd(ctx, s.userKey(userID), id)
		pipe.Expire(ctx, s.userKey(userID), max(s.indexTTL, ttl))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("redis create session: %w", err)
	}
	return id, nil
}

func (s *RedisStore) GetByID(ctx context.Context, sessionID string) (Row, error) {
	rec, err := s.load(ctx, sessionID)
	if err != nil {
		return Row{}, err
	}
	return rec.row()
}

func (s *RedisStore) GetByTokenHash(ctx context.Context, tokenHash string) (Row, error) {
	id, err := s.client.Get(ctx, s.tokenKey(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return Row{}, ErrSessionNotFound
	}
	if err != nil {
		return Row{}, fmt.Errorf("redis get token: %w", err)
	}

	row, err := s.GetByID(ctx, id)
	if err != nil {
		return Row{}, err
	}
	if row.TokenHash != tokenHash {
		return Row{}, ErrMalformedRecord
	}
	return row, nil
}

func (s *RedisStore) Revoke(ctx context.Context, now time.Time, sessionID string, reason string) error {
	rec, err := s.load(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.markRevoked(ctx, rec, now, reason)
}

// RevokeAll revokes every indexed session of the user and prunes index
// entries whose record has already expired.
func (s *RedisStore) RevokeAll(ctx context.Context, now time.Time, userID string, reason string) error {
	userKey := s.userKey(userID)

	ids, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis list user sessions: %w", err)
	}

	var stale []any
	for _, id := range ids {
		rec, err := s.load(ctx, id)
		switch {
		case errors.Is(err, ErrSessionNotFound):
			stale = append(stale, id)
			continue
		case err != nil:
			return err
		}
		if err := s.markRevoked(ctx, rec, now, reason); err != nil {
			return err
		}
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, userKey, stale...).Err(); err != nil {
			return fmt.Errorf("redis prune user sessions: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) markRevoked(ctx context.Context, rec redisRecord, now time.Time, reason string) error {
	if rec.RevokedAt != nil {
		return nil
	}
	at := now.UTC()
	rec.RevokedAt = &at
	rec.RevocationReason = reason

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	// XX keeps a record that expired meanwhile from being resurrected.
	err = s.client.SetArgs(ctx, s.sessionKey(rec.ID), data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis revoke session: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, sessionID string) (redisRecord, error) {
	data, err := s.client.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return redisRecord{}, ErrSessionNotFound
	}
	if err != nil {
		return redisRecord{}, fmt.Errorf("redis get session: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return redisRecord{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if rec.V != redisRecordVersion || rec.ID != sessionID {
		return redisRecord{}, ErrMalformedRecord
	}
	return rec, nil
}

func (rec redisRecord) row() (Row, error) {
	row := Row{
		ID:               rec.ID,
		UserID:           rec.UserID,
		TokenHash:        rec.TokenHash,
		Platform:         Platform(rec.Platform),
		UserAgent:        rec.UserAgent,
		CreatedAt:        rec.CreatedAt,
		ExpiresAt:        rec.ExpiresAt,
		RevokedAt:        rec.RevokedAt,
		RevocationReason: rec.RevocationReason,
	}
	if err := row.validate(); err != nil {
		return Row{}, err
	}
	return row, nil
}
