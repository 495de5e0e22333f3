package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// PostgresStore implements Store using PostgreSQL (<schema>.sessions).
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// NewPostgresStore creates a Postgres-backed session store. An empty schema
// selects "storefront".
func NewPostgresStore(pool *pgxpool.Pool, schema string) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("session: nil pool")
	}
	schema = strings.TrimSpace(schema)
	if schema == "" {
		schema = "storefront"
	}
	if !pgIdentRe.MatchString(schema) {
		return nil, fmt.Errorf("session: invalid schema identifier %q", schema)
	}
	return &PostgresStore{pool: pool, schema: schema}, nil
}

func (s *PostgresStore) table() string {
	return pgx.Identifier{s.schema, "sessions"}.Sanitize()
}

const pgSelectColumns = `id, user_id, token_hash, platform, user_agent,
	created_at, expires_at, revoked_at, revocation_reason`

// Create inserts a new session row and returns its ULID.
func (s *PostgresStore) Create(ctx context.Context, now time.Time, userID string, dev DeviceContext, tokenHash string, expiresAt time.Time) (string, error) {
	id := ulid.Make().String()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+s.table()+` (
			id, user_id, token_hash, platform, user_agent,
			created_at, expires_at, revoked_at, revocation_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, NULL)
	`, id, userID, tokenHash, string(dev.Platform), nullIfEmpty(dev.UserAgent), now, expiresAt)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetByID loads a session row by ID.
func (s *PostgresStore) GetByID(ctx context.Context, sessionID string) (Row, error) {
	return s.getOne(ctx, `id = $1`, sessionID)
}

// GetByTokenHash loads a session row by the digest of its opaque token.
func (s *PostgresStore) GetByTokenHash(ctx context.Context, tokenHash string) (Row, error) {
	return s.getOne(ctx, `token_hash = $1`, tokenHash)
}

func (s *PostgresStore) getOne(ctx context.Context, where string, arg string) (Row, error) {
	var (
		row       Row
		platform  string
		userAgent *string
		reason    *string
	)

	err := s.pool.QueryRow(ctx, `SELECT `+pgSelectColumns+` FROM `+s.table()+` WHERE `+where, arg).Scan(
		&row.ID,
		&row.UserID,
		&row.TokenHash,
		&platform,
		&userAgent,
		&row.CreatedAt,
		&row.ExpiresAt,
		&row.RevokedAt,
		&reason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrSessionNotFound
	}
	if err != nil {
		return Row{}, err
	}

	row.Platform = Platform(platform)
	if userAgent != nil {
		row.UserAgent = *userAgent
	}
	if reason != nil {
		row.RevocationReason = *reason
	}
	if err := row.validate(); err != nil {
		return Row{}, err
	}
	return row, nil
}

// Revoke marks a session revoked. Already-revoked rows keep their original
// timestamp and reason.
func (s *PostgresStore) Revoke(ctx context.Context, now time.Time, sessionID string, reason string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE `+s.table()+`
		SET revoked_at = $2, revocation_reason = $3
		WHERE id = $1 AND revoked_at IS NULL
	`, sessionID, now, nullIfEmpty(reason))
	return err
}

// RevokeAll revokes every active session of a user.
func (s *PostgresStore) RevokeAll(ctx context.Context, now time.Time, userID string, reason string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE `+s.table()+`
		SET revoked_at = $2, revocation_reason = $3
		WHERE user_id = $1 AND revoked_at IS NULL
	`, userID, now, nullIfEmpty(reason))
	return err
}

func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
