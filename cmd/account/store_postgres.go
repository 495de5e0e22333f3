package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over <schema>.accounts.
// The pool is owned by the caller and is never closed here.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema overrides the default "storefront" schema.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("account: invalid schema identifier %q", schema)
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{pool: pool, schema: "storefront"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, errors.New("account: nil pool")
	}
	return st, nil
}

func (s *PostgresStore) table() string {
	return pgx.Identifier{s.schema, "accounts"}.Sanitize()
}

// Create inserts a new account. A duplicate email yields ConflictError.
func (s *PostgresStore) Create(ctx context.Context, in CreateInput) (Account, error) {
	const op = "account.Create"

	acc, err := prepare(op, in)
	if err != nil {
		return Account{}, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.table()+` (id, email, display_name, password_hash, is_admin, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		acc.ID, acc.Email, acc.DisplayName, acc.PasswordHash, acc.Admin, acc.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Account{}, ConflictError{Op: op, Field: "email"}
		}
		return Account{}, err
	}
	return acc, nil
}

// GetByEmail looks an account up by its normalized email.
func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (Account, error) {
	return s.getOne(ctx, "account.GetByEmail", `email = $1`, NormalizeEmail(email))
}

// GetByID looks an account up by ID.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (Account, error) {
	return s.getOne(ctx, "account.GetByID", `id = $1`, strings.TrimSpace(id))
}

func (s *PostgresStore) getOne(ctx context.Context, op, where string, arg string) (Account, error) {
	var acc Account
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, is_admin, created_at
		 FROM `+s.table()+`
		 WHERE `+where,
		arg,
	).Scan(&acc.ID, &acc.Email, &acc.DisplayName, &acc.PasswordHash, &acc.Admin, &acc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, notFound(op)
	}
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
