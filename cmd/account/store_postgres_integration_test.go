package account

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Integration tests are opt-in and require STOREFRONT_DATABASE_URL.

func TestPostgresStore_CreateAndLookup(t *testing.T) {
	cheapArgon(t)

	pool := mustOpenTestPool(t)

	schema := mustCreateTestSchema(t, pool)
	t.Cleanup(func() { mustDropSchema(t, pool, schema) })

	s, err := NewPostgresStore(pool, WithSchema(schema))
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	acc, err := s.Create(ctx, CreateInput{Email: "Buyer@Example.com", Password: "correct horse battery staple"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.GetByEmail(ctx, "buyer@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != acc.ID {
		t.Fatalf("id mismatch: %q vs %q", got.ID, acc.ID)
	}

	if _, err := s.Create(ctx, CreateInput{Email: "BUYER@example.com", Password: "another fine password"}); !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if _, err := s.GetByID(ctx, "01J00000000000000000000000"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWithSchema_RejectsBadIdentifier(t *testing.T) {
	if _, err := NewPostgresStore(&pgxpool.Pool{}, WithSchema("bad;schema")); err == nil {
		t.Fatalf("expected invalid schema error")
	}
}

func mustOpenTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	raw := strings.TrimSpace(os.Getenv("STOREFRONT_DATABASE_URL"))
	if raw == "" {
		t.Skip("integration test skipped: STOREFRONT_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, raw)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("integration test skipped: Postgres unreachable: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func mustCreateTestSchema(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	id, err := NewID(time.Now())
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	schema := "storefront_it_" + strings.ToLower(id)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	table := pgx.Identifier{schema, "accounts"}.Sanitize()
	ddl := `CREATE SCHEMA ` + pgx.Identifier{schema}.Sanitize() + `;
CREATE TABLE ` + table + ` (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  is_admin BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return schema
}

func mustDropSchema(t *testing.T, pool *pgxpool.Pool, schema string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = pool.Exec(ctx, `DROP SCHEMA IF EXISTS `+pgx.Identifier{schema}.Sanitize()+` CASCADE`)
}
