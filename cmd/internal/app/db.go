package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaTables must exist before the server starts. The app never migrates;
// see migrations/0001_storefront.sql.
var schemaTables = []string{"accounts", "sessions"}

// NewDBPool opens the Postgres pool, waits for a connection and checks that
// the storefront tables exist in cfg.DBSchema.
func NewDBPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: STOREFRONT_DATABASE_URL: %v", ErrConfig, err)
	}

	if cfg.DBMaxConns > 0 {
		pcfg.MaxConns = cfg.DBMaxConns
	}
	if cfg.DBMinConns >= 0 {
		pcfg.MinConns = cfg.DBMinConns
	}
	if _, ok := pcfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		pcfg.ConnConfig.RuntimeParams["application_name"] = "storefront"
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	if err := PingDB(ctx, pool, 3*time.Second); err != nil {
		pool.Close()
		return nil, err
	}
	if err := checkSchema(ctx, pool, cfg.DBSchema); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// PingDB checks if we can acquire a connection within timeout.
func PingDB(parent context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	conn.Release()
	return nil
}

func checkSchema(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	for _, table := range schemaTables {
		name := pgx.Identifier{schema, table}.Sanitize()
		var found *string
		if err := pool.QueryRow(ctx, "SELECT to_regclass($1)::text", name).Scan(&found); err != nil {
			return fmt.Errorf("check table %s: %w", name, err)
		}
		if found == nil {
			return fmt.Errorf("%w: table %s is missing; apply migrations/0001_storefront.sql", ErrConfig, name)
		}
	}
	return nil
}
