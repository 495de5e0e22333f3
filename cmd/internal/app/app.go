// Package app wires the storefront server runtime: config, logging, stores,
// the session resolver, pages, the auth API and metrics.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"storefront/cmd/account"
	authapi "storefront/cmd/internal/auth/api"
	"storefront/cmd/internal/auth/session"
	"storefront/cmd/internal/pages"
	"storefront/cmd/internal/placeholder"
	"storefront/cmd/internal/telemetry"
)

// App is the storefront server runtime. It owns the database pool and the
// Redis client; Close releases them.
type App struct {
	cfg Config
	log Logger

	pool  *pgxpool.Pool
	redis *redis.Client

	metrics  *telemetry.Metrics
	accounts account.Store
	sessions *session.Service
	resolver *session.Resolver
	pages    *pages.Router
	auth     *authapi.Handler
	backend  string

	handler   http.Handler
	closeOnce sync.Once
}

// New constructs a fully wired App from config. A nil log is replaced by
// one built from cfg.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogColor)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	layouts, err := placeholder.LoadLayoutsFile(cfg.LayoutsFile)
	if err != nil {
		return nil, fmt.Errorf("layouts: %w", err)
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	tokens, err := session.NewAccessTokenManager(sessCfg)
	if err != nil {
		return nil, fmt.Errorf("session tokens: %w", err)
	}

	a := &App{cfg: cfg, log: log, backend: cfg.sessionBackend()}
	if cfg.MetricsEnabled {
		a.metrics = telemetry.New()
	}

	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	if cfg.DatabaseURL != "" {
		if a.pool, err = NewDBPool(ctx, cfg); err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		log.Info("db.enabled.postgres")
	} else {
		log.Info("db.disabled.inmemory_accounts")
	}
	if a.backend == SessionStoreRedis {
		if a.redis, err = NewRedisClient(ctx, cfg); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	if a.accounts, err = a.newAccountStore(); err != nil {
		return nil, err
	}
	store, err := a.newSessionStore(sessCfg)
	if err != nil {
		return nil, err
	}

	a.sessions = session.NewService(sessCfg, store, tokens)
	a.resolver = session.NewResolver(a.sessions,
		session.WithCookieName(sessCfg.CookieName),
		session.WithLogger(log),
		session.WithObserver(func(o session.Outcome) { a.metrics.ObserveResolve(string(o)) }),
	)

	if a.pages, err = pages.NewRouter(a.resolver, layouts, log); err != nil {
		return nil, err
	}
	a.auth = authapi.NewHandler(log, authapi.LoadConfigFromEnv(), a.accounts, a.sessions, a.resolver,
		authapi.WithLoginObserver(a.metrics.ObserveLogin),
	)

	if err := a.seed(ctx); err != nil {
		return nil, err
	}

	a.handler = a.buildHandler()
	ok = true
	return a, nil
}

// Handler returns the full middleware-wrapped HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Routes returns the page route table.
func (a *App) Routes() []pages.Route { return a.pages.Routes() }

// Sessions returns the session service.
func (a *App) Sessions() *session.Service { return a.sessions }

// Accounts returns the account store.
func (a *App) Accounts() account.Store { return a.accounts }

// SessionBackend names the session store in use.
func (a *App) SessionBackend() string { return a.backend }

// Run listens on cfg.HTTPAddr and serves until ctx is done, then closes
// the App.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ln, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		a.log.Error("server.listen.fail", "addr", a.cfg.HTTPAddr, "err", err)
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve serves HTTP on ln until ctx is done or the server fails, then shuts
// down gracefully. ln is closed on return.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("server.start",
			"addr", ln.Addr().String(),
			"session_store", a.backend,
			"db_enabled", a.pool != nil,
			"metrics_enabled", a.metrics != nil,
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("server.fail", "err", err)
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("server.stop", "reason", "context_done")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), nonZeroDuration(a.cfg.ShutdownTimeout, 10*time.Second))
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error("server.shutdown.fail", "err", err)
			return err
		}
		return nil
	})

	err := g.Wait()
	a.log.Info("server.stopped")
	return err
}

// Close releases the Redis client and the database pool.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				a.log.Warn("redis.close.fail", "err", err)
			}
		}
		if a.pool != nil {
			a.pool.Close()
		}
	})
}

func (a *App) buildHandler() http.Handler {
	mux := http.NewServeMux()
	registerHTTP(mux, a)

	route := func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		return pattern
	}

	var h http.Handler = mux
	h = WithSecurityHeaders(h)
	h = WithRequestLogging(h, a.log, a.metrics, route)
	h = WithRequestID(h)
	return h
}

func (a *App) newAccountStore() (account.Store, error) {
	if a.pool == nil {
		return account.NewMemoryStore(), nil
	}
	return account.NewPostgresStore(a.pool, account.WithSchema(a.cfg.DBSchema))
}

func (a *App) newSessionStore(sessCfg session.Config) (session.Store, error) {
	switch a.backend {
	case SessionStoreRedis:
		return session.NewRedisStore(a.redis, a.cfg.RedisPrefix,
			session.WithUserIndexTTL(max(sessCfg.SessionTTLWeb, sessCfg.SessionTTLNative)))
	case SessionStorePostgres:
		if a.pool == nil {
			return nil, fmt.Errorf("%w: postgres session store without a database", ErrConfig)
		}
		return session.NewPostgresStore(a.pool, a.cfg.DBSchema)
	default:
		a.log.Warn("session.store.memory", "detail", "sessions are lost on restart")
		return session.NewMemoryStore(), nil
	}
}

// seed creates the configured bootstrap account once.
func (a *App) seed(ctx context.Context) error {
	if a.cfg.SeedEmail == "" {
		return nil
	}
	acct, err := a.accounts.Create(ctx, account.CreateInput{
		Email:    a.cfg.SeedEmail,
		Password: a.cfg.SeedPassword,
		Admin:    true,
	})
	switch {
	case err == nil:
		a.log.Info("account.seed.created", "user_id", acct.ID)
		return nil
	case account.IsConflict(err):
		a.log.Debug("account.seed.exists")
		return nil
	default:
		return fmt.Errorf("seed account: %w", err)
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
