// Package app wires the globchat server runtime: config, logging, the
// identity store, the credential and token services, and the HTTP and
// websocket surfaces.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"globchat/cmd/identity"
	"globchat/cmd/identity/ids"
	authapi "globchat/cmd/internal/auth/api"
	"globchat/cmd/internal/info"
	"globchat/cmd/internal/metrics"
	"globchat/cmd/internal/realtime"
	"globchat/cmd/security/token"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App owns the HTTP server wiring and the lifecycle of the store.
type App struct {
	cfg Config
	log Logger

	store     identity.Store
	dbPool    *pgxpool.Pool
	dbEnabled bool

	presence *realtime.Presence
	ws       *realtime.Gateway
	auth     *authapi.Handler
	lookup   *info.Handler
	metrics  *metrics.Set
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogPretty)
	}

	hasher, tokCfg, err := LoadSecurityConfig()
	if err != nil {
		return nil, err
	}
	tokens, err := token.NewService(tokCfg)
	if err != nil {
		return nil, err
	}

	store, dbPool, dbEnabled, err := newStore(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	gen, err := ids.NewSnowflake(cfg.NodeID)
	if err != nil {
		_ = store.Close(context.Background())
		if dbPool != nil {
			dbPool.Close()
		}
		return nil, err
	}

	presence := realtime.NewPresence()
	m := metrics.NewSet(presence.Len)

	return &App{
		cfg:       cfg,
		log:       log,
		store:     store,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		presence:  presence,
		ws:        realtime.NewGateway(log, presence, tokens, store, m),
		auth:      authapi.NewHandler(log, store, hasher, tokens, presence, gen, m),
		lookup:    info.NewHandler(log, store, gen, authapi.NewGate(tokens, store, m), m),
		metrics:   m,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or a
// fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.ws, a.auth, a.lookup, a.metrics)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(WithSecurityHeaders(mux), a.log),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled, "node_id", a.cfg.NodeID)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.store.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}

	a.log.Info("server.stopped")
	return nil
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

// newStore decides between Postgres-backed persistence and the in-memory
// dev store. The app owns the pool lifecycle; PostgresStore.Close is a
// no-op.
func newStore(ctx context.Context, cfg Config, log Logger) (identity.Store, *pgxpool.Pool, bool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return identity.NewMemoryStore(), nil, false, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, false, err
	}

	store, err := identity.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, false, err
	}

	log.Info("db.enabled.postgres_store")
	return store, pool, true, nil
}
