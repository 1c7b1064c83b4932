package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/storefront/storefront/internal/auth"
	"github.com/storefront/storefront/internal/catalog"
	"github.com/storefront/storefront/internal/config"
	"github.com/storefront/storefront/internal/database"
	"github.com/storefront/storefront/internal/logger"
	"github.com/storefront/storefront/internal/repository"
	"github.com/storefront/storefront/internal/service"
	"github.com/storefront/storefront/internal/store"
)

var sessionID string

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Drive a storefront session from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", "", "session id (defaults to store.session_id, or a new id)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is one CLI invocation bound to a session
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	shop    *service.Shop
	catalog *catalog.Catalog
	closers []func() error
	checks  map[string]func(context.Context) error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("failed to close resource")
		}
	}
}

// openApp loads configuration and opens the session storage it selects
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewWithWriter(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	a := &app{
		cfg:     cfg,
		log:     log,
		catalog: catalog.Default(),
		checks:  make(map[string]func(context.Context) error),
	}

	repo, err := a.openRepository()
	if err != nil {
		a.Close()
		return nil, err
	}

	sid := sessionID
	if sid == "" {
		sid = cfg.Store.SessionID
	}
	if sid == "" {
		sid = uuid.New().String()
		fmt.Fprintf(os.Stderr, "session: %s\n", sid)
	}

	hasher, err := auth.NewHasher(cfg.Security.Password.Hashing, auth.NewParams(
		cfg.Security.Password.Argon2Memory,
		cfg.Security.Password.Argon2Iterations,
		cfg.Security.Password.Argon2Parallelism,
	))
	if err != nil {
		a.Close()
		return nil, err
	}

	kv := store.New(repo, sid, log)
	a.checks["session storage"] = kv.Available
	if err := kv.Available(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("session storage is not available: %w", err)
	}

	a.shop = service.NewShop(kv, a.catalog, hasher, cfg, log)
	return a, nil
}

func (a *app) openRepository() (repository.EntryRepository, error) {
	switch a.cfg.Store.Backend {
	case config.BackendRedis:
		rdb, err := database.NewRedis(a.cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		a.checks["redis"] = rdb.HealthCheck
		a.log.Debug().Str("addr", a.cfg.Redis.Addr()).Msg("connected to Redis")
		return repository.NewRedisEntryRepository(rdb, a.cfg.Redis.KeyPrefix, a.cfg.Store.SessionTTL), nil

	case config.BackendPostgres:
		db, err := database.NewPostgres(a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.checks["postgres"] = db.HealthCheck
		a.log.Debug().Str("database", a.cfg.Database.Name).Msg("connected to PostgreSQL")
		return repository.NewPostgresEntryRepository(db, a.cfg.Store.SessionTTL), nil

	default:
		return repository.NewMemoryEntryRepository(), nil
	}
}

// withApp opens the app around run
func withApp(run func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return run(ctx, cmd, a, args)
	}
}
