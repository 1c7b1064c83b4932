package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"github.com/storefront/storefront/internal/config"
	"github.com/storefront/storefront/internal/database"
	"github.com/storefront/storefront/internal/logger"
	"github.com/storefront/storefront/internal/repository"
)

var (
	migrationsDir string
	downSteps     int
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Manage the postgres session store schema",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  withDB(runUp),
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back applied migrations",
	RunE:  withDB(runDown),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the applied schema version",
	RunE:  withDB(runStatus),
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired session entries",
	RunE:  withDB(runPurge),
}

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Write an empty up/down migration pair",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "migrations directory")
	downCmd.Flags().IntVar(&downSteps, "steps", 1, "number of migrations to roll back")

	rootCmd.AddCommand(upCmd, downCmd, statusCmd, purgeCmd, createCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withDB connects to the configured database around run
func withDB(run func(cmd *cobra.Command, db *database.Postgres, log *logger.Logger) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log := logger.New(cfg.Log.Level, "text").WithComponent("migrate")

		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		return run(cmd, db, log)
	}
}

func newMigrator(db *database.Postgres) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	dir, err := filepath.Abs(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve migrations directory: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(dir), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

func runUp(_ *cobra.Command, db *database.Postgres, log *logger.Logger) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info().Msg("schema is up to date")
		return nil
	case err != nil:
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info().Msg("migrations applied")
	return nil
}

func runDown(_ *cobra.Command, db *database.Postgres, log *logger.Logger) error {
	if downSteps < 1 {
		return fmt.Errorf("--steps must be positive")
	}

	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	if err := m.Steps(-downSteps); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	log.Info().Int("steps", downSteps).Msg("migrations rolled back")
	return nil
}

func runStatus(cmd *cobra.Command, db *database.Postgres, _ *logger.Logger) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		fmt.Fprintln(out, "no migrations applied")
		return nil
	case err != nil:
		return fmt.Errorf("failed to get version: %w", err)
	}

	fmt.Fprintf(out, "version %d", version)
	if dirty {
		fmt.Fprint(out, " (dirty)")
	}
	fmt.Fprintln(out)
	return nil
}

func runPurge(cmd *cobra.Command, db *database.Postgres, log *logger.Logger) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	n, err := repository.NewPostgresEntryRepository(db, 0).PurgeExpired(ctx)
	if err != nil {
		return err
	}

	log.Info().Int64("entries", n).Msg("expired session entries purged")
	return nil
}

var migrationFile = regexp.MustCompile(`^(\d+)_.+\.(up|down)\.sql$`)

func runCreate(cmd *cobra.Command, args []string) error {
	name := strings.ReplaceAll(strings.TrimSpace(args[0]), " ", "_")
	if name == "" {
		return fmt.Errorf("migration name is required")
	}

	if err := os.MkdirAll(migrationsDir, 0755); err != nil {
		return fmt.Errorf("failed to create migrations directory: %w", err)
	}

	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var last int
	for _, entry := range entries {
		match := migrationFile.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		if v, err := strconv.Atoi(match[1]); err == nil {
			last = max(last, v)
		}
	}

	out := cmd.OutOrStdout()
	for _, direction := range []string{"up", "down"} {
		path := filepath.Join(migrationsDir, fmt.Sprintf("%06d_%s.%s.sql", last+1, name, direction))
		if err := os.WriteFile(path, []byte("-- "+direction+" migration\n"), 0644); err != nil {
			return fmt.Errorf("failed to create %s migration: %w", direction, err)
		}
		fmt.Fprintln(out, path)
	}
	return nil
}
