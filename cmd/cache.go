package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/threadlist/internal/repositories"
	"github.com/desertthunder/threadlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// cacheDB opens the cache database regardless of the enabled flag, so the
// cache subcommands work even before caching is switched on.
func (r *Runner) cacheDB(cmd *cli.Command) (*sql.DB, *shared.Config, error) {
	config := r.loadConfig(cmd)
	db, err := shared.NewDatabase(config.Cache.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	return db, config, nil
}

// CacheMigrate creates or upgrades the cache database schema.
func (r *Runner) CacheMigrate(ctx context.Context, cmd *cli.Command) error {
	db, config, err := r.cacheDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.writePlain("✓ Cache database ready at %s\n", config.Cache.Path)
	return nil
}

// CacheRollback rolls back the last cache migration.
func (r *Runner) CacheRollback(ctx context.Context, cmd *cli.Command) error {
	db, _, err := r.cacheDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	r.writePlainln("✓ Rolled back last migration")
	return nil
}

// CacheClear deletes all cached search results.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	db, _, err := r.cacheDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSearchCacheRepository(db)
	removed, err := repo.Clear(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	r.writePlain("✓ Removed %d cached results\n", removed)
	return nil
}

// CacheStatus reports cache statistics.
func (r *Runner) CacheStatus(ctx context.Context, cmd *cli.Command) error {
	db, config, err := r.cacheDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSearchCacheRepository(db)
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count cached results: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"path":    config.Cache.Path,
			"enabled": config.Cache.Enabled,
			"entries": count,
		}, true)
	}

	r.writePlain("Cache: %s\n", config.Cache.Path)
	r.writePlain("Enabled: %v\n", config.Cache.Enabled)
	r.writePlain("Entries: %d\n", count)
	return nil
}
