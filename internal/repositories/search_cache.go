package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/threadlist/internal/services"
	"github.com/desertthunder/threadlist/internal/shared"
)

// SearchCacheRepository persists resolved search queries in the search_cache
// table. Safe for concurrent use; sessions share one *sql.DB pool.
type SearchCacheRepository struct {
	db *sql.DB
}

// NewSearchCacheRepository creates a repository backed by db.
func NewSearchCacheRepository(db *sql.DB) *SearchCacheRepository {
	return &SearchCacheRepository{db: db}
}

// Get looks up a cached resolution for (query, market). A miss returns
// (nil, false, nil); only real storage failures produce an error.
func (r *SearchCacheRepository) Get(ctx context.Context, query, market string) (*services.Track, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT track_id, track_name, artist_name
		 FROM search_cache
		 WHERE query = ? AND market = ?`,
		query, market,
	)

	var track services.Track
	if err := row.Scan(&track.ID, &track.Name, &track.Artist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read search cache: %w", err)
	}
	return &track, true, nil
}

// Put stores a resolved track for (query, market). Concurrent writers racing
// on the same pair are harmless; the first write wins.
func (r *SearchCacheRepository) Put(ctx context.Context, query, market string, t *services.Track) error {
	if t == nil {
		return fmt.Errorf("%w: nil track", shared.ErrInvalidArgument)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO search_cache (id, query, market, track_id, track_name, artist_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		shared.GenerateID(), query, market, t.ID, t.Name, t.Artist,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to write search cache: %w", err)
	}
	return nil
}

// Clear removes every cached resolution and reports how many were dropped.
func (r *SearchCacheRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM search_cache`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear search cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared rows: %w", err)
	}
	return n, nil
}

// Count reports the number of cached resolutions.
func (r *SearchCacheRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count search cache: %w", err)
	}
	return n, nil
}
