package repositories

import (
	"context"
	"testing"

	"github.com/desertthunder/threadlist/internal/services"
	"github.com/desertthunder/threadlist/internal/shared"
)

func setupTestDB(t *testing.T) *SearchCacheRepository {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return NewSearchCacheRepository(db)
}

func TestSearchCacheRepository(t *testing.T) {
	ctx := context.Background()
	track := &services.Track{ID: "6b2oQwSGFkzsMtQruIWm2p", Name: "Karma Police", Artist: "Radiohead"}

	t.Run("Miss Returns Not Found", func(t *testing.T) {
		repo := setupTestDB(t)

		got, hit, err := repo.Get(ctx, "never seen", "US")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if hit || got != nil {
			t.Errorf("expected a miss, got %v", got)
		}
	})

	t.Run("Put Then Get", func(t *testing.T) {
		repo := setupTestDB(t)

		if err := repo.Put(ctx, "Karma Police", "US", track); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got, hit, err := repo.Get(ctx, "Karma Police", "US")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !hit {
			t.Fatal("expected a hit")
		}
		if got.ID != track.ID || got.Name != track.Name || got.Artist != track.Artist {
			t.Errorf("expected %+v, got %+v", track, got)
		}
	})

	t.Run("Market Scopes The Key", func(t *testing.T) {
		repo := setupTestDB(t)

		if err := repo.Put(ctx, "Karma Police", "US", track); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		_, hit, err := repo.Get(ctx, "Karma Police", "SE")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if hit {
			t.Error("expected a miss for a different market")
		}
	})

	t.Run("Duplicate Put Is Silently Ignored", func(t *testing.T) {
		repo := setupTestDB(t)

		if err := repo.Put(ctx, "Karma Police", "US", track); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		other := &services.Track{ID: "other", Name: "Other", Artist: "Other"}
		if err := repo.Put(ctx, "Karma Police", "US", other); err != nil {
			t.Fatalf("expected duplicate write to be ignored, got %v", err)
		}

		got, _, err := repo.Get(ctx, "Karma Police", "US")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.ID != track.ID {
			t.Errorf("expected the first write to win, got %s", got.ID)
		}
	})

	t.Run("Nil Track Is Rejected", func(t *testing.T) {
		repo := setupTestDB(t)
		if err := repo.Put(ctx, "q", "US", nil); err == nil {
			t.Error("expected an error for a nil track")
		}
	})

	t.Run("Clear And Count", func(t *testing.T) {
		repo := setupTestDB(t)

		if err := repo.Put(ctx, "one", "US", track); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := repo.Put(ctx, "two", "US", track); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		n, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 rows, got %d", n)
		}

		cleared, err := repo.Clear(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cleared != 2 {
			t.Errorf("expected 2 cleared rows, got %d", cleared)
		}

		n, err = repo.Count(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 0 {
			t.Errorf("expected empty cache, got %d rows", n)
		}
	})
}
