package pipeline

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/threadlist/internal/services"
	"github.com/desertthunder/threadlist/internal/shared"
)

// mockCatalog scripts the catalog service for pipeline tests. Zero values
// behave like a healthy backend with one searchable track per query.
type mockCatalog struct {
	searchResults map[string]*services.Track
	searchErr     error
	searchCalls   []string

	user      *services.User
	userErr   error
	playlist  *services.Playlist
	createErr error

	addBatches [][]string
	addErr     error
	addErrLeft int

	refreshErr   error
	refreshCalls int
}

func (m *mockCatalog) Name() string { return "Mock" }

func (m *mockCatalog) CurrentUser(ctx context.Context) (*services.User, error) {
	if m.userErr != nil {
		return nil, m.userErr
	}
	if m.user != nil {
		return m.user, nil
	}
	return &services.User{ID: "user1", DisplayName: "dana"}, nil
}

func (m *mockCatalog) SearchTrack(ctx context.Context, query, market string) (*services.Track, error) {
	m.searchCalls = append(m.searchCalls, query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.searchResults != nil {
		return m.searchResults[query], nil
	}
	return &services.Track{ID: "id-" + query, Name: query, Artist: "artist"}, nil
}

func (m *mockCatalog) CreatePlaylist(ctx context.Context, userID, name, description string) (*services.Playlist, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.playlist != nil {
		return m.playlist, nil
	}
	return &services.Playlist{ID: "pl1", Name: name, URL: "https://open.spotify.com/playlist/pl1"}, nil
}

func (m *mockCatalog) AddTracks(ctx context.Context, playlistID string, ids []string) error {
	if m.addErr != nil && m.addErrLeft != 0 {
		m.addErrLeft--
		return m.addErr
	}
	batch := make([]string, len(ids))
	copy(batch, ids)
	m.addBatches = append(m.addBatches, batch)
	return nil
}

func (m *mockCatalog) Refresh(ctx context.Context) error {
	m.refreshCalls++
	return m.refreshErr
}

func testLogger() *log.Logger {
	logger := log.New(io.Discard)
	logger.SetLevel(log.FatalLevel)
	return logger
}

func manyTracks(n int) []*services.Track {
	out := make([]*services.Track, n)
	for i := range out {
		out[i] = &services.Track{ID: fmt.Sprintf("t%05d", i), Name: "track", Artist: "artist"}
	}
	return out
}

func TestPopulate(t *testing.T) {
	ctx := context.Background()

	t.Run("Chunks Of At Most 100", func(t *testing.T) {
		catalog := &mockCatalog{}
		guard, _ := testGuard(DiscardSink, nil)

		if err := Populate(ctx, catalog, guard, testLogger(), "pl1", manyTracks(250)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(catalog.addBatches) != 3 {
			t.Fatalf("expected 3 batches, got %d", len(catalog.addBatches))
		}
		for i, batch := range catalog.addBatches {
			if len(batch) > 100 {
				t.Errorf("batch %d: expected at most 100 ids, got %d", i, len(batch))
			}
		}
		if len(catalog.addBatches[2]) != 50 {
			t.Errorf("expected final batch of 50, got %d", len(catalog.addBatches[2]))
		}
	})

	t.Run("Caps Total At Ten Thousand", func(t *testing.T) {
		catalog := &mockCatalog{}
		guard, _ := testGuard(DiscardSink, nil)

		if err := Populate(ctx, catalog, guard, testLogger(), "pl1", manyTracks(15000)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		total := 0
		for _, batch := range catalog.addBatches {
			total += len(batch)
		}
		if total != 10000 {
			t.Errorf("expected exactly 10000 ids appended, got %d", total)
		}
		if len(catalog.addBatches) != 100 {
			t.Errorf("expected 100 batches, got %d", len(catalog.addBatches))
		}
	})

	t.Run("Preserves Order Across Batches", func(t *testing.T) {
		catalog := &mockCatalog{}
		guard, _ := testGuard(DiscardSink, nil)

		tracks := manyTracks(150)
		if err := Populate(ctx, catalog, guard, testLogger(), "pl1", tracks); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var appended []string
		for _, batch := range catalog.addBatches {
			appended = append(appended, batch...)
		}
		for i, t2 := range tracks {
			if appended[i] != t2.ID {
				t.Fatalf("position %d: expected %s, got %s", i, t2.ID, appended[i])
			}
		}
	})

	t.Run("Skips A Failed Chunk And Continues", func(t *testing.T) {
		catalog := &mockCatalog{
			addErr:     fmt.Errorf("%w: flaky", shared.ErrTransient),
			addErrLeft: 5, // first chunk exhausts its five attempts
		}
		guard, _ := testGuard(DiscardSink, nil)

		if err := Populate(ctx, catalog, guard, testLogger(), "pl1", manyTracks(200)); err != nil {
			t.Fatalf("expected the run to continue past the failed chunk, got %v", err)
		}
		if len(catalog.addBatches) != 1 {
			t.Fatalf("expected the second chunk to land, got %d batches", len(catalog.addBatches))
		}
		if catalog.addBatches[0][0] != "t00100" {
			t.Errorf("expected the surviving batch to start at t00100, got %s", catalog.addBatches[0][0])
		}
	})

	t.Run("Empty Input Issues No Calls", func(t *testing.T) {
		catalog := &mockCatalog{}
		guard, _ := testGuard(DiscardSink, nil)

		if err := Populate(ctx, catalog, guard, testLogger(), "pl1", nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(catalog.addBatches) != 0 {
			t.Errorf("expected no batches, got %d", len(catalog.addBatches))
		}
	})
}
