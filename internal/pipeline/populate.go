package pipeline

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/threadlist/internal/services"
)

const (
	// chunkSize is the catalog's per-request ceiling on track additions.
	chunkSize = 100
	// maxPlaylistTracks caps playlist growth; surplus tracks are dropped.
	maxPlaylistTracks = 10000
)

// Populate adds tracks to the playlist in chunks of at most chunkSize,
// capping the total at maxPlaylistTracks. Each chunk is retried under the
// guard; a chunk that still fails after that is logged and skipped so the
// remaining chunks get their chance.
func Populate(ctx context.Context, catalog services.Catalog, guard *Guard, logger *log.Logger, playlistID string, tracks []*services.Track) error {
	if len(tracks) > maxPlaylistTracks {
		logger.Warn("track list exceeds playlist cap, dropping surplus",
			"total", len(tracks), "cap", maxPlaylistTracks)
		tracks = tracks[:maxPlaylistTracks]
	}

	for start := 0; start < len(tracks); start += chunkSize {
		end := min(start+chunkSize, len(tracks))
		ids := make([]string, 0, end-start)
		for _, t := range tracks[start:end] {
			ids = append(ids, t.ID)
		}

		err := guard.Do(ctx, "playlist update", func(ctx context.Context) error {
			return catalog.AddTracks(ctx, playlistID, ids)
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("skipping chunk after repeated failures",
				"offset", start, "size", len(ids), "error", err)
		}
	}
	return nil
}
