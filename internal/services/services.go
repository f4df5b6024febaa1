// package services defines interface Catalog for the external music catalog
// and playlist store (Spotify).
package services

import (
	"context"
)

// Catalog is the music service surface the pipeline needs: track search,
// playlist creation and population, and credential refresh. Implementations
// translate transport and API failures into the shared error kinds.
type Catalog interface {
	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context) (*User, error)

	// SearchTrack resolves a free-text query to the single best matching
	// track in the given market. A miss is (nil, nil), not an error.
	SearchTrack(ctx context.Context, query, market string) (*Track, error)

	// CreatePlaylist creates an empty private playlist owned by userID.
	CreatePlaylist(ctx context.Context, userID, name, description string) (*Playlist, error)

	// AddTracks appends up to 100 tracks to a playlist, in order.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// Refresh exchanges the stored refresh token for a new access token.
	Refresh(ctx context.Context) error

	// Name returns the service name for logs and status messages.
	Name() string
}

// User is an authenticated catalog account.
type User struct {
	ID          string
	DisplayName string
}

// Track is a single catalog track. Identity is the catalog ID.
type Track struct {
	ID     string
	Name   string
	Artist string
}

// Playlist is a playlist created on the catalog service.
type Playlist struct {
	ID   string
	Name string
	URL  string
}
