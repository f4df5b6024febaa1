// Spotify API implementation of [Catalog]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/desertthunder/threadlist/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	URI     string          `json:"uri"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Public       bool         `json:"public"`
	ExternalURLs externalURLs `json:"external_urls"`
}

type searchTracks struct {
	Items []SpotifyTrack `json:"items"`
}

// SpotifySearchResponse is the tracks portion of a search result.
type SpotifySearchResponse struct {
	Tracks *searchTracks `json:"tracks"`
}

// SpotifyService implements [Catalog] against the Spotify Web API.
// Uses [oauth2] for the authorization code flow and token refresh.
type SpotifyService struct {
	config     *oauth2.Config
	httpClient *http.Client

	mu    sync.Mutex
	token *oauth2.Token
}

// NewSpotifyService creates a new Spotify service with the given OAuth2
// credentials, sharing the process-wide HTTP connection pool.
func NewSpotifyService(clientID, clientSecret, redirectURI string, httpClient *http.Client) (*SpotifyService, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret required", shared.ErrMissingCredentials)
	}
	if redirectURI == "" {
		redirectURI = "http://localhost:8091/callback"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-modify-public",
			"playlist-modify-private",
			"user-read-email",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: httpClient,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// OAuthConfig exposes the underlying [oauth2.Config] for the callback server.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for tokens and adopts them.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	s.SetToken(token)
	return token, nil
}

// SetToken installs tokens obtained elsewhere (config file, cookies).
func (s *SpotifyService) SetToken(token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token returns a copy of the current token.
func (s *SpotifyService) Token() *oauth2.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return nil
	}
	t := *s.token
	return &t
}

// Refresh exchanges the stored refresh token for a new access token. The
// rotated refresh token, when Spotify returns one, replaces the stored one
// for the remainder of this process only.
func (s *SpotifyService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	current := s.token
	s.mu.Unlock()

	if current == nil || current.RefreshToken == "" {
		return fmt.Errorf("%w: no refresh token available", shared.ErrRefreshFailed)
	}

	// The token endpoint goes through the same connection pool as the API.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	src := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: current.RefreshToken})
	fresh, err := src.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = current.RefreshToken
	}

	s.SetToken(fresh)
	return nil
}

// doRequest performs an authenticated HTTP request to the Spotify API and
// decodes the JSON response into result when non-nil.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	token := s.Token()
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: no access token, authenticate first", shared.ErrAuthFailed)
	}

	apiURL := spotifyBaseURL + endpoint

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return err
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CurrentUser retrieves the authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*User, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// SearchTrack issues a single-result track search scoped to market.
// A search that matches nothing returns (nil, nil).
func (s *SpotifyService) SearchTrack(ctx context.Context, query, market string) (*Track, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", "1")
	params.Set("market", market)

	var response SpotifySearchResponse
	if err := s.doRequest(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}

	if response.Tracks == nil || len(response.Tracks.Items) == 0 {
		return nil, nil
	}

	item := response.Tracks.Items[0]
	track := &Track{ID: item.ID, Name: item.Name}
	if len(item.Artists) > 0 {
		track.Artist = item.Artists[0].Name
	}
	return track, nil
}

// CreatePlaylist creates a private playlist for userID.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string) (*Playlist, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      false,
	}

	var created SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	return &Playlist{
		ID:   created.ID,
		Name: created.Name,
		URL:  created.ExternalURLs.Spotify,
	}, nil
}

// AddTracks appends tracks to a playlist. Callers batch to the API's
// 100-track ceiling; oversized batches are rejected here.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	if len(trackIDs) > 100 {
		return fmt.Errorf("%w: at most 100 tracks per append, got %d", shared.ErrInvalidArgument, len(trackIDs))
	}

	uris := make([]string, len(trackIDs))
	for i, id := range trackIDs {
		uris[i] = "spotify:track:" + id
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPost, endpoint, map[string]any{"uris": uris}, nil)
}

// classifyStatus maps an API response status to the shared failure kinds.
func classifyStatus(resp *http.Response) error {
	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: spotify: status 401", shared.ErrTokenExpired)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: spotify: status 404", shared.ErrNotFound)
	case code == http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		if _, err := strconv.Atoi(retryAfter); err != nil {
			retryAfter = "unknown"
		}
		return fmt.Errorf("%w: spotify: status 429 (retry-after: %s)", shared.ErrRateLimited, retryAfter)
	case code >= 500:
		return fmt.Errorf("%w: spotify: status %d", shared.ErrServerError, code)
	default:
		return fmt.Errorf("spotify API error: status %d", code)
	}
}

// classifyTransport maps connect/timeout errors to the transient kind.
// http.Client.Do failures are all connect/timeout class once context
// cancellation is ruled out.
func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", shared.ErrTransient, err)
}
