package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/threadlist/internal/services"
	"github.com/desertthunder/threadlist/internal/shared"
	"golang.org/x/oauth2"
)

const (
	stateCookie   = "oauthState"
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

// WebAuthHandler implements the browser-facing Spotify authorization flow:
// /login redirects to the consent page, /callback stores the tokens in
// cookies, /refresh_token renews an expired access token. The websocket
// session reads the token cookies server-side.
type WebAuthHandler struct {
	spotify *services.SpotifyService
	logger  *log.Logger
}

// NewWebAuthHandler builds the handler around the shared Spotify service.
func NewWebAuthHandler(spotify *services.SpotifyService, logger *log.Logger) *WebAuthHandler {
	return &WebAuthHandler{spotify: spotify, logger: logger}
}

func (h *WebAuthHandler) Routes() []string {
	return []string{"/login", "/callback", "/refresh_token"}
}

func (h *WebAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/login":
		h.login(w, r)
	case "/callback":
		h.callback(w, r)
	case "/refresh_token":
		h.refresh(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *WebAuthHandler) login(w http.ResponseWriter, r *http.Request) {
	state, err := shared.GenerateState()
	if err != nil {
		http.Error(w, "Could not start authorization", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.spotify.GetAuthURL(state), http.StatusFound)
}

func (h *WebAuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	state, err := r.Cookie(stateCookie)
	if err != nil || r.URL.Query().Get("state") != state.Value {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Authorization declined", http.StatusBadRequest)
		return
	}

	token, err := h.spotify.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("code exchange failed", "error", err)
		http.Error(w, "Code exchange failed", http.StatusBadGateway)
		return
	}

	setTokenCookies(w, token)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *WebAuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil || cookie.Value == "" {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	source := h.spotify.OAuthConfig().TokenSource(r.Context(), &oauth2.Token{RefreshToken: cookie.Value})
	token, err := source.Token()
	if err != nil {
		h.logger.Error("token refresh failed", "error", err)
		http.Error(w, "Error with refresh token", http.StatusBadRequest)
		return
	}
	if token.RefreshToken == "" {
		token.RefreshToken = cookie.Value
	}

	setTokenCookies(w, token)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"access_token": token.AccessToken})
}

func setTokenCookies(w http.ResponseWriter, token *oauth2.Token) {
	expiry := int(time.Until(token.Expiry).Seconds())
	if token.Expiry.IsZero() || expiry <= 0 {
		expiry = 3600
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessCookie,
		Value:    token.AccessToken,
		Path:     "/",
		MaxAge:   expiry,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if token.RefreshToken != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     refreshCookie,
			Value:    token.RefreshToken,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
