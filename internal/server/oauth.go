package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// OAuthResult is the outcome of one authorization code flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o OAuthResult) Error() error {
	return o.err
}

// OAuthHandler receives the authorization-code callback during the CLI auth
// flow. One instance handles exactly one callback; replays get a 400.
type OAuthHandler struct {
	config  *oauth2.Config
	state   string
	results chan OAuthResult

	mu   sync.Mutex
	done bool
	once sync.Once
}

// NewOAuthHandler builds a handler expecting the given anti-CSRF state token.
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config:  config,
		state:   state,
		results: make(chan OAuthResult, 1),
	}
}

func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

// Result yields exactly one OAuthResult, then the channel closes.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.results
}

func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.done = true
	h.mu.Unlock()

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.deliver(OAuthResult{err: fmt.Errorf("state mismatch")})
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.deliver(OAuthResult{err: fmt.Errorf("authorization declined: %s", query.Get("error"))})
		http.Error(w, "Authorization declined", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(context.Background(), code)
	if err != nil {
		h.deliver(OAuthResult{err: fmt.Errorf("code exchange failed: %w", err)})
		http.Error(w, "Code exchange failed", http.StatusInternalServerError)
		return
	}

	h.deliver(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Connected</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
  <h1 style="color: #1DB954;">Spotify connected</h1>
  <p>You can close this tab and return to the terminal.</p>
</body>
</html>`)
}

func (h *OAuthHandler) deliver(result OAuthResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}
