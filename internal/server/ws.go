package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/threadlist/internal/pipeline"
	"github.com/desertthunder/threadlist/internal/services"
	"github.com/desertthunder/threadlist/internal/shared"
	"github.com/desertthunder/threadlist/internal/threads"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// CatalogFactory builds a catalog client bound to one session's credentials.
type CatalogFactory func(accessToken, refreshToken string) services.Catalog

// SessionHandler upgrades /ws/{id} requests and runs one pipeline per
// connection. Sessions are independent: each gets its own engine, catalog
// client and rate limiter, sharing only the HTTP connection pool.
type SessionHandler struct {
	upgrader   websocket.Upgrader
	source     threads.Source
	newCatalog CatalogFactory
	cache      pipeline.SearchCache
	market     string
	searchRate float64
	logger     *log.Logger
}

// NewSessionHandler wires the session handler. cache may be nil, searchRate
// is in searches per second (zero disables pacing).
func NewSessionHandler(source threads.Source, newCatalog CatalogFactory, cache pipeline.SearchCache, market string, searchRate float64, logger *log.Logger) *SessionHandler {
	return &SessionHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Sessions are driven by same-origin page scripts.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		source:     source,
		newCatalog: newCatalog,
		cache:      cache,
		market:     market,
		searchRate: searchRate,
		logger:     logger,
	}
}

func (h *SessionHandler) Routes() []string {
	return []string{"/ws/", "/ws"}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	access, err := r.Cookie(accessCookie)
	if err != nil || access.Value == "" {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}
	var refreshToken string
	if refresh, err := r.Cookie(refreshCookie); err == nil {
		refreshToken = refresh.Value
	}

	sessionID := strings.TrimPrefix(r.URL.Path, "/ws")
	sessionID = strings.Trim(sessionID, "/")
	if sessionID == "" {
		sessionID = shared.GenerateID()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := newWSChannel(conn, cancel)
	go ch.readPump()

	var limiter *rate.Limiter
	if h.searchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(h.searchRate), 1)
	}

	catalog := h.newCatalog(access.Value, refreshToken)
	if catalog == nil {
		h.logger.Error("failed to build session catalog", "session", sessionID)
		ch.close()
		return
	}
	engine := pipeline.NewEngine(sessionID, h.source, catalog, h.cache, limiter, h.market, h.logger)

	h.logger.Info("session started", "session", sessionID)
	if err := engine.Run(ctx, ch); err != nil {
		h.logger.Warn("session ended with error", "session", sessionID, "error", err)
	}

	ch.close()
}

// wsChannel adapts one websocket connection to the pipeline's duplex
// channel. A dedicated read pump is the connection's only reader; the
// engine goroutine is its only writer. A read failure (client gone)
// cancels the session context so the engine stops at its next
// suspension point.
type wsChannel struct {
	conn   *websocket.Conn
	cancel context.CancelFunc
	lines  chan string
	done   chan struct{}
}

func newWSChannel(conn *websocket.Conn, cancel context.CancelFunc) *wsChannel {
	return &wsChannel{
		conn:   conn,
		cancel: cancel,
		lines:  make(chan string),
		done:   make(chan struct{}),
	}
}

func (c *wsChannel) readPump() {
	defer c.cancel()
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case c.lines <- string(msg):
		case <-c.done:
			return
		}
	}
}

// ReadLine returns the next inbound text message.
func (c *wsChannel) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-c.lines:
		return line, nil
	}
}

// Send writes one event as a JSON text message. Events go out strictly in
// the order Send is called.
func (c *wsChannel) Send(e pipeline.Event) error {
	return c.conn.WriteJSON(e)
}

// close performs the normal closure handshake (code 1000) after a terminal
// event, success or failure alike.
func (c *wsChannel) close() {
	close(c.done)
	deadline := time.Now().Add(time.Second)
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, message, deadline)
}
