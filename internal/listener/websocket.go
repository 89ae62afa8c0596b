package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/pixil98/go-wordle/internal/lobby"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxMessageBytes = 4096
	sendBuffer      = 256
	shutdownTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebsocketListener serves the JSON protocol over websockets plus a couple of
// plain HTTP endpoints for health checks and room listings.
type WebsocketListener struct {
	port  uint16
	lobby *lobby.Lobby
}

func NewWebsocketListener(port uint16, l *lobby.Lobby) *WebsocketListener {
	return &WebsocketListener{
		port:  port,
		lobby: l,
	}
}

func (l *WebsocketListener) Start(ctx context.Context) error {
	connCtx, cancelConns := context.WithCancel(context.Background())
	defer cancelConns()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", l.port),
		Handler: NewRouter(connCtx, l.lobby),
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()

	slog.InfoContext(ctx, "listening for websockets", "port", l.port)

	select {
	case err := <-errs:
		return fmt.Errorf("serving websockets on port %d: %w", l.port, err)
	case <-ctx.Done():
	}

	// Hijacked websocket connections are not tracked by Shutdown.
	cancelConns()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down websocket listener: %w", err)
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// NewRouter builds the HTTP routes. Websocket sessions end when connCtx does.
func NewRouter(connCtx context.Context, l *lobby.Lobby) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]bool{"ok": true})
	})
	r.Get("/rooms", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, l.Rooms())
	})
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWebsocket(connCtx, l, w, r)
	})

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}

func serveWebsocket(connCtx context.Context, l *lobby.Lobby, w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("upgrading websocket", "remote", r.RemoteAddr, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(connCtx)
	defer cancel()

	c := &wsClient{
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		cancel: cancel,
	}

	sess, err := l.Open(ctx, c.deliver)
	if err != nil {
		slog.Error("opening session", "remote", r.RemoteAddr, "error", err)
		ws.Close()
		return
	}
	defer sess.Close(ctx)

	slog.InfoContext(ctx, "websocket connected", "remote", r.RemoteAddr, "connId", sess.Id(), "requestId", chimw.GetReqID(r.Context()))

	go c.writePump(ctx)
	c.readPump(ctx, sess)
}

type wsClient struct {
	ws     *websocket.Conn
	send   chan []byte
	cancel context.CancelFunc

	closeOnce sync.Once
}

// deliver queues an event. A client too slow to drain its queue is cut off;
// it can rejoin and receive a fresh state sync.
func (c *wsClient) deliver(b []byte) {
	select {
	case c.send <- b:
	default:
		slog.Warn("websocket send buffer full, dropping client")
		c.close()
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.ws.Close()
	})
}

func (c *wsClient) readPump(ctx context.Context, sess *lobby.Session) {
	defer c.close()

	c.ws.SetReadLimit(maxMessageBytes)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.DebugContext(ctx, "websocket read", "connId", sess.Id(), "error", err)
			}
			return
		}
		sess.HandleMessage(ctx, msg)
	}
}

func (c *wsClient) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return

		case msg := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
			if lobby.IsSessionReplaced(msg) {
				c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session replaced"))
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
