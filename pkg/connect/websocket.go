package connect

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Frame is the JSON envelope exchanged with WebSocket clients. Clients send
// {"type": "command", "id": "...", "content": "..."}; the reply echoes the id.
type Frame struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
	Title   string `json:"title,omitempty"`
	Talent  string `json:"talent,omitempty"`
	Success bool   `json:"success,omitempty"`
}

const (
	FrameCommand      = "command"
	FrameReply        = "reply"
	FrameNotification = "notification"
	FrameError        = "error"
)

// WebSocket serves commands to a local UI on addr at /ws. It also pushes
// notifications to every connected client.
type WebSocket struct {
	addr     string
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]*sync.Mutex
}

func NewWebSocket(addr string, logger *log.Logger) *WebSocket {
	return &WebSocket{
		addr:    addr,
		logger:  logger.With("channel", "websocket"),
		clients: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (w *WebSocket) Name() string { return "websocket" }

func (w *WebSocket) Run(ctx context.Context, handle Handler) error {
	server := &http.Server{
		Addr:              w.addr,
		Handler:           w.Handler(ctx, handle),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	w.logger.Info("listening", "addr", w.addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "websocket server")
	}
	return nil
}

// Handler returns the HTTP handler serving /ws.
func (w *WebSocket) Handler(ctx context.Context, handle Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(rw http.ResponseWriter, r *http.Request) {
		conn, err := w.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			w.logger.Warn("upgrade failed", "err", err)
			return
		}
		w.serve(ctx, conn, handle)
	})
	return mux
}

func (w *WebSocket) serve(ctx context.Context, conn *websocket.Conn, handle Handler) {
	wmu := &sync.Mutex{}
	w.mu.Lock()
	w.clients[conn] = wmu
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		delete(w.clients, conn)
		w.mu.Unlock()
		_ = conn.Close()
	}()

	from := conn.RemoteAddr().String()
	for {
		var in Frame
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				w.logger.Debug("read failed", "client", from, "err", err)
			}
			return
		}

		out := Frame{Type: FrameError, ID: in.ID, Content: "unsupported frame type: " + in.Type}
		if in.Type == FrameCommand {
			resp := handle(ctx, Message{Platform: w.Name(), ChatID: in.ID, From: from, Text: in.Content})
			out = Frame{Type: FrameReply, ID: in.ID, Content: resp.Text, Talent: resp.Talent, Success: resp.Success}
		}
		if err := write(conn, wmu, out); err != nil {
			w.logger.Debug("write failed", "client", from, "err", err)
			return
		}
	}
}

// Notify sends a notification frame to every connected client.
func (w *WebSocket) Notify(title, message string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	frame := Frame{Type: FrameNotification, Title: title, Content: message}
	var firstErr error
	for conn, wmu := range w.clients {
		if err := write(conn, wmu, frame); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "push notification")
		}
	}
	return firstErr
}

// Clients reports how many clients are connected.
func (w *WebSocket) Clients() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clients)
}

func write(conn *websocket.Conn, mu *sync.Mutex, f Frame) error {
	mu.Lock()
	defer mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(f)
}
