package ws

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/modhost/internal/advisory"
	"github.com/GriffinCanCode/modhost/internal/bridge"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modhost/internal/shared/id"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 16 * 1024
)

// Message is a client request.
type Message struct {
	Type  string         `json:"type"`
	Query advisory.Query `json:"query"`
}

// Reply is a server message.
type Reply struct {
	Type      string         `json:"type"`
	Channel   bridge.Channel `json:"channel,omitempty"`
	Text      string         `json:"text,omitempty"`
	HTML      string         `json:"html,omitempty"`
	Message   string         `json:"message,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// Handler manages WebSocket connections
type Handler struct {
	runner   *advisory.Runner
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// Option configures a Handler.
type Option func(*Handler)

// WithOrigins restricts upgrades to the given browser origins. "*" allows
// any origin. The server's own host is always accepted, as are requests
// without an Origin header.
func WithOrigins(origins []string) Option {
	return func(h *Handler) {
		h.upgrader.CheckOrigin = originChecker(origins)
	}
}

// NewHandler creates a new WebSocket handler. Without WithOrigins every
// origin is accepted.
func NewHandler(runner *advisory.Runner, metrics *monitoring.Metrics, logger *zap.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		runner:  runner,
		metrics: metrics,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed[strings.ToLower(origin)]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// conn serialises writes; chunks arrive on the module goroutine while
// replies to pings come from the read loop.
type conn struct {
	ws      *websocket.Conn
	mu      sync.Mutex
	metrics *monitoring.Metrics
}

func (c *conn) send(r Reply) error {
	r.Timestamp = time.Now().Unix()
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.ws.WriteJSON(r)
	if err == nil {
		c.metrics.RecordWSMessage("out", r.Type)
	}
	return err
}

func (c *conn) sendError(msg string) error {
	return c.send(Reply{Type: "error", Message: msg})
}

// HandleConnection upgrades the request and serves run requests until the
// client disconnects. Runs on one connection are sequential.
func (h *Handler) HandleConnection(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()
	ws.SetReadLimit(maxMessageSize)

	connID := id.NewConnectionID()
	log := h.logger.With(zap.String("connection_id", connID.String()))
	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()
	log.Debug("websocket connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	cn := &conn{ws: ws, metrics: h.metrics}
	for {
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		h.metrics.RecordWSMessage("in", msg.Type)

		switch msg.Type {
		case "run":
			h.handleRun(ctx, cn, msg.Query, log)
		case "ping":
			_ = cn.send(Reply{Type: "pong"})
		default:
			_ = cn.sendError("unknown message type")
		}
	}
}

func (h *Handler) handleRun(ctx context.Context, cn *conn, q advisory.Query, log *zap.Logger) {
	if err := q.Validate(); err != nil {
		_ = cn.sendError("invalid query: " + err.Error())
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// A failed chunk write means the client is gone; stop the run.
	html, err := h.runner.Stream(ctx, q, func(ch bridge.Chunk) {
		if err := cn.send(Reply{Type: "chunk", Channel: ch.Channel, Text: ch.Text}); err != nil {
			log.Debug("chunk write failed", zap.Error(err))
			cancel()
		}
	})
	if err != nil {
		log.Warn("run failed", zap.Error(err))
		_ = cn.sendError(err.Error())
		return
	}
	_ = cn.send(Reply{Type: "result", HTML: html})
}
