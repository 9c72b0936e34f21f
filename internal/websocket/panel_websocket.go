// Package websocket serves the interactive control panel over a websocket.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"social-listening-gateway/internal/panel"
	"social-listening-gateway/internal/pkg/models"
	"social-listening-gateway/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

const (
	writeTimeout = 15 * time.Second
	pongWait     = 70 * time.Second
	pingPeriod   = 30 * time.Second
	maxMessage   = 1 << 20
)

var upgrader = ws.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// operators authenticate with a token, not cookies
		return true
	},
}

var errUnknownAction = errors.New("unknown action")

// PanelSocket upgrades operator connections and runs panel actions sent over them.
type PanelSocket struct {
	Panel   *panel.Service
	Limiter ratelimit.Limiter

	PongWait   time.Duration
	PingPeriod time.Duration
}

func NewPanelSocket(p *panel.Service, limiter ratelimit.Limiter) *PanelSocket {
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	return &PanelSocket{Panel: p, Limiter: limiter, PongWait: pongWait, PingPeriod: pingPeriod}
}

type session struct {
	conn     *ws.Conn
	operator string
	mu       sync.Mutex
}

func (s *session) write(reply models.SocketReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(reply)
}

// Handle upgrades the request and blocks until the connection closes.
// Messages are processed one at a time in arrival order.
func (h *PanelSocket) Handle(c *gin.Context) {
	operator := c.GetString("operator")
	if operator == "" {
		operator = "anonymous"
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	s := &session{conn: conn, operator: operator}
	logger := slog.With("operator", operator, "remote", c.ClientIP())
	logger.Info("Panel connected")

	conn.SetReadLimit(maxMessage)
	conn.SetReadDeadline(time.Now().Add(h.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.PongWait))
	})

	done := make(chan struct{})
	go s.pingLoop(done, h.PingPeriod)
	defer func() {
		close(done)
		conn.Close()
		logger.Info("Panel disconnected")
	}()

	ctx := c.Request.Context()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure) {
				logger.Warn("Panel read error", "error", err)
			}
			return
		}

		reply := h.process(ctx, s.operator, raw)
		if err := s.write(reply); err != nil {
			logger.Warn("Panel write error", "error", err)
			return
		}
		// Pongs are only handled while reading, so a slow trigger call
		// must not count against the deadline.
		conn.SetReadDeadline(time.Now().Add(h.PongWait))
	}
}

func (s *session) pingLoop(done <-chan struct{}, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			err := s.conn.WriteControl(ws.PingMessage, nil, time.Now().Add(writeTimeout))
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (h *PanelSocket) process(ctx context.Context, operator string, raw []byte) models.SocketReply {
	var msg models.SocketMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return models.SocketReply{ID: uuid.NewString(), Type: "error", Error: "invalid message: " + err.Error()}
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	d, err := h.Limiter.Allow(ctx, operator+":"+msg.Action)
	if err != nil {
		slog.Warn("Rate limiter unavailable", "error", err, "operator", operator)
	} else if !d.Allowed {
		retry := int(math.Ceil(d.RetryAfter.Seconds()))
		return models.SocketReply{ID: msg.ID, Type: "error", Error: fmt.Sprintf("too many requests, retry in %ds", retry)}
	}

	p, err := h.dispatch(ctx, &msg)
	if err != nil {
		return models.SocketReply{ID: msg.ID, Type: "error", Error: err.Error()}
	}
	return models.SocketReply{ID: msg.ID, Type: "result", Presentation: p}
}

func (h *PanelSocket) dispatch(ctx context.Context, msg *models.SocketMessage) (panel.Presentation, error) {
	payload := msg.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	switch msg.Action {
	case "cluster":
		var req models.ClusterRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return panel.Presentation{}, fmt.Errorf("invalid cluster payload: %w", err)
		}
		return h.Panel.Cluster(ctx, &req), nil
	case "scrape":
		if !h.Panel.HasPlatform(msg.Platform) {
			return panel.Presentation{}, fmt.Errorf("unknown platform %q", msg.Platform)
		}
		var req models.ScrapeRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return panel.Presentation{}, fmt.Errorf("invalid scrape payload: %w", err)
		}
		return h.Panel.Scrape(ctx, msg.Platform, &req), nil
	case "search":
		var req models.SearchRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return panel.Presentation{}, fmt.Errorf("invalid search payload: %w", err)
		}
		return h.Panel.Search(ctx, &req), nil
	default:
		return panel.Presentation{}, fmt.Errorf("%w %q", errUnknownAction, msg.Action)
	}
}
