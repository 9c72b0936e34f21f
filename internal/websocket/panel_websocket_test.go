package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"social-listening-gateway/internal/config"
	"social-listening-gateway/internal/panel"
	"social-listening-gateway/internal/ratelimit"
	"social-listening-gateway/internal/trigger"

	"github.com/gin-gonic/gin"
	ws "github.com/gorilla/websocket"
)

type replyFrame struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Presentation map[string]any `json:"presentation"`
	Error        string         `json:"error"`
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{Allowed: false, Limit: 1, RetryAfter: 1500 * time.Millisecond}, nil
}

func dialPanel(t *testing.T, limiter ratelimit.Limiter) *ws.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","snapshot_id":"s_123"}`))
	}))
	t.Cleanup(remote.Close)

	cfg := &config.Config{
		ClusterEndpoint: remote.URL,
		SocialEndpoint:  remote.URL,
		SearchEndpoint:  remote.URL,
		RedditDatasetID: "gd_reddit",
		QuoraDatasetID:  "gd_quora",
		DashboardName:   "Topic Dashboard",
	}
	svc := panel.NewService(cfg, trigger.New(5*time.Second), nil)

	r := gin.New()
	r.GET("/connect", NewPanelSocket(svc, limiter).Handle)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	conn, _, err := ws.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/connect", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *ws.Conn, msg string) replyFrame {
	t.Helper()
	if err := conn.WriteMessage(ws.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply replyFrame
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return reply
}

func TestPanelSocket_Actions(t *testing.T) {
	conn := dialPanel(t, nil)

	reply := roundTrip(t, conn, `{"id":"m1","action":"cluster","payload":{"ids":["a","b"],"n_clusters":3,"description":"Q2"}}`)
	if reply.ID != "m1" || reply.Type != "result" || reply.Presentation["severity"] != "confirm" {
		t.Errorf("Expected confirmation reply, got %+v", reply)
	}

	reply = roundTrip(t, conn, `{"id":"m2","action":"scrape","platform":"reddit","payload":{"links":["https://reddit.com/r/x"],"confirmed":true}}`)
	if reply.Type != "result" || reply.Presentation["title"] != "Success!" {
		t.Fatalf("Expected scrape success, got %+v", reply)
	}
	if body, _ := reply.Presentation["body"].(string); !strings.Contains(body, "s_123") {
		t.Errorf("Expected snapshot id in body, got %q", body)
	}
}

func TestPanelSocket_Errors(t *testing.T) {
	conn := dialPanel(t, nil)

	tests := []struct {
		name    string
		msg     string
		wantErr string
	}{
		{"unknown action", `{"id":"e1","action":"delete"}`, "unknown action"},
		{"unknown platform", `{"id":"e2","action":"scrape","platform":"myspace","payload":{}}`, "unknown platform"},
		{"bad payload", `{"id":"e3","action":"search","payload":{"query":42}}`, "invalid search payload"},
		{"not json", `hello`, "invalid message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := roundTrip(t, conn, tt.msg)
			if reply.Type != "error" || !strings.Contains(reply.Error, tt.wantErr) {
				t.Errorf("Expected error containing %q, got %+v", tt.wantErr, reply)
			}
			if reply.ID == "" {
				t.Error("Expected reply id to be set")
			}
		})
	}
}

func TestPanelSocket_AssignsMissingID(t *testing.T) {
	conn := dialPanel(t, nil)

	reply := roundTrip(t, conn, `{"action":"search","payload":{"source":"reddit","query":""}}`)
	if reply.ID == "" || reply.Type != "result" || reply.Presentation["title"] != "Missing Info" {
		t.Errorf("Unexpected reply %+v", reply)
	}
}

func TestPanelSocket_RateLimited(t *testing.T) {
	conn := dialPanel(t, denyAll{})

	reply := roundTrip(t, conn, `{"id":"r1","action":"cluster","payload":{}}`)
	if reply.Type != "error" || !strings.Contains(reply.Error, "retry in 2s") {
		t.Errorf("Expected rate limit error, got %+v", reply)
	}
}

func TestPanelSocket_SurvivesSlowTrigger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(700 * time.Millisecond)
		w.Write([]byte(`{"rows_inserted":3}`))
	}))
	t.Cleanup(remote.Close)

	svc := panel.NewService(&config.Config{SearchEndpoint: remote.URL}, trigger.New(5*time.Second), nil)
	socket := NewPanelSocket(svc, nil)
	socket.PongWait = 300 * time.Millisecond
	socket.PingPeriod = 100 * time.Millisecond

	r := gin.New()
	r.GET("/connect", socket.Handle)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	conn, _, err := ws.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/connect", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	msg := `{"id":"s1","action":"search","payload":{"source":"reddit","query":"laptops"}}`
	for i := 0; i < 2; i++ {
		reply := roundTrip(t, conn, msg)
		if reply.Type != "result" || reply.Presentation["title"] != "Success!" {
			t.Fatalf("Call %d: expected search success, got %+v", i+1, reply)
		}
	}
}
