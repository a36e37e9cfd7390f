package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/modhost/internal/advisory"
	"github.com/GriffinCanCode/modhost/internal/bridge"
	"github.com/GriffinCanCode/modhost/internal/infrastructure/monitoring"
)

type stubExecutor struct {
	chunks []bridge.Chunk
	text   string
	err    error
	got    chan bridge.Request
}

func (s *stubExecutor) Stream(_ context.Context, req bridge.Request, fn func(bridge.Chunk)) (string, error) {
	if s.got != nil {
		s.got <- req
	}
	for _, c := range s.chunks {
		fn(c)
	}
	return s.text, s.err
}

func dial(t *testing.T, exec *stubExecutor) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandler(advisory.NewRunner(exec, "cvrf-review"), monitoring.NewMetrics(), nil)
	router := gin.New()
	router.GET("/stream", h.HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Reply {
	t.Helper()
	var r Reply
	require.NoError(t, conn.ReadJSON(&r))
	return r
}

func TestPingPong(t *testing.T) {
	conn := dial(t, &stubExecutor{})

	require.NoError(t, conn.WriteJSON(Message{Type: "ping"}))
	r := read(t, conn)
	assert.Equal(t, "pong", r.Type)
	assert.NotZero(t, r.Timestamp)
}

func TestUnknownType(t *testing.T) {
	conn := dial(t, &stubExecutor{})

	require.NoError(t, conn.WriteJSON(Message{Type: "chat"}))
	r := read(t, conn)
	assert.Equal(t, "error", r.Type)
	assert.Equal(t, "unknown message type", r.Message)
}

func TestRunStreamsChunksThenResult(t *testing.T) {
	exec := &stubExecutor{
		chunks: []bridge.Chunk{
			{Channel: bridge.ChannelStdout, Text: "\x1b[31mCVE"},
			{Channel: bridge.ChannelStderr, Text: "warn\n"},
			{Channel: bridge.ChannelStdout, Text: "-1\x1b[0m"},
		},
		text: "\x1b[31mCVE-1\x1b[0m",
		got:  make(chan bridge.Request, 1),
	}
	conn := dial(t, exec)

	require.NoError(t, conn.WriteJSON(Message{
		Type:  "run",
		Query: advisory.Query{Product: "FortiOS", Version: "7.2.4", Severity: "low"},
	}))

	for _, want := range exec.chunks {
		r := read(t, conn)
		assert.Equal(t, "chunk", r.Type)
		assert.Equal(t, want.Channel, r.Channel)
		assert.Equal(t, want.Text, r.Text)
	}

	r := read(t, conn)
	assert.Equal(t, "result", r.Type)
	assert.Equal(t, `<span style="color:var(--ansi-red)">CVE-1</span>`, r.HTML)

	req := <-exec.got
	assert.Equal(t, []string{
		"fortinet", "affected", "--product", "FortiOS", "--version", "7.2.4", "--severity", "low",
	}, req.Args)
}

func TestRunErrorIsPlainText(t *testing.T) {
	exec := &stubExecutor{err: &bridge.LoadError{Location: "http://x/main.wasm", Err: assert.AnError}}
	conn := dial(t, exec)

	require.NoError(t, conn.WriteJSON(Message{Type: "run"}))
	r := read(t, conn)
	assert.Equal(t, "error", r.Type)
	assert.Equal(t, exec.err.Error(), r.Message)
	assert.Empty(t, r.HTML)
}

func TestSequentialRunsOnOneConnection(t *testing.T) {
	conn := dial(t, &stubExecutor{text: "done"})

	for i := 0; i < 3; i++ {
		require.NoError(t, conn.WriteJSON(Message{Type: "run"}))
		r := read(t, conn)
		assert.Equal(t, "result", r.Type)
		assert.Equal(t, "done", r.HTML)
	}
}

func TestRunRejectsInvalidQuery(t *testing.T) {
	exec := &stubExecutor{got: make(chan bridge.Request, 1)}
	conn := dial(t, exec)

	require.NoError(t, conn.WriteJSON(Message{Type: "run", Query: advisory.Query{Version: "7\n"}}))
	r := read(t, conn)
	assert.Equal(t, "error", r.Type)
	assert.Contains(t, r.Message, "version contains invalid characters")
	assert.Empty(t, exec.got)
}

func TestOriginCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHandler(advisory.NewRunner(&stubExecutor{}, "cvrf-review"), monitoring.NewMetrics(), nil,
		WithOrigins([]string{"https://advisories.example/"}))
	router := gin.New()
	router.GET("/stream", h.HandleConnection)
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{name: "no origin", origin: "", ok: true},
		{name: "configured origin", origin: "https://Advisories.example", ok: true},
		{name: "same host", origin: srv.URL, ok: true},
		{name: "foreign origin", origin: "https://evil.example", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
			if tt.ok {
				require.NoError(t, err)
				conn.Close()
				return
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestWildcardOrigin(t *testing.T) {
	check := originChecker([]string{"https://a.example", "*"})
	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	req.Header.Set("Origin", "https://anything.example")
	assert.True(t, check(req))

	check = originChecker([]string{"https://a.example"})
	assert.False(t, check(req))
}
