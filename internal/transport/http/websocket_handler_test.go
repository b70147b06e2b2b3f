package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tankreport/internal/config"
	apierrors "tankreport/internal/errors"
	"tankreport/internal/middleware"
	"tankreport/internal/services"
	"tankreport/internal/shared/testutil"
	ws "tankreport/internal/websocket"
)

func startWebSocketServer(t *testing.T, allowedOrigins []string) string {
	t.Helper()
	logger, _ := testutil.NewTestLogger(nil)
	svc := services.NewReportService(config.NewPaths(testutil.WriteDataFixture(t)), nil, logger)

	hub := ws.NewHub(nil, logger)
	hub.Start()
	t.Cleanup(hub.Stop)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Handle("/ws/dsd", NewWebSocketHandler(hub, svc, allowedOrigins, apierrors.NewErrorHandler(logger, false), logger))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/dsd"
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketHandler_Filter(t *testing.T) {
	url := startWebSocketServer(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, ws.TypeConnection, readMessage(t, conn)["type"])

	tests := []struct {
		name      string
		request   string
		wantCount float64
	}{
		{"one district", `{"type":"dsd:filter","id":"a","districts":["Anuradhapura"]}`, 2},
		{"every district", `{"type":"dsd:filter","id":"b"}`, testutil.FixtureMaskRows},
		{"no district", `{"type":"dsd:filter","id":"c","districts":[]}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.request)))

			msg := readMessage(t, conn)
			require.Equal(t, ws.TypeFilterResult, msg["type"], msg)
			data := msg["data"].(map[string]any)
			assert.Equal(t, tt.wantCount, data["count"])
			assert.Len(t, data["rows"], int(tt.wantCount))
			assert.Equal(t, rowDSDs(data), barLabels(data["chart"]))
		})
	}
}

func TestWebSocketHandler_Origin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		wantOK  bool
	}{
		{"listed origin", []string{"http://dashboard.example"}, "http://dashboard.example", true},
		{"wildcard", []string{"*"}, "http://anywhere.example", true},
		{"foreign origin", nil, "http://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := startWebSocketServer(t, tt.allowed)

			header := http.Header{}
			header.Set("Origin", tt.origin)
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if tt.wantOK {
				require.NoError(t, err)
				conn.Close()
				return
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), apierrors.TypeWebSocketUpgrade)
		})
	}
}
