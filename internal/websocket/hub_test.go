package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"freightledger/internal/clock"
	"freightledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Hub, service.AuthService, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users, err := service.SeedUsers("pw")
	require.NoError(t, err)
	auth := service.NewAuthService("ws-secret", time.Hour, clock.NewSystem(), users)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, auth, c) })
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, auth, srv
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
}

func TestServeWsRejectsMissingOrBadToken(t *testing.T) {
	_, _, srv := newTestServer(t)

	for _, token := range []string{"", "garbage"} {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestHubBroadcastsPublishedEvents(t *testing.T) {
	hub, auth, srv := newTestServer(t)

	login, err := auth.Login(context.Background(), service.LoginRequest{Username: "operator1", Password: "pw"})
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, login.Token), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(service.EventOrderCreated, service.OrderEvent{ID: "ORDER_000001"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Event string             `json:"event"`
		Data  service.OrderEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, service.EventOrderCreated, msg.Event)
	assert.Equal(t, "ORDER_000001", msg.Data.ID)
}

func TestPublishWithoutClientsDoesNotBlock(t *testing.T) {
	hub := NewHub()
	for range sendBuffer + 10 {
		hub.Publish(service.EventOrderDeleted, service.OrderEvent{ID: "x"})
	}
	assert.Zero(t, hub.ClientCount())
}
