package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"alima/internal/adapter/api/middleware"
	ws "alima/internal/infrastructure/websocket"
	"alima/pkg/errors"
	"alima/pkg/logger"
	"alima/pkg/response"
)

type WebSocketHandler struct {
	wsManager *ws.Manager
	upgrader  gorillaws.Upgrader
}

// NewWebSocketHandler accepts handshakes from allowedOrigins. An empty list
// or "*" accepts any origin.
func NewWebSocketHandler(wsManager *ws.Manager, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager: wsManager,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		if len(set) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.Warn("WebSocket upgrade failed for %s: %v", userID, err)
		return nil
	}

	client := ws.NewClient(userID, conn)
	h.wsManager.Register(client)

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
