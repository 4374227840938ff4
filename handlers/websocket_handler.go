package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub    *brackets.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeWs streams live tournament events to the client.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade websocket connection", slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		ID:   uuid.NewString(),
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: brackets.TournamentRoom,
	}
	if !client.Hub.Join(client) {
		h.logger.Warn("websocket hub stopped, connection refused", slog.String("client_id", client.ID))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
