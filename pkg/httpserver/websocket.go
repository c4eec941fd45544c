package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/viewdeck/viewdeck/pkg/push"
	"github.com/viewdeck/viewdeck/pkg/ui"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin checks belong to the fronting proxy / auth layer.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWebSocket upgrades the connection, registers a push client and
// streams its queued updates as JSON frames. Query params: client_id
// (generated when absent), subscribe (repeatable view id, * for all).
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	channel := s.manager.Channel()
	if channel == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "push channel disabled"})
		return
	}

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client, err := channel.Connect(clientID, ui.ChannelWebSocket, nil)
	if err != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	for _, viewID := range r.URL.Query()["subscribe"] {
		channel.Subscribe(clientID, viewID)
	}

	go s.writeLoop(conn, client)
	s.readLoop(conn, channel, clientID)
}

// readLoop consumes subscribe/unsubscribe messages from the client and
// keeps the connection's read deadline fresh. Returning disconnects.
func (s *Server) readLoop(conn *websocket.Conn, channel *push.Channel, clientID string) {
	defer func() {
		channel.Disconnect(clientID)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg struct {
			Action string `json:"action"`
			ViewID string `json:"view_id"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket closed", "client_id", clientID, "error", err)
			}
			return
		}

		var err error
		switch msg.Action {
		case "subscribe":
			err = channel.Subscribe(clientID, msg.ViewID)
		case "unsubscribe":
			err = channel.Unsubscribe(clientID, msg.ViewID)
		}
		if err != nil && !errors.Is(err, push.ErrClientNotFound) {
			s.logger.Warn("websocket subscription error",
				"client_id", clientID,
				"action", msg.Action,
				"error", err)
		}
	}
}

// writeLoop drains the client's update queue onto the socket and keeps
// the connection alive with pings.
func (s *Server) writeLoop(conn *websocket.Conn, client *push.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case update := <-client.Updates():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-client.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
