package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/viewdeck/viewdeck/pkg/ui"
)

// handleSSE registers a push client and streams its updates as
// server-sent events until the client goes away. Query params mirror
// the websocket endpoint: client_id and repeatable subscribe.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	channel := s.manager.Channel()
	if channel == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "push channel disabled"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	client, err := channel.Connect(clientID, ui.ChannelSSE, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	defer channel.Disconnect(clientID)

	for _, viewID := range r.URL.Query()["subscribe"] {
		channel.Subscribe(clientID, viewID)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: connected\ndata: {\"client_id\":%q}\n\n", clientID)
	flusher.Flush()

	for {
		select {
		case update := <-client.Updates():
			data, err := json.Marshal(update)
			if err != nil {
				s.logger.Warn("sse encode failed", "client_id", clientID, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: update\ndata: %s\n\n", data)
			flusher.Flush()
		case <-client.Done():
			return
		case <-r.Context().Done():
			return
		}
	}
}
