package handler

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog/log"

	"github.com/edvin/snapback/internal/api/response"
	"github.com/edvin/snapback/internal/logstream"
	"github.com/edvin/snapback/internal/model"
)

// Logs streams live log entries to WebSocket viewers, filtered to one
// channel.
type Logs struct {
	hub *logstream.Hub
}

func NewLogs(hub *logstream.Hub) *Logs {
	return &Logs{hub: hub}
}

// Stream upgrades to WebSocket and pushes entries for the requested
// channel until the client disconnects. By default only entries appended
// after attachment are delivered; from=beginning preloads the retained
// buffer.
func (h *Logs) Stream(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	switch channel {
	case model.LogChannelBackup, model.LogChannelRestore:
	default:
		response.WriteError(w, http.StatusBadRequest, "channel must be backup or restore")
		return
	}
	fromBeginning := r.URL.Query().Get("from") == "beginning"

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Origin differs from Host when proxied through the dashboard.
	})
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer ws.CloseNow()

	ctx := r.Context()
	sub := h.hub.Subscribe(ctx, channel, fromBeginning)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			ws.Close(websocket.StatusNormalClosure, "")
			return
		case entry, ok := <-sub.C():
			if !ok {
				ws.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := wsjson.Write(ctx, ws, entry); err != nil {
				return
			}
		}
	}
}
