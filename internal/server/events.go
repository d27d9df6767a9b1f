package server

import (
	"net/http"
	"time"

	"playlistarr/internal/models"
	"playlistarr/internal/utils/logging"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingEvery  = 30 * time.Second
	wsSendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is served same-host or behind a reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEvent is one websocket frame. Type is "item" for per-item updates and
// "run" for session state changes.
type wsEvent struct {
	Type string                `json:"type"`
	Item *wsItemUpdate         `json:"item,omitempty"`
	Run  *models.SessionRecord `json:"run,omitempty"`
}

// wsItemUpdate mirrors models.StatusUpdate in a marshal-friendly shape.
type wsItemUpdate struct {
	SessionID  string  `json:"session_id"`
	ItemID     string  `json:"item_id"`
	URL        string  `json:"url"`
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"`
	OutputPath string  `json:"output_path,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func itemUpdate(u models.StatusUpdate) *wsItemUpdate {
	errMsg := ""
	if u.Err != nil {
		errMsg = u.Err.Error()
	}
	return &wsItemUpdate{
		SessionID:  u.SessionID,
		ItemID:     u.ItemID,
		URL:        u.ItemURL,
		Status:     string(u.Status),
		Progress:   u.Progress,
		OutputPath: u.OutputPath,
		Error:      errMsg,
	}
}

// handleEventSocket streams item and run events over a websocket until the
// client disconnects. A slow client loses events rather than slowing the
// runs that publish them.
func (s *Server) handleEventSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.E(0, "Websocket upgrade failed: %v", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logging.D(2, "Websocket close: %v", err)
		}
	}()

	send := make(chan wsEvent, wsSendBuffer)

	onItem := func(u models.StatusUpdate) {
		select {
		case send <- wsEvent{Type: "item", Item: itemUpdate(u)}:
		default:
		}
	}
	onRun := func(rec models.SessionRecord) {
		select {
		case send <- wsEvent{Type: "run", Run: &rec}:
		default:
		}
	}

	if err := s.bus.SubscribeItemStatus(onItem); err != nil {
		logging.E(0, "Websocket item subscription failed: %v", err)
		return
	}
	if err := s.bus.SubscribeRunState(onRun); err != nil {
		logging.E(0, "Websocket run subscription failed: %v", err)
		s.unsubscribe(onItem, nil)
		return
	}
	defer s.unsubscribe(onItem, onRun)

	// Discard inbound frames, reading only to notice the close.
	readerGone := make(chan struct{})
	go func() {
		defer close(readerGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingEvery)
	defer ticker.Stop()

	for {
		select {
		case ev := <-send:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readerGone:
			return
		case <-s.runCtx.Done():
			return
		}
	}
}

func (s *Server) unsubscribe(onItem func(models.StatusUpdate), onRun func(models.SessionRecord)) {
	if onItem != nil {
		if err := s.bus.UnsubscribeItemStatus(onItem); err != nil {
			logging.D(2, "Websocket item unsubscribe: %v", err)
		}
	}
	if onRun != nil {
		if err := s.bus.UnsubscribeRunState(onRun); err != nil {
			logging.D(2, "Websocket run unsubscribe: %v", err)
		}
	}
}
