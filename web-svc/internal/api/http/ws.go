package httpapi

import (
	"context"
	"log"
	"net/http"

	"noah-food/web-svc/internal/service"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type statusMessage struct {
	View  *service.StatusView `json:"view,omitempty"`
	Error string              `json:"error,omitempty"`
}

// streamOrderStatus pushes a status view on every poll until the order is
// finished or the socket goes away.
func (h *Handler) streamOrderStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ref := r.URL.Query().Get("order_id")
	poller := service.NewStatusPoller(h.workspace(r).Status, h.PollInterval)
	err = poller.Run(ctx, ref, func(view *service.StatusView, err error) {
		msg := statusMessage{View: view}
		if err != nil {
			msg.Error = err.Error()
		}
		if writeErr := conn.WriteJSON(msg); writeErr != nil {
			log.Printf("Warning: websocket write failed: %v", writeErr)
			cancel()
		}
	})
	if err != nil && ctx.Err() == nil {
		log.Printf("Warning: status stream stopped: %v", err)
	}

	if err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")); err != nil {
		log.Printf("Warning: failed to close status stream: %v", err)
	}
}
