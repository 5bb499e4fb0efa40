// websocket.go - Live import job updates over WebSocket
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	// Same-origin policy is enforced by the CORS layer; local deployment.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler pushes import job snapshots to connected clients.
type WebSocketHandler struct {
	manager ImportManager
}

// NewWebSocketHandler creates the handler.
func NewWebSocketHandler(manager ImportManager) *WebSocketHandler {
	return &WebSocketHandler{manager: manager}
}

// HandleImportSocket upgrades the connection and streams snapshots of the
// job named by the jobId query parameter until it reaches a terminal state.
func (h *WebSocketHandler) HandleImportSocket(c echo.Context) error {
	jobID := c.QueryParam("jobId")
	if jobID == "" {
		return NewValidationError("jobId")
	}
	if _, ok := h.manager.GetJob(jobID); !ok {
		return NewNotFoundError("import job", jobID)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil // upgrader already wrote the error response
	}
	defer conn.Close()

	// Drain client frames so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	var lastProgress float64 = -1
	var lastState string

	for range ticker.C {
		job, ok := h.manager.GetJob(jobID)
		if !ok {
			return nil
		}

		if string(job.State) != lastState || job.Progress != lastProgress {
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(job); err != nil {
				return nil
			}
			lastState = string(job.State)
			lastProgress = job.Progress
		}

		if job.State.Terminal() {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return nil
		}
	}
	return nil
}
