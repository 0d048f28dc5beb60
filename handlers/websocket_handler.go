package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fieldline/stage-system/live"
	"github.com/fieldline/stage-system/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict origins once the frontend domain is fixed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub          *live.Hub
	stageService services.StageService
	logger       *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, stageService services.StageService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		stageService: stageService,
		logger:       logger,
	}
}

// ServeStage upgrades the connection and subscribes the client to the
// stage's event room. Events published for that stage are pushed as JSON.
func (h *WebSocketHandler) ServeStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := strconv.Atoi(chi.URLParam(r, "stageID"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.stageService.GetStage(r.Context(), stageID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.Int("stage_id", stageID),
			slog.Any("error", err))
		return
	}

	h.hub.NewClient(conn, strconv.Itoa(stageID))
}
