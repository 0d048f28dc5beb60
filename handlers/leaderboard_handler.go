package handlers

import (
	"net/http"

	"github.com/fieldline/stage-system/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// Get godoc
// @Summary Get the stage leaderboard
// @Tags leaderboard
// @Produce json
// @Param stageID path int true "Stage ID"
// @Success 200 {array} models.RankingEntry
// @Router /stages/{stageID}/leaderboard [get]
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	stageID, err := stageIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.leaderboardService.GetLeaderboard(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries, nil)
}
