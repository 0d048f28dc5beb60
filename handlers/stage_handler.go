package handlers

import (
	"net/http"
	"strconv"

	"github.com/fieldline/stage-system/services"
	"github.com/go-chi/chi/v5"
)

type StageHandler struct {
	stageService services.StageService
}

func NewStageHandler(stageService services.StageService) *StageHandler {
	return &StageHandler{stageService: stageService}
}

func stageIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "stageID"))
}

// Create godoc
// @Summary Create a stage
// @Tags stages
// @Accept json
// @Produce json
// @Param input body services.CreateStageInput true "Stage payload"
// @Success 201 {object} models.Stage
// @Router /stages [post]
func (h *StageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateStageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stage, err := h.stageService.CreateStage(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, stage, nil)
}

// List godoc
// @Summary List stages
// @Tags stages
// @Produce json
// @Success 200 {array} models.Stage
// @Router /stages [get]
func (h *StageHandler) List(w http.ResponseWriter, r *http.Request) {
	stages, err := h.stageService.ListStages(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stages, nil)
}

// Get godoc
// @Summary Get a stage with teams, matches and rankings
// @Tags stages
// @Produce json
// @Param stageID path int true "Stage ID"
// @Success 200 {object} services.StageDetail
// @Router /stages/{stageID} [get]
func (h *StageHandler) Get(w http.ResponseWriter, r *http.Request) {
	stageID, err := stageIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	detail, err := h.stageService.GetStageDetail(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete a stage
// @Tags stages
// @Param stageID path int true "Stage ID"
// @Success 204
// @Router /stages/{stageID} [delete]
func (h *StageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	stageID, err := stageIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.stageService.DeleteStage(r.Context(), stageID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignTeamsInput struct {
	TeamIDs []string `json:"team_ids"`
}

// AssignTeams godoc
// @Summary Replace the stage roster
// @Tags stages
// @Accept json
// @Param stageID path int true "Stage ID"
// @Param input body handlers.assignTeamsInput true "Team ids in seed order"
// @Success 204
// @Router /stages/{stageID}/teams [put]
func (h *StageHandler) AssignTeams(w http.ResponseWriter, r *http.Request) {
	stageID, err := stageIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input assignTeamsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.stageService.AssignTeams(r.Context(), stageID, input.TeamIDs); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateMatches godoc
// @Summary Generate the stage schedule
// @Tags stages
// @Produce json
// @Param stageID path int true "Stage ID"
// @Success 201 {object} services.GeneratedSchedule
// @Router /stages/{stageID}/matches/generate [post]
func (h *StageHandler) GenerateMatches(w http.ResponseWriter, r *http.Request) {
	stageID, err := stageIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	schedule, err := h.stageService.GenerateMatches(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, schedule, nil)
}
