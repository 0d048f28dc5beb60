package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fieldline/stage-system/brackets"
	"github.com/fieldline/stage-system/schedule"
	"github.com/fieldline/stage-system/services"
	"github.com/stretchr/testify/assert"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"stage not found", services.ErrStageNotFound, http.StatusNotFound},
		{"match not found", services.ErrMatchNotFound, http.StatusNotFound},
		{"team name conflict", services.ErrTeamNameConflict, http.StatusConflict},
		{"email taken", services.ErrEmailTaken, http.StatusConflict},
		{"invalid format", services.ErrInvalidStageFormat, http.StatusBadRequest},
		{"negative score", services.ErrScoreNegative, http.StatusBadRequest},
		{"no teams", services.ErrStageHasNoTeams, http.StatusUnprocessableEntity},
		{"draw in bracket", brackets.ErrDrawNotAllowed, http.StatusUnprocessableEntity},
		{"too few teams", schedule.ErrNotEnoughTeams, http.StatusUnprocessableEntity},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			mapServiceErrorToHTTP(rec, req, tc.err)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestReadJSONRejectsUnknownFieldsAndGarbage(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	err := readJSON(rec, req, &dst)
	assert.EqualError(t, err, "body must not be empty")
}
