package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arenaforge/tournament-engine/services"
	"github.com/stretchr/testify/assert"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{services.ErrTournamentNotFound, http.StatusNotFound},
		{services.ErrMatchNotFound, http.StatusNotFound},
		{services.ErrForbiddenOperation, http.StatusForbidden},
		{services.ErrMatchAlreadyCompleted, http.StatusConflict},
		{services.ErrTournamentNotOngoing, http.StatusConflict},
		{services.ErrNotEnoughParticipants, http.StatusBadRequest},
		{services.ErrFinalNotCompleted, http.StatusBadRequest},
		{services.ErrMatchNotReady, http.StatusBadRequest},
		{services.ErrWinnerNotInMatch, http.StatusBadRequest},
		{services.ErrProofRequired, http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/tournaments/1/complete", nil)

		mapServiceErrorToHTTP(rec, req, tc.err)
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestMapServiceErrorToHTTPUnwrapsChains(t *testing.T) {
	wrapped := fmt.Errorf("failed to submit result for match 7: %w", services.ErrWinnerNotInMatch)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/matches/7/result", nil)

	mapServiceErrorToHTTP(rec, req, wrapped)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
