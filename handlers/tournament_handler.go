package handlers

import (
	"net/http"
	"strconv"

	"github.com/arenaforge/tournament-engine/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	bracketService    services.BracketService
	settlementService services.SettlementService
}

func NewTournamentHandler(
	tournamentService services.TournamentService,
	bracketService services.BracketService,
	settlementService services.SettlementService,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		bracketService:    bracketService,
		settlementService: settlementService,
	}
}

// GetByIDHandler handles GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /tournaments
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateBracketHandler handles POST /tournaments/{tournamentID}/bracket
func (h *TournamentHandler) GenerateBracketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller, err := callerFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to generate a bracket")
		return
	}

	matches, err := h.bracketService.GenerateBracket(r.Context(), caller, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CompleteHandler handles POST /tournaments/{tournamentID}/complete
func (h *TournamentHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller, err := callerFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to complete a tournament")
		return
	}

	result, err := h.settlementService.CompleteTournament(r.Context(), caller, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"settlement": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
