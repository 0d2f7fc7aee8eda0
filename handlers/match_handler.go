package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/arenaforge/tournament-engine/services"
)

// Proof uploads are capped well above typical screenshot sizes.
const maxProofBytes = 32 << 20 // 32MB

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// ListByTournamentHandler handles GET /tournaments/{tournamentID}/matches
func (h *MatchHandler) ListByTournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /matches/{matchID}
func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitResultHandler handles POST /matches/{matchID}/result
func (h *MatchHandler) SubmitResultHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller, err := callerFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to submit a result")
		return
	}

	var input services.SubmitResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.WinnerID <= 0 {
		badRequestResponse(w, r, errors.New("winner_id is required"))
		return
	}
	if input.ScoreA < 0 || input.ScoreB < 0 {
		badRequestResponse(w, r, errors.New("scores must not be negative"))
		return
	}

	match, err := h.matchService.SubmitResult(r.Context(), caller, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadProofHandler handles POST /matches/{matchID}/proof. A
// multipart "proof" file is uploaded to object storage; a JSON body
// with "proof_url" attaches an externally hosted URL instead.
func (h *MatchHandler) UploadProofHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller, err := callerFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to upload proof")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var input struct {
			ProofURL string `json:"proof_url"`
		}
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
		if err := h.matchService.AttachProofURL(r.Context(), caller, matchID, input.ProofURL); err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		if err := writeJSON(w, http.StatusOK, jsonResponse{"proof_url": input.ProofURL}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	if err := r.ParseMultipartForm(maxProofBytes); err != nil {
		badRequestResponse(w, r, errors.New("expected a multipart form with a proof file"))
		return
	}
	file, header, err := r.FormFile("proof")
	if err != nil {
		badRequestResponse(w, r, errors.New("missing proof file"))
		return
	}
	defer file.Close()

	proofURL, err := h.matchService.UploadProof(r.Context(), caller, matchID, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"proof_url": proofURL}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
