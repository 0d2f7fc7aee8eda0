package services

import "errors"

// Shared sentinel errors, mapped onto HTTP statuses by the handlers.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Authorization
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Business rules
	ErrTournamentNotOngoing  = errors.New("tournament is not in an ongoing state")
	ErrNotEnoughParticipants = errors.New("not enough confirmed participants (minimum 2 required)")
	ErrFinalNotCompleted     = errors.New("the final match has not been completed yet")
	ErrMatchAlreadyCompleted = errors.New("a result was already submitted for this match")
	ErrMatchNotReady         = errors.New("match is still waiting for competitors from the previous round")
	ErrWinnerNotInMatch      = errors.New("submitted winner is not a competitor in this match")
	ErrProofRequired         = errors.New("a proof file or url is required")
)
