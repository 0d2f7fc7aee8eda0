package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/arenaforge/tournament-engine/brackets"
	"github.com/arenaforge/tournament-engine/models"
	"github.com/arenaforge/tournament-engine/repositories"
	"github.com/arenaforge/tournament-engine/storage"
	"github.com/google/uuid"
)

type SubmitResultInput struct {
	ScoreA   int `json:"score_a"`
	ScoreB   int `json:"score_b"`
	WinnerID int `json:"winner_id"`
}

type MatchService interface {
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// SubmitResult completes a match and advances the winner into its
	// slot of the next-round match, both inside one transaction.
	SubmitResult(ctx context.Context, caller Caller, matchID int, input SubmitResultInput) (*models.Match, error)
	// UploadProof stores an evidence file and attaches its public URL
	// to the match. Does not touch the match status.
	UploadProof(ctx context.Context, caller Caller, matchID int, contentType string, file io.Reader) (string, error)
	// AttachProofURL records an externally hosted evidence URL.
	AttachProofURL(ctx context.Context, caller Caller, matchID int, proofURL string) error
}

type matchService struct {
	tx             txRunner
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	disputeRepo    repositories.DisputeRepository
	uploader       storage.FileUploader
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	disputeRepo repositories.DisputeRepository,
	uploader storage.FileUploader,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:             sqlTxRunner{db: db},
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		disputeRepo:    disputeRepo,
		uploader:       uploader,
		hub:            hub,
		logger:         logger,
	}
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	disputes, err := s.disputeRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load disputes for match %d: %w", matchID, err)
	}
	match.Disputes = disputes
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) SubmitResult(ctx context.Context, caller Caller, matchID int, input SubmitResultInput) (*models.Match, error) {
	match, tournament, err := s.loadMatchWithTournament(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !canManageTournament(caller, tournament) {
		return nil, ErrForbiddenOperation
	}
	if match.Status == models.MatchCompleted {
		return nil, ErrMatchAlreadyCompleted
	}
	if match.SlotA == nil || match.SlotB == nil {
		return nil, ErrMatchNotReady
	}

	winner := models.CompetitorFor(tournament.Type, input.WinnerID)
	if !match.HasCompetitor(winner) {
		return nil, ErrWinnerNotInMatch
	}

	err = s.tx.Run(ctx, func(tx *sql.Tx) error {
		if err := s.matchRepo.CompleteWithResult(ctx, tx, matchID, input.ScoreA, input.ScoreB, winner); err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				// Zero rows: either a concurrent submission flipped the
				// status or a bracket regeneration deleted the row.
				existing, lookupErr := s.matchRepo.GetByCoordinates(ctx, tx, match.TournamentID, match.Round, match.MatchNumber)
				if errors.Is(lookupErr, repositories.ErrMatchNotFound) {
					return ErrMatchNotFound
				}
				if lookupErr != nil {
					return lookupErr
				}
				if existing.ID != matchID {
					// A regeneration replaced the bracket under us.
					return ErrMatchNotFound
				}
				return ErrMatchAlreadyCompleted
			}
			return err
		}

		nextRound, nextNumber, slot := brackets.ParentCoordinates(match.Round, match.MatchNumber)
		next, err := s.matchRepo.GetByCoordinates(ctx, tx, match.TournamentID, nextRound, nextNumber)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				// This was the final; nothing to advance into.
				return nil
			}
			return err
		}
		return s.matchRepo.SetSlot(ctx, tx, next.ID, slot, winner)
	})
	if err != nil {
		if errors.Is(err, ErrMatchAlreadyCompleted) || errors.Is(err, ErrMatchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to submit result for match %d: %w", matchID, err)
	}

	match.ScoreA = &input.ScoreA
	match.ScoreB = &input.ScoreB
	match.Winner = &winner
	match.Status = models.MatchCompleted

	s.logger.Info("match result submitted",
		slog.Int("tournament_id", match.TournamentID),
		slog.Int("match_id", matchID),
		slog.Int("round", match.Round),
		slog.String("winner", winner.String()),
	)

	if s.hub != nil {
		s.hub.BroadcastToRoom(brackets.RoomID(match.TournamentID), brackets.Event{
			Type:    brackets.EventMatchUpdated,
			Payload: match,
		})
	}
	return match, nil
}

func (s *matchService) UploadProof(ctx context.Context, caller Caller, matchID int, contentType string, file io.Reader) (string, error) {
	match, tournament, err := s.loadMatchWithTournament(ctx, matchID)
	if err != nil {
		return "", err
	}
	if !canManageTournament(caller, tournament) {
		return "", ErrForbiddenOperation
	}
	if file == nil {
		return "", ErrProofRequired
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProofRequired, err)
	}

	key := fmt.Sprintf("proofs/%d/%d/%s%s", match.TournamentID, matchID, uuid.NewString(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return "", fmt.Errorf("failed to upload proof for match %d: %w", matchID, err)
	}

	if err := s.matchRepo.SetProofURL(ctx, matchID, result.Location); err != nil {
		return "", fmt.Errorf("failed to attach proof to match %d: %w", matchID, err)
	}
	return result.Location, nil
}

func (s *matchService) AttachProofURL(ctx context.Context, caller Caller, matchID int, proofURL string) error {
	_, tournament, err := s.loadMatchWithTournament(ctx, matchID)
	if err != nil {
		return err
	}
	if !canManageTournament(caller, tournament) {
		return ErrForbiddenOperation
	}

	parsed, err := url.Parse(proofURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ErrProofRequired
	}

	if err := s.matchRepo.SetProofURL(ctx, matchID, proofURL); err != nil {
		return fmt.Errorf("failed to attach proof to match %d: %w", matchID, err)
	}
	return nil
}

func (s *matchService) loadMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	return match, nil
}

func (s *matchService) loadMatchWithTournament(ctx context.Context, matchID int) (*models.Match, *models.Tournament, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, nil, ErrTournamentNotFound
		}
		return nil, nil, fmt.Errorf("failed to load tournament %d: %w", match.TournamentID, err)
	}
	return match, tournament, nil
}
