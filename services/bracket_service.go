package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arenaforge/tournament-engine/brackets"
	"github.com/arenaforge/tournament-engine/models"
	"github.com/arenaforge/tournament-engine/repositories"
)

type BracketService interface {
	// GenerateBracket replaces any existing bracket for the tournament
	// with a freshly seeded single-elimination tree. Destructive to
	// previously recorded results.
	GenerateBracket(ctx context.Context, caller Caller, tournamentID int) ([]*models.Match, error)
}

type bracketService struct {
	tx               txRunner
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	matchRepo        repositories.MatchRepository
	shuffler         brackets.Shuffler
	hub              *brackets.Hub
	logger           *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	matchRepo repositories.MatchRepository,
	shuffler brackets.Shuffler,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tx:               sqlTxRunner{db: db},
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		matchRepo:        matchRepo,
		shuffler:         shuffler,
		hub:              hub,
		logger:           logger,
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, caller Caller, tournamentID int) ([]*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if !canManageTournament(caller, tournament) {
		return nil, ErrForbiddenOperation
	}
	if tournament.Status != models.StatusOngoing {
		return nil, ErrTournamentNotOngoing
	}

	registrations, err := s.registrationRepo.ListConfirmedByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed registrations for tournament %d: %w", tournamentID, err)
	}
	if len(registrations) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	expectedKind := models.KindFor(tournament.Type)
	entries := make([]models.Competitor, 0, len(registrations))
	for _, reg := range registrations {
		if reg.Competitor.Kind != expectedKind {
			return nil, fmt.Errorf("registration %d has competitor kind %s in a %s tournament", reg.ID, reg.Competitor.Kind, tournament.Type)
		}
		entries = append(entries, reg.Competitor)
	}

	plan, err := brackets.Plan(entries, s.shuffler)
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughEntries) {
			return nil, ErrNotEnoughParticipants
		}
		return nil, fmt.Errorf("failed to plan bracket for tournament %d: %w", tournamentID, err)
	}

	matches := make([]*models.Match, 0, len(plan))
	err = s.tx.Run(ctx, func(tx *sql.Tx) error {
		if err := s.matchRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
			return err
		}
		for _, pm := range plan {
			match := &models.Match{
				TournamentID: tournamentID,
				Round:        pm.Round,
				MatchNumber:  pm.MatchNumber,
				SlotA:        pm.SlotA,
				SlotB:        pm.SlotB,
				Winner:       pm.Winner,
				Status:       models.MatchScheduled,
			}
			if pm.Completed {
				match.Status = models.MatchCompleted
			}
			if err := s.matchRepo.Create(ctx, tx, match); err != nil {
				return fmt.Errorf("failed to create match r%dm%d: %w", pm.Round, pm.MatchNumber, err)
			}
			matches = append(matches, match)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist bracket for tournament %d: %w", tournamentID, err)
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("participants", len(entries)),
		slog.Int("rounds", brackets.TotalRounds(len(entries))),
		slog.Int("matches", len(matches)),
	)

	if s.hub != nil {
		s.hub.BroadcastToRoom(brackets.RoomID(tournamentID), brackets.Event{
			Type:    brackets.EventBracketGenerated,
			Payload: matches,
		})
	}
	return matches, nil
}
