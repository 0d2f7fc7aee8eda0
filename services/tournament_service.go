package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/arenaforge/tournament-engine/models"
	"github.com/arenaforge/tournament-engine/repositories"
	"golang.org/x/sync/errgroup"
)

type TournamentService interface {
	// GetTournament returns the tournament with its bracket and
	// declared payout tiers assembled.
	GetTournament(ctx context.Context, tournamentID int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	payoutRepo     repositories.PayoutRepository
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	payoutRepo repositories.PayoutRepository,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		payoutRepo:     payoutRepo,
	}
}

func (s *tournamentService) GetTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gctx, tournamentID)
		if err != nil {
			return err
		}
		tournament.Matches = make([]models.Match, 0, len(matches))
		for _, m := range matches {
			tournament.Matches = append(tournament.Matches, *m)
		}
		return nil
	})
	g.Go(func() error {
		payouts, err := s.payoutRepo.ListByTournament(gctx, tournamentID)
		if err != nil {
			return err
		}
		tournament.Payouts = make([]models.Payout, 0, len(payouts))
		for _, p := range payouts {
			tournament.Payouts = append(tournament.Payouts, *p)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to assemble tournament %d: %w", tournamentID, err)
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	tournaments, err := s.tournamentRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}
