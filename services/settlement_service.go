package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arenaforge/tournament-engine/brackets"
	"github.com/arenaforge/tournament-engine/ledger"
	"github.com/arenaforge/tournament-engine/models"
	"github.com/arenaforge/tournament-engine/repositories"
)

// Placement is a final standing derived from the last match.
type Placement struct {
	Position   int               `json:"position"`
	Competitor models.Competitor `json:"competitor"`
}

type SettlementResult struct {
	TournamentID   int         `json:"tournament_id"`
	Placements     []Placement `json:"placements"`
	PrizesPaid     int64       `json:"prizes_paid"`
	HostProfit     int64       `json:"host_profit"`
	CreditsApplied int         `json:"credits_applied"`
}

type SettlementService interface {
	// CompleteTournament derives final placements, pays out prize
	// tiers and host profit, and flips the tournament to COMPLETED —
	// all in one transaction. The status flip is a compare-and-swap on
	// ONGOING, so of two concurrent settlements exactly one succeeds.
	CompleteTournament(ctx context.Context, caller Caller, tournamentID int) (*SettlementResult, error)
}

type settlementService struct {
	tx                  txRunner
	tournamentRepo      repositories.TournamentRepository
	matchRepo           repositories.MatchRepository
	payoutRepo          repositories.PayoutRepository
	teamRepo            repositories.TeamRepository
	ledger              ledger.Ledger
	captainBonusPercent int
	hub                 *brackets.Hub
	logger              *slog.Logger
}

func NewSettlementService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	payoutRepo repositories.PayoutRepository,
	teamRepo repositories.TeamRepository,
	ledgerService ledger.Ledger,
	captainBonusPercent int,
	hub *brackets.Hub,
	logger *slog.Logger,
) SettlementService {
	return &settlementService{
		tx:                  sqlTxRunner{db: db},
		tournamentRepo:      tournamentRepo,
		matchRepo:           matchRepo,
		payoutRepo:          payoutRepo,
		teamRepo:            teamRepo,
		ledger:              ledgerService,
		captainBonusPercent: captainBonusPercent,
		hub:                 hub,
		logger:              logger,
	}
}

func (s *settlementService) CompleteTournament(ctx context.Context, caller Caller, tournamentID int) (*SettlementResult, error) {
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
	if !models.IsValidStatusTransition(tournament.Status, models.StatusCompleted) {
		return nil, ErrTournamentNotOngoing
	}

	final, err := s.matchRepo.GetFinal(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrFinalNotCompleted
		}
		return nil, fmt.Errorf("failed to load final match for tournament %d: %w", tournamentID, err)
	}
	if final.Status != models.MatchCompleted || final.Winner == nil {
		return nil, ErrFinalNotCompleted
	}

	placements := []Placement{{Position: 1, Competitor: *final.Winner}}
	if runnerUp := final.RunnerUp(); runnerUp != nil {
		placements = append(placements, Placement{Position: 2, Competitor: *runnerUp})
	}

	payouts, err := s.payoutRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payouts for tournament %d: %w", tournamentID, err)
	}

	credits, prizesPaid, err := s.buildCredits(ctx, tournament, placements, payouts)
	if err != nil {
		return nil, err
	}

	hostProfit := tournament.Collected - tournament.PrizePool
	if hostProfit < 0 {
		hostProfit = 0
	}
	if hostProfit > 0 {
		credits = append(credits, ledger.Credit{
			RecipientUserID: tournament.HostID,
			Amount:          hostProfit,
			Category:        ledger.CategoryHostProfit,
			Memo:            fmt.Sprintf("Host profit for tournament %q", tournament.Name),
			Reference:       fmt.Sprintf("profit:%d", tournamentID),
			Metadata:        map[string]interface{}{"tournament_id": tournamentID},
		})
	}

	err = s.tx.Run(ctx, func(tx *sql.Tx) error {
		// The CAS flip is the settlement lock: losing it means another
		// settlement already ran (or is committing).
		flipped, err := s.tournamentRepo.CompleteIfOngoing(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if !flipped {
			return ErrTournamentNotOngoing
		}
		for _, credit := range credits {
			if err := s.ledger.Credit(ctx, tx, credit); err != nil {
				return err
			}
		}
		return s.tournamentRepo.SetHostProfit(ctx, tx, tournamentID, hostProfit)
	})
	if err != nil {
		if errors.Is(err, ErrTournamentNotOngoing) {
			return nil, err
		}
		return nil, fmt.Errorf("settlement failed for tournament %d: %w", tournamentID, err)
	}

	s.logger.Info("tournament settled",
		slog.Int("tournament_id", tournamentID),
		slog.Int64("prizes_paid", prizesPaid),
		slog.Int64("host_profit", hostProfit),
		slog.Int("credits", len(credits)),
	)

	result := &SettlementResult{
		TournamentID:   tournamentID,
		Placements:     placements,
		PrizesPaid:     prizesPaid,
		HostProfit:     hostProfit,
		CreditsApplied: len(credits),
	}
	if s.hub != nil {
		s.hub.BroadcastToRoom(brackets.RoomID(tournamentID), brackets.Event{
			Type:    brackets.EventTournamentCompleted,
			Payload: result,
		})
	}
	return result, nil
}

// buildCredits resolves every payout tier into concrete ledger credits
// before the transaction opens, so roster lookups cannot fail halfway
// through a payout run. Tiers without a ranked placement are skipped.
func (s *settlementService) buildCredits(
	ctx context.Context,
	tournament *models.Tournament,
	placements []Placement,
	payouts []*models.Payout,
) ([]ledger.Credit, int64, error) {
	ranked := make(map[int]models.Competitor, len(placements))
	for _, p := range placements {
		ranked[p.Position] = p.Competitor
	}

	credits := make([]ledger.Credit, 0, len(payouts))
	var prizesPaid int64

	for _, payout := range payouts {
		winner, ok := ranked[payout.Position]
		if !ok {
			continue
		}
		if payout.Amount <= 0 {
			continue
		}

		switch winner.Kind {
		case models.CompetitorUser:
			credits = append(credits, ledger.Credit{
				RecipientUserID: winner.ID,
				Amount:          payout.Amount,
				Category:        ledger.CategoryPrize,
				Memo:            fmt.Sprintf("Prize for position %d in %q", payout.Position, tournament.Name),
				Reference:       fmt.Sprintf("pay:%d:%d:%d", tournament.ID, payout.Position, winner.ID),
				Metadata: map[string]interface{}{
					"tournament_id": tournament.ID,
					"position":      payout.Position,
				},
			})
			prizesPaid += payout.Amount

		case models.CompetitorTeam:
			team, err := s.teamRepo.GetByID(ctx, winner.ID)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to load team %d: %w", winner.ID, err)
			}
			members, err := s.teamRepo.ListMembers(ctx, winner.ID)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to load roster for team %d: %w", winner.ID, err)
			}
			shares, withheld, err := splitTeamPrize(payout.Amount, members, s.captainBonusPercent)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to split prize for team %d: %w", winner.ID, err)
			}
			if withheld > 0 {
				s.logger.Warn("prize remainder withheld",
					slog.Int("tournament_id", tournament.ID),
					slog.Int("team_id", winner.ID),
					slog.Int("position", payout.Position),
					slog.Int64("withheld", withheld),
				)
			}
			for _, share := range shares {
				// Floor division can zero out every share when the tier
				// is small relative to the roster; the full amount is
				// already counted as withheld, so there is nothing to
				// credit.
				if share.Amount <= 0 {
					continue
				}
				memo := fmt.Sprintf("Prize share for team %q, position %d in %q", team.Name, payout.Position, tournament.Name)
				if share.IsCaptain {
					memo = fmt.Sprintf("Prize share (captain) for team %q, position %d in %q", team.Name, payout.Position, tournament.Name)
				}
				credits = append(credits, ledger.Credit{
					RecipientUserID: share.UserID,
					Amount:          share.Amount,
					Category:        ledger.CategoryPrize,
					Memo:            memo,
					Reference:       fmt.Sprintf("pay:%d:%d:%d", tournament.ID, payout.Position, share.UserID),
					Metadata: map[string]interface{}{
						"tournament_id": tournament.ID,
						"position":      payout.Position,
						"team_id":       winner.ID,
					},
				})
				prizesPaid += share.Amount
			}

		default:
			return nil, 0, fmt.Errorf("unknown competitor kind %q at position %d", winner.Kind, payout.Position)
		}
	}

	return credits, prizesPaid, nil
}
