package services

import (
	"context"
	"testing"

	"github.com/arenaforge/tournament-engine/ledger"
	"github.com/arenaforge/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettlementForTest(
	tournamentRepo *fakeTournamentRepo,
	matchRepo *fakeMatchRepo,
	payoutRepo *fakePayoutRepo,
	teamRepo *fakeTeamRepo,
	ledgerService *fakeLedger,
	bonusPercent int,
) *settlementService {
	return &settlementService{
		tx:                  passthroughTxRunner{},
		tournamentRepo:      tournamentRepo,
		matchRepo:           matchRepo,
		payoutRepo:          payoutRepo,
		teamRepo:            teamRepo,
		ledger:              ledgerService,
		captainBonusPercent: bonusPercent,
		logger:              discardLogger(),
	}
}

func hostCaller() Caller {
	return Caller{UserID: 9, Role: models.UserRoleHost}
}

func soloFinal(winnerID, runnerUpID int) *models.Match {
	a := models.UserCompetitor(winnerID)
	b := models.UserCompetitor(runnerUpID)
	return &models.Match{
		ID: 30, TournamentID: 1, Round: 2, MatchNumber: 1,
		SlotA: &a, SlotB: &b, Winner: &a,
		Status: models.MatchCompleted,
	}
}

func TestCompleteTournamentPaysTiersAndProfit(t *testing.T) {
	tournamentRepo := &fakeTournamentRepo{
		tournament: &models.Tournament{
			ID: 1, HostID: 9, Type: models.TournamentSolo,
			Status: models.StatusOngoing, Collected: 2000, PrizePool: 1000,
		},
		completeOK: true,
	}
	matchRepo := &fakeMatchRepo{final: soloFinal(50, 60)}
	payoutRepo := &fakePayoutRepo{payouts: []*models.Payout{
		{TournamentID: 1, Position: 1, Amount: 600},
		{TournamentID: 1, Position: 2, Amount: 400},
	}}
	ledgerService := &fakeLedger{}
	svc := newSettlementForTest(tournamentRepo, matchRepo, payoutRepo, &fakeTeamRepo{}, ledgerService, 10)

	result, err := svc.CompleteTournament(context.Background(), hostCaller(), 1)
	require.NoError(t, err)

	require.Len(t, result.Placements, 2)
	assert.Equal(t, models.UserCompetitor(50), result.Placements[0].Competitor)
	assert.Equal(t, models.UserCompetitor(60), result.Placements[1].Competitor)
	assert.Equal(t, int64(1000), result.PrizesPaid)
	assert.Equal(t, int64(1000), result.HostProfit)

	require.Len(t, ledgerService.credits, 3)
	assert.Equal(t, "pay:1:1:50", ledgerService.credits[0].Reference)
	assert.Equal(t, "pay:1:2:60", ledgerService.credits[1].Reference)
	assert.Equal(t, "profit:1", ledgerService.credits[2].Reference)
	assert.Equal(t, ledger.CategoryHostProfit, ledgerService.credits[2].Category)

	require.NotNil(t, tournamentRepo.hostProfit)
	assert.Equal(t, int64(1000), *tournamentRepo.hostProfit)
}

func TestCompleteTournamentSkipsZeroValueShares(t *testing.T) {
	// A tier of 2 over a 3-member roster floors every share to zero.
	// Those shares must never reach the ledger, which rejects
	// non-positive amounts and would abort the whole settlement.
	tournamentRepo := &fakeTournamentRepo{
		tournament: &models.Tournament{
			ID: 1, HostID: 9, Type: models.TournamentTeam,
			Status: models.StatusOngoing, Collected: 1000, PrizePool: 2,
		},
		completeOK: true,
	}
	a := models.TeamCompetitor(5)
	b := models.TeamCompetitor(6)
	matchRepo := &fakeMatchRepo{final: &models.Match{
		ID: 30, TournamentID: 1, Round: 2, MatchNumber: 1,
		SlotA: &a, SlotB: &b, Winner: &a,
		Status: models.MatchCompleted,
	}}
	payoutRepo := &fakePayoutRepo{payouts: []*models.Payout{
		{TournamentID: 1, Position: 1, Amount: 2},
	}}
	teamRepo := &fakeTeamRepo{
		team: &models.Team{ID: 5, Name: "Night Owls"},
		members: []models.TeamMember{
			{TeamID: 5, UserID: 100, Role: models.RoleCaptain},
			{TeamID: 5, UserID: 101, Role: models.RolePlayer},
			{TeamID: 5, UserID: 102, Role: models.RolePlayer},
		},
	}
	ledgerService := &fakeLedger{}
	svc := newSettlementForTest(tournamentRepo, matchRepo, payoutRepo, teamRepo, ledgerService, 10)

	result, err := svc.CompleteTournament(context.Background(), hostCaller(), 1)
	require.NoError(t, err)

	assert.Zero(t, result.PrizesPaid)
	assert.Equal(t, int64(998), result.HostProfit)

	require.Len(t, ledgerService.credits, 1, "only the host profit credit should reach the ledger")
	assert.Equal(t, "profit:1", ledgerService.credits[0].Reference)
	for _, credit := range ledgerService.credits {
		assert.Positive(t, credit.Amount)
	}
	require.NotNil(t, tournamentRepo.hostProfit)
	assert.Equal(t, int64(998), *tournamentRepo.hostProfit)
}

func TestCompleteTournamentLosesStatusRace(t *testing.T) {
	// The compare-and-swap fails when a concurrent settlement got there
	// first; nothing may be credited.
	tournamentRepo := &fakeTournamentRepo{
		tournament: &models.Tournament{
			ID: 1, HostID: 9, Type: models.TournamentSolo,
			Status: models.StatusOngoing, Collected: 1000, PrizePool: 500,
		},
		completeOK: false,
	}
	matchRepo := &fakeMatchRepo{final: soloFinal(50, 60)}
	payoutRepo := &fakePayoutRepo{payouts: []*models.Payout{
		{TournamentID: 1, Position: 1, Amount: 500},
	}}
	ledgerService := &fakeLedger{}
	svc := newSettlementForTest(tournamentRepo, matchRepo, payoutRepo, &fakeTeamRepo{}, ledgerService, 10)

	_, err := svc.CompleteTournament(context.Background(), hostCaller(), 1)
	assert.ErrorIs(t, err, ErrTournamentNotOngoing)
	assert.Equal(t, 1, tournamentRepo.completeCalls)
	assert.Empty(t, ledgerService.credits)
	assert.Nil(t, tournamentRepo.hostProfit)
}

func TestCompleteTournamentCreditFailureAborts(t *testing.T) {
	tournamentRepo := &fakeTournamentRepo{
		tournament: &models.Tournament{
			ID: 1, HostID: 9, Type: models.TournamentSolo,
			Status: models.StatusOngoing, Collected: 1000, PrizePool: 1000,
		},
		completeOK: true,
	}
	matchRepo := &fakeMatchRepo{final: soloFinal(50, 60)}
	payoutRepo := &fakePayoutRepo{payouts: []*models.Payout{
		{TournamentID: 1, Position: 1, Amount: 600},
		{TournamentID: 1, Position: 2, Amount: 400},
	}}
	ledgerService := &fakeLedger{failReference: "pay:1:2:60"}
	svc := newSettlementForTest(tournamentRepo, matchRepo, payoutRepo, &fakeTeamRepo{}, ledgerService, 10)

	_, err := svc.CompleteTournament(context.Background(), hostCaller(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrCreditFailed)
	assert.Nil(t, tournamentRepo.hostProfit, "host profit must not be written after a failed credit")
}

func TestCompleteTournamentRejectsNonOngoingStatus(t *testing.T) {
	for _, status := range []models.TournamentStatus{models.StatusScheduled, models.StatusCompleted} {
		tournamentRepo := &fakeTournamentRepo{
			tournament: &models.Tournament{
				ID: 1, HostID: 9, Type: models.TournamentSolo, Status: status,
			},
			completeOK: true,
		}
		matchRepo := &fakeMatchRepo{final: soloFinal(50, 60)}
		svc := newSettlementForTest(tournamentRepo, matchRepo, &fakePayoutRepo{}, &fakeTeamRepo{}, &fakeLedger{}, 10)

		_, err := svc.CompleteTournament(context.Background(), hostCaller(), 1)
		assert.ErrorIs(t, err, ErrTournamentNotOngoing, "status %s", status)
	}
}

func TestCompleteTournamentRequiresCompletedFinal(t *testing.T) {
	tournamentRepo := &fakeTournamentRepo{
		tournament: &models.Tournament{
			ID: 1, HostID: 9, Type: models.TournamentSolo, Status: models.StatusOngoing,
		},
		completeOK: true,
	}

	pending := soloFinal(50, 60)
	pending.Status = models.MatchScheduled
	pending.Winner = nil

	for name, matchRepo := range map[string]*fakeMatchRepo{
		"pending final": {final: pending},
		"no bracket":    {},
	} {
		svc := newSettlementForTest(tournamentRepo, matchRepo, &fakePayoutRepo{}, &fakeTeamRepo{}, &fakeLedger{}, 10)
		_, err := svc.CompleteTournament(context.Background(), hostCaller(), 1)
		assert.ErrorIs(t, err, ErrFinalNotCompleted, name)
	}
}

func TestCompleteTournamentForbiddenForOtherHost(t *testing.T) {
	tournamentRepo := &fakeTournamentRepo{
		tournament: &models.Tournament{
			ID: 1, HostID: 9, Type: models.TournamentSolo, Status: models.StatusOngoing,
		},
	}
	svc := newSettlementForTest(tournamentRepo, &fakeMatchRepo{}, &fakePayoutRepo{}, &fakeTeamRepo{}, &fakeLedger{}, 10)

	_, err := svc.CompleteTournament(context.Background(), Caller{UserID: 7, Role: models.UserRoleHost}, 1)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}
