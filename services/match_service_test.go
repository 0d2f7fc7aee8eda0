package services

import (
	"context"
	"testing"

	"github.com/arenaforge/tournament-engine/brackets"
	"github.com/arenaforge/tournament-engine/models"
	"github.com/arenaforge/tournament-engine/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatchServiceForTest(matchRepo *fakeMatchRepo, tournamentRepo *fakeTournamentRepo) *matchService {
	return &matchService{
		tx:             passthroughTxRunner{},
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		logger:         discardLogger(),
	}
}

func soloTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{
		tournament: &models.Tournament{
			ID: 1, HostID: 9, Type: models.TournamentSolo, Status: models.StatusOngoing,
		},
	}
}

func scheduledMatch(id, round, number int, slotAID, slotBID int) *models.Match {
	a := models.UserCompetitor(slotAID)
	b := models.UserCompetitor(slotBID)
	return &models.Match{
		ID: id, TournamentID: 1, Round: round, MatchNumber: number,
		SlotA: &a, SlotB: &b, Status: models.MatchScheduled,
	}
}

func TestSubmitResultAdvancesWinner(t *testing.T) {
	matchRepo := &fakeMatchRepo{matches: map[int]*models.Match{
		10: scheduledMatch(10, 1, 1, 1, 2),
		20: {ID: 20, TournamentID: 1, Round: 2, MatchNumber: 1, Status: models.MatchScheduled},
	}}
	svc := newMatchServiceForTest(matchRepo, soloTournamentRepo())

	match, err := svc.SubmitResult(context.Background(), hostCaller(), 10, SubmitResultInput{
		ScoreA: 2, ScoreB: 1, WinnerID: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, models.MatchCompleted, match.Status)
	require.NotNil(t, match.Winner)
	assert.Equal(t, models.UserCompetitor(1), *match.Winner)

	assert.Equal(t, []int{10}, matchRepo.completed)
	require.Len(t, matchRepo.slotWrites, 1)
	assert.Equal(t, 20, matchRepo.slotWrites[0].matchID)
	assert.Equal(t, brackets.SlotA, matchRepo.slotWrites[0].slot)
	assert.Equal(t, models.UserCompetitor(1), matchRepo.slotWrites[0].competitor)
}

func TestSubmitResultFinalHasNoParent(t *testing.T) {
	matchRepo := &fakeMatchRepo{matches: map[int]*models.Match{
		30: scheduledMatch(30, 2, 1, 1, 3),
	}}
	svc := newMatchServiceForTest(matchRepo, soloTournamentRepo())

	_, err := svc.SubmitResult(context.Background(), hostCaller(), 30, SubmitResultInput{
		ScoreA: 0, ScoreB: 2, WinnerID: 3,
	})
	require.NoError(t, err)
	assert.Empty(t, matchRepo.slotWrites)
}

func TestSubmitResultRejectsResubmission(t *testing.T) {
	done := scheduledMatch(10, 1, 1, 1, 2)
	done.Status = models.MatchCompleted
	done.Winner = done.SlotA
	matchRepo := &fakeMatchRepo{matches: map[int]*models.Match{10: done}}
	svc := newMatchServiceForTest(matchRepo, soloTournamentRepo())

	_, err := svc.SubmitResult(context.Background(), hostCaller(), 10, SubmitResultInput{WinnerID: 2})
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)
	assert.Empty(t, matchRepo.completed)
}

func TestSubmitResultRejectsUnreadyMatch(t *testing.T) {
	a := models.UserCompetitor(1)
	matchRepo := &fakeMatchRepo{matches: map[int]*models.Match{
		20: {ID: 20, TournamentID: 1, Round: 2, MatchNumber: 1, SlotA: &a, Status: models.MatchScheduled},
	}}
	svc := newMatchServiceForTest(matchRepo, soloTournamentRepo())

	_, err := svc.SubmitResult(context.Background(), hostCaller(), 20, SubmitResultInput{WinnerID: 1})
	assert.ErrorIs(t, err, ErrMatchNotReady)
}

func TestSubmitResultRejectsForeignWinner(t *testing.T) {
	matchRepo := &fakeMatchRepo{matches: map[int]*models.Match{
		10: scheduledMatch(10, 1, 1, 1, 2),
	}}
	svc := newMatchServiceForTest(matchRepo, soloTournamentRepo())

	_, err := svc.SubmitResult(context.Background(), hostCaller(), 10, SubmitResultInput{WinnerID: 99})
	assert.ErrorIs(t, err, ErrWinnerNotInMatch)
	assert.Empty(t, matchRepo.completed)
}

func TestSubmitResultForbiddenForNonHost(t *testing.T) {
	matchRepo := &fakeMatchRepo{matches: map[int]*models.Match{
		10: scheduledMatch(10, 1, 1, 1, 2),
	}}
	svc := newMatchServiceForTest(matchRepo, soloTournamentRepo())

	_, err := svc.SubmitResult(context.Background(), Caller{UserID: 7, Role: models.UserRolePlayer}, 10, SubmitResultInput{WinnerID: 1})
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestSubmitResultConcurrentCompletionConflicts(t *testing.T) {
	// Zero rows from the guarded update while the row still exists means
	// another submission completed the match between our read and write.
	matchRepo := &fakeMatchRepo{
		matches:     map[int]*models.Match{10: scheduledMatch(10, 1, 1, 1, 2)},
		completeErr: repositories.ErrMatchNotFound,
	}
	svc := newMatchServiceForTest(matchRepo, soloTournamentRepo())

	_, err := svc.SubmitResult(context.Background(), hostCaller(), 10, SubmitResultInput{WinnerID: 1})
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)
}

func TestSubmitResultDeletedMatchIsNotFound(t *testing.T) {
	// A bracket regeneration can delete the row mid-submission; that is
	// a missing match, not a duplicate result.
	matchRepo := &fakeMatchRepo{
		matches:     map[int]*models.Match{10: scheduledMatch(10, 1, 1, 1, 2)},
		completeErr: repositories.ErrMatchNotFound,
	}
	matchRepo.onComplete = func() {
		delete(matchRepo.matches, 10)
	}
	svc := newMatchServiceForTest(matchRepo, soloTournamentRepo())

	_, err := svc.SubmitResult(context.Background(), hostCaller(), 10, SubmitResultInput{WinnerID: 1})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestSubmitResultRegeneratedMatchIsNotFound(t *testing.T) {
	// Regeneration may recreate a row at the same coordinates with a new
	// id; the original submission target is still gone.
	matchRepo := &fakeMatchRepo{
		matches:     map[int]*models.Match{10: scheduledMatch(10, 1, 1, 1, 2)},
		completeErr: repositories.ErrMatchNotFound,
	}
	matchRepo.onComplete = func() {
		delete(matchRepo.matches, 10)
		matchRepo.matches[11] = scheduledMatch(11, 1, 1, 3, 4)
	}
	svc := newMatchServiceForTest(matchRepo, soloTournamentRepo())

	_, err := svc.SubmitResult(context.Background(), hostCaller(), 10, SubmitResultInput{WinnerID: 1})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
