package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/arenaforge/tournament-engine/brackets"
	"github.com/arenaforge/tournament-engine/ledger"
	"github.com/arenaforge/tournament-engine/models"
	"github.com/arenaforge/tournament-engine/repositories"
)

// passthroughTxRunner executes the unit of work without a database, so
// service rules can be exercised against in-memory repositories.
type passthroughTxRunner struct{}

func (passthroughTxRunner) Run(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTournamentRepo struct {
	tournament    *models.Tournament
	completeOK    bool
	completeCalls int
	hostProfit    *int64
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if f.tournament == nil || f.tournament.ID != id {
		return nil, repositories.ErrTournamentNotFound
	}
	t := *f.tournament
	return &t, nil
}

func (f *fakeTournamentRepo) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	return nil, nil
}

func (f *fakeTournamentRepo) CompleteIfOngoing(ctx context.Context, exec repositories.SQLExecutor, id int) (bool, error) {
	f.completeCalls++
	return f.completeOK, nil
}

func (f *fakeTournamentRepo) SetHostProfit(ctx context.Context, exec repositories.SQLExecutor, id int, profit int64) error {
	f.hostProfit = &profit
	return nil
}

type slotWrite struct {
	matchID    int
	slot       brackets.Slot
	competitor models.Competitor
}

type fakeMatchRepo struct {
	matches     map[int]*models.Match
	final       *models.Match
	completeErr error
	// onComplete runs before CompleteWithResult returns, simulating a
	// concurrent writer between the service's read and its update.
	onComplete func()
	completed  []int
	slotWrites []slotWrite
}

func (f *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	return nil
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	return nil, nil
}

func (f *fakeMatchRepo) GetByCoordinates(ctx context.Context, exec repositories.SQLExecutor, tournamentID, round, matchNumber int) (*models.Match, error) {
	for _, m := range f.matches {
		if m.TournamentID == tournamentID && m.Round == round && m.MatchNumber == matchNumber {
			copied := *m
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (f *fakeMatchRepo) GetFinal(ctx context.Context, tournamentID int) (*models.Match, error) {
	if f.final == nil {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *f.final
	return &copied, nil
}

func (f *fakeMatchRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	return nil
}

func (f *fakeMatchRepo) CompleteWithResult(ctx context.Context, exec repositories.SQLExecutor, id int, scoreA, scoreB int, winner models.Competitor) error {
	if f.onComplete != nil {
		f.onComplete()
	}
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeMatchRepo) SetSlot(ctx context.Context, exec repositories.SQLExecutor, id int, slot brackets.Slot, competitor models.Competitor) error {
	f.slotWrites = append(f.slotWrites, slotWrite{matchID: id, slot: slot, competitor: competitor})
	return nil
}

func (f *fakeMatchRepo) SetProofURL(ctx context.Context, id int, proofURL string) error {
	return nil
}

type fakePayoutRepo struct {
	payouts []*models.Payout
}

func (f *fakePayoutRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Payout, error) {
	return f.payouts, nil
}

type fakeTeamRepo struct {
	team    *models.Team
	members []models.TeamMember
}

func (f *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	if f.team == nil || f.team.ID != id {
		return nil, repositories.ErrTeamNotFound
	}
	return f.team, nil
}

func (f *fakeTeamRepo) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	return f.members, nil
}

type fakeLedger struct {
	credits       []ledger.Credit
	failReference string
}

func (f *fakeLedger) Credit(ctx context.Context, exec repositories.SQLExecutor, credit ledger.Credit) error {
	if f.failReference != "" && credit.Reference == f.failReference {
		return fmt.Errorf("%w: simulated outage", ledger.ErrCreditFailed)
	}
	f.credits = append(f.credits, credit)
	return nil
}
