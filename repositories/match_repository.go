package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenaforge/tournament-engine/brackets"
	"github.com/arenaforge/tournament-engine/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match references an unknown tournament")
	ErrMatchCoordinateTaken   = errors.New("a match already exists at this bracket coordinate")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// GetByCoordinates locates the match at (tournament, round,
	// matchNumber), the addressing scheme winners advance through.
	GetByCoordinates(ctx context.Context, exec SQLExecutor, tournamentID, round, matchNumber int) (*models.Match, error)
	// GetFinal returns the match with the highest round.
	GetFinal(ctx context.Context, tournamentID int) (*models.Match, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
	CompleteWithResult(ctx context.Context, exec SQLExecutor, id int, scoreA, scoreB int, winner models.Competitor) error
	SetSlot(ctx context.Context, exec SQLExecutor, id int, slot brackets.Slot, competitor models.Competitor) error
	SetProofURL(ctx context.Context, id int, proofURL string) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, round, match_number,
	slot_a_kind, slot_a_id, slot_b_kind, slot_b_id,
	winner_kind, winner_id, score_a, score_b, status, proof_url, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	var (
		slotAKind, slotBKind, winnerKind sql.NullString
		slotAID, slotBID, winnerID       sql.NullInt64
	)
	err := row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.Round,
		&m.MatchNumber,
		&slotAKind,
		&slotAID,
		&slotBKind,
		&slotBID,
		&winnerKind,
		&winnerID,
		&m.ScoreA,
		&m.ScoreB,
		&m.Status,
		&m.ProofURL,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.SlotA = competitorFromColumns(slotAKind, slotAID)
	m.SlotB = competitorFromColumns(slotBKind, slotBID)
	m.Winner = competitorFromColumns(winnerKind, winnerID)
	return m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, round, match_number,
			 slot_a_kind, slot_a_id, slot_b_kind, slot_b_id,
			 winner_kind, winner_id, score_a, score_b, status, proof_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	slotAKind, slotAID := competitorToColumns(match.SlotA)
	slotBKind, slotBID := competitorToColumns(match.SlotB)
	winnerKind, winnerID := competitorToColumns(match.Winner)

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.Round,
		match.MatchNumber,
		slotAKind,
		slotAID,
		slotBKind,
		slotBID,
		winnerKind,
		winnerID,
		match.ScoreA,
		match.ScoreB,
		match.Status,
		match.ProofURL,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		ORDER BY round ASC, match_number ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) GetByCoordinates(ctx context.Context, exec SQLExecutor, tournamentID, round, matchNumber int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1 AND round = $2 AND match_number = $3`

	m, err := scanMatch(exec.QueryRowContext(ctx, query, tournamentID, round, matchNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match at (%d, r%d, m%d): %w", tournamentID, round, matchNumber, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) GetFinal(ctx context.Context, tournamentID int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		ORDER BY round DESC, match_number ASC
		LIMIT 1`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, tournamentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan final match for tournament %d: %w", tournamentID, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `DELETE FROM matches WHERE tournament_id = $1`
	if _, err := exec.ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to delete matches for tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresMatchRepository) CompleteWithResult(ctx context.Context, exec SQLExecutor, id int, scoreA, scoreB int, winner models.Competitor) error {
	// The status predicate makes the write race-safe: a concurrent
	// submission on the same match sees zero affected rows.
	query := `
		UPDATE matches
		SET score_a = $1, score_b = $2, winner_kind = $3, winner_id = $4, status = $5
		WHERE id = $6 AND status = $7`

	result, err := exec.ExecContext(ctx, query,
		scoreA, scoreB, string(winner.Kind), winner.ID,
		models.MatchCompleted, id, models.MatchScheduled,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetSlot(ctx context.Context, exec SQLExecutor, id int, slot brackets.Slot, competitor models.Competitor) error {
	var query string
	if slot == brackets.SlotA {
		query = `UPDATE matches SET slot_a_kind = $1, slot_a_id = $2 WHERE id = $3`
	} else {
		query = `UPDATE matches SET slot_b_kind = $1, slot_b_id = $2 WHERE id = $3`
	}

	result, err := exec.ExecContext(ctx, query, string(competitor.Kind), competitor.ID, id)
	if err != nil {
		return fmt.Errorf("failed to set slot %d of match %d: %w", slot, id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetProofURL(ctx context.Context, id int, proofURL string) error {
	query := `UPDATE matches SET proof_url = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, proofURL, id)
	if err != nil {
		return fmt.Errorf("failed to set proof url for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_tournament_id_round_match_number_key":
			return ErrMatchCoordinateTaken
		}
	}
	return err
}
