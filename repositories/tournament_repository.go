package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenaforge/tournament-engine/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
	// CompleteIfOngoing flips the status ONGOING -> COMPLETED as a
	// compare-and-swap. It reports false when the tournament was not
	// ONGOING anymore, which is how concurrent settlements lose the race.
	CompleteIfOngoing(ctx context.Context, exec SQLExecutor, id int) (bool, error)
	SetHostProfit(ctx context.Context, exec SQLExecutor, id int, profit int64) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, host_id, type, status, collected, prize_pool, host_profit, created_at`

func scanTournament(row interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.HostID,
		&t.Type,
		&t.Status,
		&t.Collected,
		&t.PrizePool,
		&t.HostProfit,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) CompleteIfOngoing(ctx context.Context, exec SQLExecutor, id int) (bool, error) {
	query := `UPDATE tournaments SET status = $1 WHERE id = $2 AND status = $3`

	result, err := exec.ExecContext(ctx, query, models.StatusCompleted, id, models.StatusOngoing)
	if err != nil {
		return false, fmt.Errorf("failed to complete tournament %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected == 1, nil
}

func (r *postgresTournamentRepository) SetHostProfit(ctx context.Context, exec SQLExecutor, id int, profit int64) error {
	// host_profit is written once; a second write means a settlement
	// slipped past the status guard and must fail loudly.
	query := `UPDATE tournaments SET host_profit = $1 WHERE id = $2 AND host_profit IS NULL`

	result, err := exec.ExecContext(ctx, query, profit, id)
	if err != nil {
		return fmt.Errorf("failed to set host profit for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
