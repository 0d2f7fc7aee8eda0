package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arenaforge/tournament-engine/models"
)

// PayoutRepository reads declared prize tiers; tiers are created by
// tournament setup.
type PayoutRepository interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Payout, error)
}

type postgresPayoutRepository struct {
	db *sql.DB
}

func NewPostgresPayoutRepository(db *sql.DB) PayoutRepository {
	return &postgresPayoutRepository{db: db}
}

func (r *postgresPayoutRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Payout, error) {
	query := `
		SELECT id, tournament_id, position, amount
		FROM payouts
		WHERE tournament_id = $1
		ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payouts for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	payouts := make([]*models.Payout, 0)
	for rows.Next() {
		var p models.Payout
		if scanErr := rows.Scan(&p.ID, &p.TournamentID, &p.Position, &p.Amount); scanErr != nil {
			return nil, fmt.Errorf("failed to scan payout row: %w", scanErr)
		}
		payouts = append(payouts, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during payout rows iteration: %w", err)
	}
	return payouts, nil
}
