package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arenaforge/tournament-engine/models"
)

// DisputeRepository lists disputes attached to a match; the dispute
// workflow itself is handled elsewhere.
type DisputeRepository interface {
	ListByMatch(ctx context.Context, matchID int) ([]models.Dispute, error)
}

type postgresDisputeRepository struct {
	db *sql.DB
}

func NewPostgresDisputeRepository(db *sql.DB) DisputeRepository {
	return &postgresDisputeRepository{db: db}
}

func (r *postgresDisputeRepository) ListByMatch(ctx context.Context, matchID int) ([]models.Dispute, error) {
	query := `
		SELECT id, match_id, raised_by, reason, status, created_at
		FROM disputes
		WHERE match_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query disputes for match %d: %w", matchID, err)
	}
	defer rows.Close()

	disputes := make([]models.Dispute, 0)
	for rows.Next() {
		var d models.Dispute
		if scanErr := rows.Scan(&d.ID, &d.MatchID, &d.RaisedBy, &d.Reason, &d.Status, &d.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan dispute row: %w", scanErr)
		}
		disputes = append(disputes, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during dispute rows iteration: %w", err)
	}
	return disputes, nil
}
