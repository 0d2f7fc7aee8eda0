package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arenaforge/tournament-engine/models"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx, so repository
// methods can run inside a caller-owned transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// competitorFromColumns rebuilds a nullable competitor from its
// kind/id column pair.
func competitorFromColumns(kind sql.NullString, id sql.NullInt64) *models.Competitor {
	if !kind.Valid || !id.Valid {
		return nil
	}
	return &models.Competitor{Kind: models.CompetitorKind(kind.String), ID: int(id.Int64)}
}

func competitorToColumns(c *models.Competitor) (interface{}, interface{}) {
	if c == nil {
		return nil, nil
	}
	return string(c.Kind), c.ID
}
