package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenaforge/tournament-engine/models"
)

var ErrTeamNotFound = errors.New("team not found")

// TeamRepository resolves rosters for prize distribution. Read-only.
type TeamRepository interface {
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, name, created_at FROM teams WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&team.ID, &team.Name, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team %d: %w", id, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) ListMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	query := `
		SELECT team_id, user_id, role
		FROM team_members
		WHERE team_id = $1
		ORDER BY user_id ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members for team %d: %w", teamID, err)
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		var m models.TeamMember
		if scanErr := rows.Scan(&m.TeamID, &m.UserID, &m.Role); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team member row: %w", scanErr)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team member rows iteration: %w", err)
	}
	return members, nil
}
