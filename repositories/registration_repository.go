package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arenaforge/tournament-engine/models"
)

// RegistrationRepository is read-only: registrations are produced by
// the payment intake flow, which lives outside this service.
type RegistrationRepository interface {
	ListConfirmedByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) ListConfirmedByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error) {
	query := `
		SELECT r.id, r.tournament_id, r.user_id, r.team_id, r.status, r.created_at,
		       u.nickname, t.name
		FROM registrations r
		LEFT JOIN users u ON u.id = r.user_id
		LEFT JOIN teams t ON t.id = r.team_id
		WHERE r.tournament_id = $1 AND r.status = $2
		ORDER BY r.id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, models.RegistrationConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0)
	for rows.Next() {
		var (
			reg              models.Registration
			userID, teamID   sql.NullInt64
			nickname, teamNm sql.NullString
		)
		if scanErr := rows.Scan(
			&reg.ID,
			&reg.TournamentID,
			&userID,
			&teamID,
			&reg.Status,
			&reg.CreatedAt,
			&nickname,
			&teamNm,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", scanErr)
		}

		switch {
		case userID.Valid:
			reg.Competitor = models.UserCompetitor(int(userID.Int64))
			if nickname.Valid {
				reg.User = &models.User{ID: int(userID.Int64), Nickname: nickname.String}
			}
		case teamID.Valid:
			reg.Competitor = models.TeamCompetitor(int(teamID.Int64))
			if teamNm.Valid {
				reg.Team = &models.Team{ID: int(teamID.Int64), Name: teamNm.String}
			}
		default:
			return nil, fmt.Errorf("registration %d has neither user nor team", reg.ID)
		}

		registrations = append(registrations, &reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during registration rows iteration: %w", err)
	}
	return registrations, nil
}
