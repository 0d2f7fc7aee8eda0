package models

import "time"

type TeamRole string

const (
	RoleCaptain TeamRole = "CAPTAIN"
	RolePlayer  TeamRole = "PLAYER"
)

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Members []TeamMember `json:"members,omitempty" db:"-"`
}

type TeamMember struct {
	TeamID int      `json:"team_id" db:"team_id"`
	UserID int      `json:"user_id" db:"user_id"`
	Role   TeamRole `json:"role" db:"role"`
}
