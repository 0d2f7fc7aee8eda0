package models

import "time"

// UserRole as carried in JWT claims. Hosts run tournaments, admins may
// act on any tournament.
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleHost   UserRole = "host"
	UserRolePlayer UserRole = "player"
)

type User struct {
	ID        int       `json:"id" db:"id"`
	Nickname  string    `json:"nickname" db:"nickname"`
	Role      UserRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
