package models

import "time"

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationConfirmed RegistrationStatus = "CONFIRMED"
	RegistrationRejected  RegistrationStatus = "REJECTED"
)

// Registration is a confirmed participant unit, produced by the payment
// intake flow. This subsystem only ever reads registrations.
type Registration struct {
	ID           int                `json:"id" db:"id"`
	TournamentID int                `json:"tournament_id" db:"tournament_id"`
	Competitor   Competitor         `json:"competitor"`
	Status       RegistrationStatus `json:"status" db:"status"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
	Team *Team `json:"team,omitempty" db:"-"`
}
