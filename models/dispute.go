package models

import "time"

// Dispute is raised against a match result. The resolution workflow
// lives outside this service; disputes are only surfaced alongside
// match details.
type Dispute struct {
	ID        int       `json:"id" db:"id"`
	MatchID   int       `json:"match_id" db:"match_id"`
	RaisedBy  int       `json:"raised_by" db:"raised_by"`
	Reason    string    `json:"reason" db:"reason"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
