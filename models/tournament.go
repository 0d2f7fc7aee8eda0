package models

import "time"

// TournamentType determines who competes: individual players or teams.
type TournamentType string

const (
	TournamentSolo TournamentType = "SOLO"
	TournamentTeam TournamentType = "TEAM"
)

// TournamentStatus mirrors the ENUM in the DB. The status only ever
// moves forward; the transition to COMPLETED happens exclusively inside
// the settlement transaction.
type TournamentStatus string

const (
	StatusScheduled TournamentStatus = "SCHEDULED"
	StatusOngoing   TournamentStatus = "ONGOING"
	StatusCompleted TournamentStatus = "COMPLETED"
)

// Tournament holds money amounts in minor units (cents). HostProfit is
// written exactly once, during settlement.
type Tournament struct {
	ID         int              `json:"id" db:"id"`
	Name       string           `json:"name" db:"name"`
	HostID     int              `json:"host_id" db:"host_id"`
	Type       TournamentType   `json:"type" db:"type"`
	Status     TournamentStatus `json:"status" db:"status"`
	Collected  int64            `json:"collected" db:"collected"`
	PrizePool  int64            `json:"prize_pool" db:"prize_pool"`
	HostProfit *int64           `json:"host_profit,omitempty" db:"host_profit"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`

	Matches []Match  `json:"matches,omitempty" db:"-"`
	Payouts []Payout `json:"payouts,omitempty" db:"-"`
}

func IsValidStatusTransition(current, next TournamentStatus) bool {
	allowed := map[TournamentStatus][]TournamentStatus{
		StatusScheduled: {StatusOngoing},
		StatusOngoing:   {StatusCompleted},
		StatusCompleted: {},
	}
	for _, n := range allowed[current] {
		if n == next {
			return true
		}
	}
	return false
}
