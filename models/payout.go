package models

// Payout is a declared prize tier, created during tournament setup.
// Amount is in minor units. Read-only for the engine.
type Payout struct {
	ID           int   `json:"id" db:"id"`
	TournamentID int   `json:"tournament_id" db:"tournament_id"`
	Position     int   `json:"position" db:"position"`
	Amount       int64 `json:"amount" db:"amount"`
}
