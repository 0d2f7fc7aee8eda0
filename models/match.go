package models

import "time"

type MatchStatus string

const (
	MatchScheduled MatchStatus = "SCHEDULED"
	MatchCompleted MatchStatus = "COMPLETED"
)

// Match is one slot of a single-elimination bracket. Round is 1-indexed
// (round 1 is the first round), MatchNumber is 1-indexed within its
// round. SlotA/SlotB are nil while the match still waits for winners
// from the previous round.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Round        int         `json:"round" db:"round"`
	MatchNumber  int         `json:"match_number" db:"match_number"`
	SlotA        *Competitor `json:"slot_a,omitempty"`
	SlotB        *Competitor `json:"slot_b,omitempty"`
	Winner       *Competitor `json:"winner,omitempty"`
	ScoreA       *int        `json:"score_a,omitempty" db:"score_a"`
	ScoreB       *int        `json:"score_b,omitempty" db:"score_b"`
	Status       MatchStatus `json:"status" db:"status"`
	ProofURL     *string     `json:"proof_url,omitempty" db:"proof_url"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	Disputes []Dispute `json:"disputes,omitempty" db:"-"`
}

// HasCompetitor reports whether c occupies one of the match slots.
func (m *Match) HasCompetitor(c Competitor) bool {
	if m.SlotA != nil && m.SlotA.Equal(c) {
		return true
	}
	if m.SlotB != nil && m.SlotB.Equal(c) {
		return true
	}
	return false
}

// RunnerUp returns the slot that is not the winner, once the match is
// completed. Nil for bye matches, which never had a second competitor.
func (m *Match) RunnerUp() *Competitor {
	if m.Winner == nil {
		return nil
	}
	if m.SlotA != nil && !m.SlotA.Equal(*m.Winner) {
		return m.SlotA
	}
	if m.SlotB != nil && !m.SlotB.Equal(*m.Winner) {
		return m.SlotB
	}
	return nil
}
