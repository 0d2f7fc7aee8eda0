package brackets

import (
	"errors"
	"math"

	"github.com/arenaforge/tournament-engine/models"
)

var ErrNotEnoughEntries = errors.New("at least 2 entries are required for a single elimination bracket")

// Shuffler injects the seeding permutation. *rand.Rand satisfies it;
// tests supply a fixed permutation instead.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// ShufflerFunc adapts a plain function to the Shuffler interface.
type ShufflerFunc func(n int, swap func(i, j int))

func (f ShufflerFunc) Shuffle(n int, swap func(i, j int)) { f(n, swap) }

// Slot identifies which side of a match a winner advances into.
type Slot int

const (
	SlotA Slot = 1
	SlotB Slot = 2
)

// PlannedMatch is one node of the generated tree, not yet persisted.
// Bye matches come out already completed with the present entry as
// winner.
type PlannedMatch struct {
	Round       int
	MatchNumber int
	SlotA       *models.Competitor
	SlotB       *models.Competitor
	Winner      *models.Competitor
	Completed   bool
}

// TotalRounds returns ceil(log2(n)) for n >= 2.
func TotalRounds(n int) int {
	return int(math.Ceil(math.Log2(float64(n))))
}

// BracketSize is the padded power-of-two size of the round-1 field.
func BracketSize(n int) int {
	return 1 << uint(TotalRounds(n))
}

// MatchesInRound returns how many matches a round holds for the given
// bracket size: bracketSize/2 in round 1, halving each round after.
func MatchesInRound(bracketSize, round int) int {
	return bracketSize >> uint(round)
}

// ParentCoordinates maps a match to the slot it feeds in the next
// round: match n feeds match ceil(n/2), slot A when n is odd, slot B
// when n is even.
func ParentCoordinates(round, matchNumber int) (nextRound, nextMatchNumber int, slot Slot) {
	nextRound = round + 1
	nextMatchNumber = (matchNumber + 1) / 2
	if matchNumber%2 == 1 {
		return nextRound, nextMatchNumber, SlotA
	}
	return nextRound, nextMatchNumber, SlotB
}

// Plan seeds the entries with the supplied shuffler and builds the
// complete single-elimination tree: round 1 fully paired (byes paired
// against an empty slot and auto-completed, with the winner cascaded
// into its round-2 slot), later rounds as empty placeholders to be
// filled as results come in.
//
// Byes are interleaved rather than appended: the first 2n-bracketSize
// shuffled entries pair with each other, every remaining entry gets a
// bye. That way no round-1 pair can consist of two byes for any n >= 2.
func Plan(entries []models.Competitor, shuffler Shuffler) ([]PlannedMatch, error) {
	n := len(entries)
	if n < 2 {
		return nil, ErrNotEnoughEntries
	}

	shuffled := make([]models.Competitor, n)
	copy(shuffled, entries)
	shuffler.Shuffle(n, func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	rounds := TotalRounds(n)
	size := BracketSize(n)
	byes := size - n
	paired := n - byes // entries that meet a real opponent in round 1

	slots := make([]*models.Competitor, 0, size)
	for i := 0; i < paired; i++ {
		c := shuffled[i]
		slots = append(slots, &c)
	}
	for i := paired; i < n; i++ {
		c := shuffled[i]
		slots = append(slots, &c, nil)
	}

	plan := make([]PlannedMatch, 0, size-1)
	byIndex := make(map[[2]int]*PlannedMatch, size-1)

	for i := 0; i < size/2; i++ {
		m := PlannedMatch{
			Round:       1,
			MatchNumber: i + 1,
			SlotA:       slots[2*i],
			SlotB:       slots[2*i+1],
		}
		if m.SlotB == nil {
			m.Winner = m.SlotA
			m.Completed = true
		}
		plan = append(plan, m)
	}

	for r := 2; r <= rounds; r++ {
		for i := 0; i < MatchesInRound(size, r); i++ {
			plan = append(plan, PlannedMatch{Round: r, MatchNumber: i + 1})
		}
	}

	for i := range plan {
		m := &plan[i]
		byIndex[[2]int{m.Round, m.MatchNumber}] = m
	}

	// Cascade bye winners into their round-2 slots.
	for i := range plan {
		m := &plan[i]
		if m.Round != 1 || !m.Completed {
			continue
		}
		nextRound, nextNumber, slot := ParentCoordinates(m.Round, m.MatchNumber)
		parent, ok := byIndex[[2]int{nextRound, nextNumber}]
		if !ok {
			continue // two-entry bracket, round 1 is the final
		}
		if slot == SlotA {
			parent.SlotA = m.Winner
		} else {
			parent.SlotB = m.Winner
		}
	}

	return plan, nil
}
