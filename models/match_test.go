package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchHasCompetitor(t *testing.T) {
	a := UserCompetitor(1)
	b := UserCompetitor(2)
	m := &Match{SlotA: &a, SlotB: &b}

	assert.True(t, m.HasCompetitor(UserCompetitor(1)))
	assert.True(t, m.HasCompetitor(UserCompetitor(2)))
	assert.False(t, m.HasCompetitor(UserCompetitor(3)))
	assert.False(t, m.HasCompetitor(TeamCompetitor(1)), "kind must match, not just the id")

	bye := &Match{SlotA: &a}
	assert.True(t, bye.HasCompetitor(a))
	assert.False(t, bye.HasCompetitor(b))
}

func TestMatchRunnerUp(t *testing.T) {
	a := TeamCompetitor(10)
	b := TeamCompetitor(20)

	m := &Match{SlotA: &a, SlotB: &b, Winner: &a, Status: MatchCompleted}
	assert.Equal(t, &b, m.RunnerUp())

	m.Winner = &b
	assert.Equal(t, &a, m.RunnerUp())

	pending := &Match{SlotA: &a, SlotB: &b}
	assert.Nil(t, pending.RunnerUp())

	bye := &Match{SlotA: &a, Winner: &a, Status: MatchCompleted}
	assert.Nil(t, bye.RunnerUp())
}

func TestCompetitorFor(t *testing.T) {
	assert.Equal(t, Competitor{Kind: CompetitorUser, ID: 5}, CompetitorFor(TournamentSolo, 5))
	assert.Equal(t, Competitor{Kind: CompetitorTeam, ID: 5}, CompetitorFor(TournamentTeam, 5))
	assert.Equal(t, "user:5", UserCompetitor(5).String())
	assert.Equal(t, "team:7", TeamCompetitor(7).String())
}
