package services

import (
	"testing"

	"github.com/arenaforge/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster(teamID int, captainUserID int, memberUserIDs ...int) []models.TeamMember {
	members := []models.TeamMember{
		{TeamID: teamID, UserID: captainUserID, Role: models.RoleCaptain},
	}
	for _, id := range memberUserIDs {
		members = append(members, models.TeamMember{TeamID: teamID, UserID: id, Role: models.RolePlayer})
	}
	return members
}

func TestSplitTeamPrizeEvenlyDivisible(t *testing.T) {
	// 10000 at 10% bonus over 4 members: captain 2250+1000, rest 2250.
	shares, withheld, err := splitTeamPrize(10000, roster(1, 100, 101, 102, 103), 10)
	require.NoError(t, err)
	require.Len(t, shares, 4)

	var total int64
	for _, s := range shares {
		total += s.Amount
		if s.UserID == 100 {
			assert.True(t, s.IsCaptain)
			assert.Equal(t, int64(3250), s.Amount)
		} else {
			assert.False(t, s.IsCaptain)
			assert.Equal(t, int64(2250), s.Amount)
		}
	}
	assert.Equal(t, int64(10000), total)
	assert.Zero(t, withheld)
}

func TestSplitTeamPrizeWithholdsRemainder(t *testing.T) {
	// 1000 at 10% bonus over 3 members: bonus 100, 900/3 = 300 each.
	shares, withheld, err := splitTeamPrize(1000, roster(1, 100, 101, 102), 10)
	require.NoError(t, err)
	var total int64
	for _, s := range shares {
		total += s.Amount
	}
	assert.Equal(t, int64(1000), total)
	assert.Zero(t, withheld)

	// 10001 at 10%: bonus 1000, 9001/4 floors to 2250, 1 withheld.
	shares, withheld, err = splitTeamPrize(10001, roster(1, 100, 101, 102, 103), 10)
	require.NoError(t, err)
	total = 0
	for _, s := range shares {
		total += s.Amount
	}
	assert.Equal(t, int64(10000), total)
	assert.Equal(t, int64(1), withheld)
	assert.LessOrEqual(t, total, int64(10001), "never distribute more than the tier amount")
}

func TestSplitTeamPrizeZeroBonusPercent(t *testing.T) {
	shares, withheld, err := splitTeamPrize(900, roster(1, 100, 101, 102), 0)
	require.NoError(t, err)
	for _, s := range shares {
		assert.Equal(t, int64(300), s.Amount, "captain gets no extra at 0%%")
	}
	assert.Zero(t, withheld)
}

func TestSplitTeamPrizeNoCaptainFlagged(t *testing.T) {
	members := []models.TeamMember{
		{TeamID: 1, UserID: 100, Role: models.RolePlayer},
		{TeamID: 1, UserID: 101, Role: models.RolePlayer},
	}
	shares, withheld, err := splitTeamPrize(1000, members, 10)
	require.NoError(t, err)
	for _, s := range shares {
		assert.Equal(t, int64(450), s.Amount)
		assert.False(t, s.IsCaptain)
	}
	assert.Equal(t, int64(100), withheld, "unassigned bonus is withheld, not redistributed")
}

func TestSplitTeamPrizeTinyAmountWithholdsEverything(t *testing.T) {
	// 2 over 3 members floors every share to zero; the whole tier is
	// reported as withheld so settlement can skip the empty credits.
	shares, withheld, err := splitTeamPrize(2, roster(1, 100, 101, 102), 10)
	require.NoError(t, err)
	for _, s := range shares {
		assert.Zero(t, s.Amount)
	}
	assert.Equal(t, int64(2), withheld)
}

func TestSplitTeamPrizeEmptyRoster(t *testing.T) {
	_, _, err := splitTeamPrize(1000, nil, 10)
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestCanManageTournament(t *testing.T) {
	tournament := &models.Tournament{ID: 7, HostID: 42}

	assert.True(t, canManageTournament(Caller{UserID: 42, Role: models.UserRoleHost}, tournament))
	assert.True(t, canManageTournament(Caller{UserID: 1, Role: models.UserRoleAdmin}, tournament))
	assert.False(t, canManageTournament(Caller{UserID: 43, Role: models.UserRoleHost}, tournament))
	assert.False(t, canManageTournament(Caller{UserID: 1, Role: models.UserRolePlayer}, tournament))
}
