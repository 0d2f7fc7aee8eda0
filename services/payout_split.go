package services

import (
	"errors"

	"github.com/arenaforge/tournament-engine/models"
)

var ErrEmptyRoster = errors.New("team has no members to distribute a prize to")

// MemberShare is one member's cut of a team prize.
type MemberShare struct {
	UserID    int
	Amount    int64
	IsCaptain bool
}

// splitTeamPrize divides a team prize: the captain bonus comes off the
// top (floor of bonusPercent% of the amount), the rest is split evenly
// with floor division, and the captain receives the bonus on top of
// the even share. Integer division can leave a remainder; it is
// withheld, not redistributed. Without a flagged captain the bonus is
// withheld too.
func splitTeamPrize(amount int64, members []models.TeamMember, bonusPercent int) ([]MemberShare, int64, error) {
	if len(members) == 0 {
		return nil, 0, ErrEmptyRoster
	}

	bonus := amount * int64(bonusPercent) / 100
	perMember := (amount - bonus) / int64(len(members))

	shares := make([]MemberShare, 0, len(members))
	var distributed int64
	captainSeen := false
	for _, m := range members {
		share := MemberShare{UserID: m.UserID, Amount: perMember}
		if m.Role == models.RoleCaptain && !captainSeen {
			share.Amount += bonus
			share.IsCaptain = true
			captainSeen = true
		}
		distributed += share.Amount
		shares = append(shares, share)
	}

	return shares, amount - distributed, nil
}
