package models

import "fmt"

// CompetitorKind tags a Competitor as referencing a user or a team.
type CompetitorKind string

const (
	CompetitorUser CompetitorKind = "user"
	CompetitorTeam CompetitorKind = "team"
)

// Competitor is one side of a match: a user in SOLO tournaments, a team
// in TEAM tournaments. Keeping the kind next to the id avoids the
// parallel player/team column branching the rest of the code would
// otherwise need.
type Competitor struct {
	Kind CompetitorKind `json:"kind"`
	ID   int            `json:"id"`
}

func UserCompetitor(id int) Competitor { return Competitor{Kind: CompetitorUser, ID: id} }
func TeamCompetitor(id int) Competitor { return Competitor{Kind: CompetitorTeam, ID: id} }

// CompetitorFor builds a competitor of the kind matching the tournament type.
func CompetitorFor(t TournamentType, id int) Competitor {
	if t == TournamentTeam {
		return TeamCompetitor(id)
	}
	return UserCompetitor(id)
}

// KindFor reports the competitor kind a tournament type implies.
func KindFor(t TournamentType) CompetitorKind {
	if t == TournamentTeam {
		return CompetitorTeam
	}
	return CompetitorUser
}

func (c Competitor) Equal(other Competitor) bool {
	return c.Kind == other.Kind && c.ID == other.ID
}

func (c Competitor) String() string {
	return fmt.Sprintf("%s:%d", c.Kind, c.ID)
}
