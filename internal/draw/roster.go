package draw

import "context"

// StaticRoster is a fixed in-memory roster, registered in slice order, that
// serves every competition id. Used for offline draws from fixture files.
type StaticRoster struct {
	teams []Team
}

func NewStaticRoster(teams []Team) *StaticRoster {
	copied := make([]Team, len(teams))
	copy(copied, teams)
	return &StaticRoster{teams: copied}
}

func (s *StaticRoster) ListCompetitionTeamIDs(ctx context.Context, competitionID int64) ([]int64, error) {
	ids := make([]int64, 0, len(s.teams))
	for _, team := range s.teams {
		ids = append(ids, team.ID)
	}
	return ids, nil
}

func (s *StaticRoster) ListTeamsByIDs(ctx context.Context, ids []int64) ([]Team, error) {
	byID := indexTeams(s.teams)
	teams := make([]Team, 0, len(ids))
	for _, id := range ids {
		if team, ok := byID[id]; ok {
			teams = append(teams, team)
		}
	}
	return teams, nil
}

// Teams returns the roster in registration order.
func (s *StaticRoster) Teams() []Team {
	teams := make([]Team, len(s.teams))
	copy(teams, s.teams)
	return teams
}
