package draw

import (
	"context"
	"testing"
)

func TestStaticRosterDrivesEngine(t *testing.T) {
	teams := namedTeams("Ajax", "Benfica", "Celtic", "Dinamo")
	roster := NewStaticRoster(teams)
	teams[0].Name = "mutated"

	ids, err := roster.ListCompetitionTeamIDs(context.Background(), 77)
	if err != nil || len(ids) != 4 {
		t.Fatalf("ids = %v, err %v", ids, err)
	}
	picked, err := roster.ListTeamsByIDs(context.Background(), []int64{ids[2], 999, ids[0]})
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(picked) != 2 || picked[0].ID != ids[2] || picked[1].Name != "Ajax" {
		t.Fatalf("unexpected teams: %+v", picked)
	}

	engine, err := NewEngine(roster, WithRand(NewSeededRand(9)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	result := engine.RunDraw(context.Background(), Config{NumberOfTeams: 4, MatchesPerTeam: 3, HomeAwayBalance: true})
	if !result.Success || len(result.Matches) != 6 {
		t.Fatalf("draw failed: %s", result.Error)
	}
}
