package draw

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type fakeRoster struct {
	ids         []int64
	teams       []Team
	idsErr      error
	teamsErr    error
	detailCalls int
}

func (f *fakeRoster) ListCompetitionTeamIDs(ctx context.Context, competitionID int64) ([]int64, error) {
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	return f.ids, nil
}

func (f *fakeRoster) ListTeamsByIDs(ctx context.Context, ids []int64) ([]Team, error) {
	f.detailCalls++
	if f.teamsErr != nil {
		return nil, f.teamsErr
	}
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	teams := []Team{}
	for _, team := range f.teams {
		if wanted[team.ID] {
			teams = append(teams, team)
		}
	}
	return teams, nil
}

type captureAudit struct {
	audits []DrawAudit
	err    error
}

func (c *captureAudit) RecordDraw(ctx context.Context, audit DrawAudit) error {
	c.audits = append(c.audits, audit)
	return c.err
}

// scriptedRand returns the scripted values in order, then always 0.
type scriptedRand struct {
	values []int
	pos    int
}

func (s *scriptedRand) Intn(n int) int {
	if s.pos >= len(s.values) {
		return 0
	}
	v := s.values[s.pos] % n
	s.pos++
	return v
}

func namedTeams(names ...string) []Team {
	teams := make([]Team, 0, len(names))
	for i, name := range names {
		teams = append(teams, Team{ID: int64(i + 1), Name: name})
	}
	return teams
}

func rosterOf(teams []Team) *fakeRoster {
	ids := make([]int64, 0, len(teams))
	for _, team := range teams {
		ids = append(ids, team.ID)
	}
	return &fakeRoster{ids: ids, teams: teams}
}

func newTestEngine(t *testing.T, roster RosterStore, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(roster, opts...)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	return engine
}

var strategies = []Strategy{StrategyGreedy, StrategyBacktracking}

// assertScheduleInvariants checks no self-play, no repeated pairing, no
// exclusion and one appearance per team per round.
func assertScheduleInvariants(t *testing.T, cfg Config, matches []Match) {
	t.Helper()
	pairs := make(map[pairKey]bool)
	perRound := make(map[string]map[int64]bool)
	for _, match := range matches {
		if match.HomeTeamID == match.AwayTeamID {
			t.Fatalf("team %d scheduled against itself", match.HomeTeamID)
		}
		key := normalizePair(match.HomeTeamID, match.AwayTeamID)
		if pairs[key] {
			t.Fatalf("pairing %d vs %d scheduled twice", match.HomeTeamID, match.AwayTeamID)
		}
		pairs[key] = true
		for _, exclusion := range cfg.Exclusions {
			if exclusion.matches(match.HomeTeamID, match.AwayTeamID) {
				t.Fatalf("excluded pairing %d vs %d scheduled", match.HomeTeamID, match.AwayTeamID)
			}
		}
		busy := perRound[match.RoundID]
		if busy == nil {
			busy = make(map[int64]bool)
			perRound[match.RoundID] = busy
		}
		for _, id := range []int64{match.HomeTeamID, match.AwayTeamID} {
			if busy[id] {
				t.Fatalf("team %d plays twice in round %s", id, match.RoundID)
			}
			busy[id] = true
		}
		if match.Status != MatchStatusScheduled {
			t.Fatalf("expected status %q, got %q", MatchStatusScheduled, match.Status)
		}
		if match.MatchDate != nil {
			t.Fatalf("expected nil match date, got %v", match.MatchDate)
		}
	}
}

func matchesByRound(matches []Match) map[string][]Match {
	rounds := make(map[string][]Match)
	for _, match := range matches {
		rounds[match.RoundID] = append(rounds[match.RoundID], match)
	}
	return rounds
}

func TestRunDrawProducesFullRoundRobin(t *testing.T) {
	teams := namedTeams("A", "B", "C", "D")
	cfg := Config{
		CompetitionID:   1,
		NumberOfTeams:   4,
		MatchesPerTeam:  3,
		HomeAwayBalance: true,
	}

	for _, strategy := range strategies {
		for seed := int64(1); seed <= 50; seed++ {
			t.Run(fmt.Sprintf("%s/seed-%d", strategy, seed), func(t *testing.T) {
				engine := newTestEngine(t, rosterOf(teams), WithStrategy(strategy), WithRand(NewSeededRand(seed)))
				result := engine.RunDraw(context.Background(), cfg)
				if !result.Success {
					t.Fatalf("expected success, got error %q\n%s", result.Error, strings.Join(result.Log, "\n"))
				}
				if len(result.Matches) != 6 {
					t.Fatalf("expected 6 matches, got %d", len(result.Matches))
				}
				assertScheduleInvariants(t, cfg, result.Matches)

				rounds := matchesByRound(result.Matches)
				for _, round := range []string{"1", "2", "3"} {
					if len(rounds[round]) != 2 {
						t.Fatalf("expected 2 matches in round %s, got %d", round, len(rounds[round]))
					}
				}

				for _, team := range teams {
					if homes := countHomeGames(team.ID, result.Matches); homes > 2 {
						t.Fatalf("team %s has %d home games, cap is 2", team.Name, homes)
					}
				}
			})
		}
	}
}

func TestRunDrawRosterMismatch(t *testing.T) {
	engine := newTestEngine(t, rosterOf(namedTeams("A", "B", "C", "D", "E", "F")))
	result := engine.RunDraw(context.Background(), Config{CompetitionID: 1, NumberOfTeams: 8, MatchesPerTeam: 3})

	if result.Success {
		t.Fatal("expected failure for roster mismatch")
	}
	if !strings.Contains(result.Error, "Expected 8 teams but found 6") {
		t.Fatalf("unexpected error %q", result.Error)
	}
	if result.Matches == nil || len(result.Matches) != 0 {
		t.Fatalf("expected empty match list, got %#v", result.Matches)
	}
	if len(result.Log) == 0 || !strings.Contains(result.Log[len(result.Log)-1], "Draw failed") {
		t.Fatalf("expected log to end with the failure, got %v", result.Log)
	}
}

func TestRunDrawRespectsExclusions(t *testing.T) {
	teams := namedTeams("A", "B", "C", "D")
	cfg := Config{
		CompetitionID:  1,
		NumberOfTeams:  4,
		MatchesPerTeam: 1,
		Exclusions:     []Exclusion{{TeamA: 2, TeamB: 1, Reason: "same owner"}},
	}

	for _, strategy := range strategies {
		successes := 0
		for seed := int64(1); seed <= 100; seed++ {
			engine := newTestEngine(t, rosterOf(teams), WithStrategy(strategy), WithRand(NewSeededRand(seed)))
			result := engine.RunDraw(context.Background(), cfg)
			if !result.Success {
				continue
			}
			successes++
			for _, match := range result.Matches {
				if match.Involves(1, 2) {
					t.Fatalf("%s seed %d: excluded pairing A vs B scheduled", strategy, seed)
				}
			}
			assertScheduleInvariants(t, cfg, result.Matches)
		}
		if successes == 0 {
			t.Fatalf("%s: expected at least one successful draw", strategy)
		}
	}
}

func TestRunDrawFailsWithoutAnyValidFirstPairing(t *testing.T) {
	teams := namedTeams("A", "B")
	cfg := Config{
		CompetitionID:  1,
		NumberOfTeams:  2,
		MatchesPerTeam: 1,
		Exclusions:     []Exclusion{{TeamA: 1, TeamB: 2}},
	}
	for _, strategy := range strategies {
		engine := newTestEngine(t, rosterOf(teams), WithStrategy(strategy), WithRand(NewSeededRand(7)))
		result := engine.RunDraw(context.Background(), cfg)
		if result.Success {
			t.Fatalf("%s: expected failure", strategy)
		}
		if result.Error != "Unable to find valid pairings for round 1" {
			t.Fatalf("%s: unexpected error %q", strategy, result.Error)
		}
	}
}

func TestRunDrawIsAllOrNothing(t *testing.T) {
	// Four teams only have three distinct opponents, so round 4 cannot be paired.
	teams := namedTeams("A", "B", "C", "D")
	cfg := Config{
		CompetitionID:   1,
		NumberOfTeams:   4,
		MatchesPerTeam:  4,
		HomeAwayBalance: true,
	}
	for _, strategy := range strategies {
		engine := newTestEngine(t, rosterOf(teams), WithStrategy(strategy), WithRand(NewSeededRand(3)))
		result := engine.RunDraw(context.Background(), cfg)
		if result.Success {
			t.Fatalf("%s: expected failure", strategy)
		}
		if result.Error != "Unable to find valid pairings for round 4" {
			t.Fatalf("%s: unexpected error %q", strategy, result.Error)
		}
		if len(result.Matches) != 0 {
			t.Fatalf("%s: expected no matches after failure, got %d", strategy, len(result.Matches))
		}
	}
}

func TestRunDrawEmptyRosterSkipsDetailLookup(t *testing.T) {
	roster := &fakeRoster{ids: []int64{}}
	engine := newTestEngine(t, roster)

	result := engine.RunDraw(context.Background(), Config{CompetitionID: 1, NumberOfTeams: 0, MatchesPerTeam: 2})
	if !result.Success {
		t.Fatalf("expected success for empty roster, got %q", result.Error)
	}
	if len(result.Matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(result.Matches))
	}
	if roster.detailCalls != 0 {
		t.Fatalf("expected no team detail lookups, got %d", roster.detailCalls)
	}
}

func TestRunDrawRosterErrors(t *testing.T) {
	tests := []struct {
		name   string
		roster *fakeRoster
		want   string
	}{
		{
			name:   "membership lookup",
			roster: &fakeRoster{idsErr: errors.New("connection reset")},
			want:   "list competition teams: connection reset",
		},
		{
			name:   "detail lookup",
			roster: &fakeRoster{ids: []int64{1, 2}, teamsErr: errors.New("timeout")},
			want:   "load team details: timeout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, tt.roster)
			result := engine.RunDraw(context.Background(), Config{CompetitionID: 1, NumberOfTeams: 2, MatchesPerTeam: 1})
			if result.Success {
				t.Fatal("expected failure")
			}
			if !strings.Contains(result.Error, tt.want) {
				t.Fatalf("expected error containing %q, got %q", tt.want, result.Error)
			}
		})
	}
}

func TestRunDrawBacktrackingCompletesEveryRound(t *testing.T) {
	teams := namedTeams("A", "B", "C", "D", "E", "F", "G", "H")
	cfg := Config{
		CompetitionID:   1,
		NumberOfTeams:   8,
		MatchesPerTeam:  3,
		HomeAwayBalance: true,
		Exclusions: []Exclusion{
			{TeamA: 1, TeamB: 2},
			{TeamA: 3, TeamB: 4},
		},
	}

	for seed := int64(1); seed <= 30; seed++ {
		engine := newTestEngine(t, rosterOf(teams), WithStrategy(StrategyBacktracking), WithRand(NewSeededRand(seed)))
		result := engine.RunDraw(context.Background(), cfg)
		if !result.Success {
			t.Fatalf("seed %d: expected success, got %q", seed, result.Error)
		}
		assertScheduleInvariants(t, cfg, result.Matches)
		for round, matches := range matchesByRound(result.Matches) {
			if len(matches) != 4 {
				t.Fatalf("seed %d: round %s has %d matches, expected 4", seed, round, len(matches))
			}
		}
		if len(result.Matches) != 12 {
			t.Fatalf("seed %d: expected 12 matches, got %d", seed, len(result.Matches))
		}
	}
}

func TestRunDrawGreedyKeepsInvariantsOnLargerRoster(t *testing.T) {
	teams := namedTeams("A", "B", "C", "D", "E", "F")
	cfg := Config{CompetitionID: 1, NumberOfTeams: 6, MatchesPerTeam: 3, HomeAwayBalance: true}

	successes := 0
	for seed := int64(1); seed <= 20; seed++ {
		engine := newTestEngine(t, rosterOf(teams), WithRand(NewSeededRand(seed)))
		result := engine.RunDraw(context.Background(), cfg)
		if !result.Success {
			if len(result.Matches) != 0 {
				t.Fatalf("seed %d: failed draw returned %d matches", seed, len(result.Matches))
			}
			continue
		}
		successes++
		assertScheduleInvariants(t, cfg, result.Matches)
		if len(result.Matches) != 9 {
			t.Fatalf("seed %d: expected 9 matches, got %d", seed, len(result.Matches))
		}
	}
	if successes == 0 {
		t.Fatal("expected at least one successful greedy draw")
	}
}

func TestRunDrawOddRosterGivesOneBye(t *testing.T) {
	teams := namedTeams("A", "B", "C", "D", "E")
	cfg := Config{CompetitionID: 1, NumberOfTeams: 5, MatchesPerTeam: 2}

	engine := newTestEngine(t, rosterOf(teams), WithStrategy(StrategyBacktracking), WithRand(NewSeededRand(11)))
	result := engine.RunDraw(context.Background(), cfg)
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	assertScheduleInvariants(t, cfg, result.Matches)
	for round, matches := range matchesByRound(result.Matches) {
		if len(matches) != 2 {
			t.Fatalf("round %s has %d matches, expected 2", round, len(matches))
		}
	}
}

func TestRunDrawSeededIsReproducible(t *testing.T) {
	teams := namedTeams("A", "B", "C", "D", "E", "F")
	cfg := Config{CompetitionID: 1, NumberOfTeams: 6, MatchesPerTeam: 2, HomeAwayBalance: true}

	for _, strategy := range strategies {
		first := newTestEngine(t, rosterOf(teams), WithStrategy(strategy), WithRand(NewSeededRand(99))).RunDraw(context.Background(), cfg)
		second := newTestEngine(t, rosterOf(teams), WithStrategy(strategy), WithRand(NewSeededRand(99))).RunDraw(context.Background(), cfg)
		if first.Success != second.Success || len(first.Matches) != len(second.Matches) {
			t.Fatalf("%s: seeded runs diverged", strategy)
		}
		for i := range first.Matches {
			if first.Matches[i] != second.Matches[i] {
				t.Fatalf("%s: match %d differs: %+v vs %+v", strategy, i, first.Matches[i], second.Matches[i])
			}
		}
	}
}

func TestGreedyBacktracksOneStep(t *testing.T) {
	teams := namedTeams("A", "B", "C", "D")
	cfg := Config{
		CompetitionID:  1,
		NumberOfTeams:  4,
		MatchesPerTeam: 1,
		Exclusions:     []Exclusion{{TeamA: 2, TeamB: 4}},
	}
	// Pick C, which pairs with A and strands the excluded B and D.
	rng := &scriptedRand{values: []int{2, 0, 0}}
	engine := newTestEngine(t, rosterOf(teams), WithRand(rng))

	result := engine.RunDraw(context.Background(), cfg)
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	assertScheduleInvariants(t, cfg, result.Matches)
	if len(result.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(result.Matches))
	}

	backtracks := 0
	for _, event := range result.Events {
		if event.Kind == EventBacktrack {
			backtracks++
			if !strings.Contains(event.Message, "undoing C vs A") {
				t.Fatalf("unexpected backtrack message %q", event.Message)
			}
		}
	}
	if backtracks != 1 {
		t.Fatalf("expected exactly one backtrack, got %d", backtracks)
	}
}

func TestGreedyAttemptGuardRejectsRound(t *testing.T) {
	// A may face anyone but B, C and D exclude each other, so every pairing
	// strands two teams and the greedy loop never settles.
	teams := namedTeams("A", "B", "C", "D")
	cfg := Config{
		CompetitionID:  1,
		NumberOfTeams:  4,
		MatchesPerTeam: 1,
		Exclusions: []Exclusion{
			{TeamA: 2, TeamB: 3},
			{TeamA: 2, TeamB: 4},
			{TeamA: 3, TeamB: 4},
		},
	}
	engine := newTestEngine(t, rosterOf(teams), WithRand(NewSeededRand(11)))

	result := engine.RunDraw(context.Background(), cfg)
	if result.Success {
		t.Fatalf("expected failure")
	}
	if result.Error != "Unable to find valid pairings for round 1" {
		t.Fatalf("unexpected error %q", result.Error)
	}

	var guard *Event
	for i, event := range result.Events {
		if strings.Contains(event.Message, "giving up") {
			guard = &result.Events[i]
		}
	}
	if guard == nil {
		t.Fatalf("expected attempt guard event in %v", result.Log)
	}
	if guard.Kind != EventPairingRejected {
		t.Fatalf("guard event kind = %q, want %q", guard.Kind, EventPairingRejected)
	}
	want := fmt.Sprintf("giving up after %d pairing attempts", maxPairingAttempts(len(teams)))
	if !strings.Contains(guard.Message, want) {
		t.Fatalf("guard message %q, want %q", guard.Message, want)
	}
}

func TestRunDrawLogIsTimestamped(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	engine := newTestEngine(t, rosterOf(namedTeams("A", "B")),
		WithClock(func() time.Time { return fixed }),
		WithRand(NewSeededRand(1)),
	)

	result := engine.RunDraw(context.Background(), Config{CompetitionID: 1, NumberOfTeams: 2, MatchesPerTeam: 1})
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	for _, line := range result.Log {
		if !strings.HasPrefix(line, "[2024-01-01T12:00:00Z] ") {
			t.Fatalf("log line missing ISO timestamp: %q", line)
		}
	}

	kinds := make(map[EventKind]bool)
	for _, event := range result.Events {
		kinds[event.Kind] = true
	}
	for _, kind := range []EventKind{EventDrawStarted, EventRosterLoaded, EventRoundStarted, EventPairingMade, EventRoundCompleted, EventDrawCompleted} {
		if !kinds[kind] {
			t.Fatalf("expected %s event in log", kind)
		}
	}
	if len(result.Events) != len(result.Log) {
		t.Fatalf("expected one log line per event, got %d lines and %d events", len(result.Log), len(result.Events))
	}
}

func TestRunDrawResetsLogBetweenRuns(t *testing.T) {
	engine := newTestEngine(t, rosterOf(namedTeams("A", "B")), WithRand(NewSeededRand(1)))
	cfg := Config{CompetitionID: 1, NumberOfTeams: 2, MatchesPerTeam: 1}

	first := engine.RunDraw(context.Background(), cfg)
	second := engine.RunDraw(context.Background(), cfg)
	if len(first.Log) != len(second.Log) {
		t.Fatalf("expected log reset between runs, got %d then %d lines", len(first.Log), len(second.Log))
	}
}

func TestRunDrawWarnsAboutSameCountryRestriction(t *testing.T) {
	engine := newTestEngine(t, rosterOf(namedTeams("A", "B")), WithRand(NewSeededRand(1)))
	result := engine.RunDraw(context.Background(), Config{
		CompetitionID:          1,
		NumberOfTeams:          2,
		MatchesPerTeam:         1,
		SameCountryRestriction: true,
	})
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	warnings := 0
	for _, event := range result.Events {
		if event.Kind == EventWarning {
			warnings++
		}
	}
	if warnings != 1 {
		t.Fatalf("expected one warning event, got %d", warnings)
	}
}

func TestRunDrawRecordsAudit(t *testing.T) {
	sink := &captureAudit{err: errors.New("audit table locked")}
	engine := newTestEngine(t, rosterOf(namedTeams("A", "B", "C", "D")), WithAuditSink(sink), WithRand(NewSeededRand(5)))

	ok := engine.RunDraw(context.Background(), Config{CompetitionID: 9, NumberOfTeams: 4, MatchesPerTeam: 1})
	failed := engine.RunDraw(context.Background(), Config{CompetitionID: 9, NumberOfTeams: 6, MatchesPerTeam: 1})

	if !ok.Success {
		t.Fatalf("expected first draw to succeed, got %q", ok.Error)
	}
	if failed.Success {
		t.Fatal("expected second draw to fail")
	}
	if len(sink.audits) != 2 {
		t.Fatalf("expected 2 audits, got %d", len(sink.audits))
	}
	if !sink.audits[0].Success || sink.audits[0].MatchCount != 2 || sink.audits[0].CompetitionID != 9 {
		t.Fatalf("unexpected success audit %+v", sink.audits[0])
	}
	if sink.audits[1].Success || sink.audits[1].Error == "" || len(sink.audits[1].Log) == 0 {
		t.Fatalf("unexpected failure audit %+v", sink.audits[1])
	}
	if sink.audits[0].RunID == "" || sink.audits[0].RunID == sink.audits[1].RunID {
		t.Fatalf("expected distinct run ids, got %q and %q", sink.audits[0].RunID, sink.audits[1].RunID)
	}
}

func TestRunDrawHonorsCancelledContext(t *testing.T) {
	engine := newTestEngine(t, rosterOf(namedTeams("A", "B")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := engine.RunDraw(ctx, Config{CompetitionID: 1, NumberOfTeams: 2, MatchesPerTeam: 1})
	if result.Success {
		t.Fatal("expected cancelled draw to fail")
	}
	if !strings.Contains(result.Error, "cancelled") {
		t.Fatalf("unexpected error %q", result.Error)
	}
}

func TestIsValidOpponent(t *testing.T) {
	a := Team{ID: 1, Name: "A"}
	b := Team{ID: 2, Name: "B"}
	c := Team{ID: 3, Name: "C"}
	cfg := Config{Exclusions: []Exclusion{{TeamA: 3, TeamB: 1}}}
	existing := []Match{newMatch(1, 2, 3)}

	tests := []struct {
		name string
		a, b Team
		want bool
	}{
		{name: "self", a: a, b: a, want: false},
		{name: "excluded", a: a, b: c, want: false},
		{name: "excluded reversed", a: c, b: a, want: false},
		{name: "already played", a: b, b: c, want: false},
		{name: "already played reversed", a: c, b: b, want: false},
		{name: "valid", a: a, b: b, want: true},
	}

	engine := newTestEngine(t, rosterOf(nil))
	engine.log = newEventLog(time.Now, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.IsValidOpponent(tt.a, tt.b, cfg, existing, 2); got != tt.want {
				t.Fatalf("IsValidOpponent(%s, %s) = %v, want %v", tt.a.Name, tt.b.Name, got, tt.want)
			}
		})
	}
}

func TestAssignHomeAway(t *testing.T) {
	a := Team{ID: 1, Name: "A"}
	b := Team{ID: 2, Name: "B"}
	balanced := Config{MatchesPerTeam: 3, HomeAwayBalance: true}

	tests := []struct {
		name     string
		cfg      Config
		existing []Match
		coin     int
		wantHome int64
	}{
		{
			name:     "coin flip heads without balancing",
			cfg:      Config{MatchesPerTeam: 3},
			existing: []Match{newMatch(1, 1, 3), newMatch(2, 1, 3)},
			coin:     0,
			wantHome: 1,
		},
		{
			name:     "coin flip tails without balancing",
			cfg:      Config{MatchesPerTeam: 3},
			coin:     1,
			wantHome: 2,
		},
		{
			name:     "capped team sent away",
			cfg:      balanced,
			existing: []Match{newMatch(1, 1, 3), newMatch(2, 1, 3), newMatch(2, 2, 3)},
			wantHome: 2,
		},
		{
			name:     "fewer home games hosts",
			cfg:      balanced,
			existing: []Match{newMatch(1, 2, 3)},
			wantHome: 1,
		},
		{
			name:     "tie flips heads",
			cfg:      balanced,
			existing: []Match{newMatch(1, 1, 3), newMatch(2, 2, 3)},
			coin:     0,
			wantHome: 1,
		},
		{
			name:     "both capped flips tails",
			cfg:      Config{MatchesPerTeam: 2, HomeAwayBalance: true},
			existing: []Match{newMatch(1, 1, 3), newMatch(1, 2, 3)},
			coin:     1,
			wantHome: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, rosterOf(nil), WithRand(&scriptedRand{values: []int{tt.coin}}))
			home, away := engine.AssignHomeAway(a, b, tt.existing, tt.cfg)
			if home != tt.wantHome {
				t.Fatalf("expected home %d, got %d", tt.wantHome, home)
			}
			if home == away || (away != a.ID && away != b.ID) {
				t.Fatalf("unexpected away team %d", away)
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy(""); err != nil || s != StrategyGreedy {
		t.Fatalf("expected empty name to default to greedy, got %q, %v", s, err)
	}
	if s, err := ParseStrategy("backtracking"); err != nil || s != StrategyBacktracking {
		t.Fatalf("expected backtracking, got %q, %v", s, err)
	}
	if _, err := ParseStrategy("optimal"); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
	if _, err := NewEngine(rosterOf(nil), WithStrategy("optimal")); err == nil {
		t.Fatal("expected NewEngine to reject unknown strategy")
	}
	if _, err := NewEngine(nil); err == nil {
		t.Fatal("expected NewEngine to require a roster")
	}
}
