package draw

import (
	"errors"
	"fmt"
)

var ErrInvalidSchedule = errors.New("invalid schedule")

type pairKey struct {
	low, high int64
}

func normalizePair(a, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// ValidateSchedule re-checks a schedule against the roster and the draw
// constraints. It is used on schedules submitted back by a client before
// they are saved.
func ValidateSchedule(teams []Team, cfg Config, matches []Match) error {
	known := indexTeams(teams)
	seenPairs := make(map[pairKey]string)
	perRound := make(map[string]map[int64]bool)
	played := make(map[int64]int)

	for i, match := range matches {
		if _, ok := known[match.HomeTeamID]; !ok {
			return fmt.Errorf("%w: match %d: unknown home team %d", ErrInvalidSchedule, i, match.HomeTeamID)
		}
		if _, ok := known[match.AwayTeamID]; !ok {
			return fmt.Errorf("%w: match %d: unknown away team %d", ErrInvalidSchedule, i, match.AwayTeamID)
		}
		if match.HomeTeamID == match.AwayTeamID {
			return fmt.Errorf("%w: match %d: team %d cannot play itself", ErrInvalidSchedule, i, match.HomeTeamID)
		}
		for _, exclusion := range cfg.Exclusions {
			if exclusion.matches(match.HomeTeamID, match.AwayTeamID) {
				return fmt.Errorf("%w: match %d: teams %d and %d are excluded", ErrInvalidSchedule, i, match.HomeTeamID, match.AwayTeamID)
			}
		}

		key := normalizePair(match.HomeTeamID, match.AwayTeamID)
		if round, ok := seenPairs[key]; ok {
			return fmt.Errorf("%w: match %d: teams %d and %d already meet in round %s", ErrInvalidSchedule, i, match.HomeTeamID, match.AwayTeamID, round)
		}
		seenPairs[key] = match.RoundID

		busy := perRound[match.RoundID]
		if busy == nil {
			busy = make(map[int64]bool)
			perRound[match.RoundID] = busy
		}
		for _, teamID := range []int64{match.HomeTeamID, match.AwayTeamID} {
			if busy[teamID] {
				return fmt.Errorf("%w: match %d: team %d plays twice in round %s", ErrInvalidSchedule, i, teamID, match.RoundID)
			}
			busy[teamID] = true
			played[teamID]++
			if played[teamID] > cfg.MatchesPerTeam {
				return fmt.Errorf("%w: match %d: team %d exceeds %d matches", ErrInvalidSchedule, i, teamID, cfg.MatchesPerTeam)
			}
		}
	}

	if len(perRound) > cfg.MatchesPerTeam {
		return fmt.Errorf("%w: %d rounds exceed %d matches per team", ErrInvalidSchedule, len(perRound), cfg.MatchesPerTeam)
	}
	if _, err := groupByRound(matches); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	return nil
}
