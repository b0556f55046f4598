package draw

// minPairingAttempts bounds tiny rosters; larger rounds get 4·n² attempts.
const minPairingAttempts = 16

func maxPairingAttempts(teamCount int) int {
	limit := 4 * teamCount * teamCount
	if limit < minPairingAttempts {
		return minPairingAttempts
	}
	return limit
}

// pairRoundGreedy pairs one round by repeatedly removing a random team and
// matching it with the first valid opponent in pool order. When a team has no
// valid opponent the most recent pairing of the round is undone and all three
// teams return to the pool.
func (e *Engine) pairRoundGreedy(teams []Team, cfg Config, existing []Match, round int) ([]Match, error) {
	available := make([]Team, len(teams))
	copy(available, teams)
	byID := indexTeams(teams)

	roundMatches := []Match{}
	limit := maxPairingAttempts(len(teams))

	for attempts := 0; len(available) >= 2; attempts++ {
		if attempts >= limit {
			e.log.add(EventPairingRejected, round, "Round %d: giving up after %d pairing attempts", round, attempts)
			return nil, unsatisfiableRound(round)
		}

		idx := e.rng.Intn(len(available))
		teamA := available[idx]
		available = removeTeam(available, idx)

		opponent := -1
		for i, candidate := range available {
			if e.IsValidOpponent(teamA, candidate, cfg, existing, round) {
				opponent = i
				break
			}
		}

		if opponent >= 0 {
			teamB := available[opponent]
			available = removeTeam(available, opponent)
			home, away := e.AssignHomeAway(teamA, teamB, existing, cfg)
			roundMatches = append(roundMatches, newMatch(round, home, away))
			e.log.add(EventPairingMade, round, "Round %d: %s (home) vs %s (away)",
				round, byID[home].Name, byID[away].Name)
			continue
		}

		if len(roundMatches) == 0 {
			e.log.add(EventPairingRejected, round, "Round %d: no valid opponent for %s and nothing to backtrack", round, teamA.Name)
			return nil, unsatisfiableRound(round)
		}

		last := roundMatches[len(roundMatches)-1]
		roundMatches = roundMatches[:len(roundMatches)-1]
		available = append(available, teamA, byID[last.HomeTeamID], byID[last.AwayTeamID])
		e.log.add(EventBacktrack, round, "Round %d: no valid opponent for %s, undoing %s vs %s",
			round, teamA.Name, byID[last.HomeTeamID].Name, byID[last.AwayTeamID].Name)
	}

	return roundMatches, nil
}

func removeTeam(teams []Team, idx int) []Team {
	return append(teams[:idx], teams[idx+1:]...)
}

func indexTeams(teams []Team) map[int64]Team {
	byID := make(map[int64]Team, len(teams))
	for _, team := range teams {
		byID[team.ID] = team
	}
	return byID
}
