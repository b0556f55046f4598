package draw

// searchFrame is one level of the backtracking search: the team being placed,
// its candidate opponents in try order, and the next candidate to try. A nil
// candidate is a bye.
type searchFrame struct {
	team       *Team
	candidates []*Team
	next       int
}

// pairRoundBacktracking finds a pairing of every team in the round (one bye
// when the roster is odd) by depth-first search. Team and candidate order are
// shuffled so repeated draws still vary.
func (e *Engine) pairRoundBacktracking(teams []Team, cfg Config, existing []Match, round int) ([]Match, error) {
	order := make([]*Team, 0, len(teams)+1)
	for i := range teams {
		order = append(order, &teams[i])
	}
	shuffleTeams(e.rng, order)
	if len(order)%2 == 1 {
		order = append(order, nil)
	}

	placed := make(map[*Team]bool, len(order))
	var stack []*searchFrame
	var picks []*Team
	steps := 0
	limit := maxSearchSteps(len(teams))

	for len(stack) < len(order)/2 {
		var team *Team
		for _, candidate := range order {
			if candidate != nil && !placed[candidate] {
				team = candidate
				break
			}
		}
		frame := &searchFrame{team: team}
		for _, candidate := range order {
			if candidate == team || placed[candidate] {
				continue
			}
			if candidate == nil {
				frame.candidates = append(frame.candidates, nil)
				continue
			}
			if e.IsValidOpponent(*team, *candidate, cfg, existing, round) {
				frame.candidates = append(frame.candidates, candidate)
			}
		}
		stack = append(stack, frame)

		for {
			steps++
			if steps > limit {
				e.log.add(EventPairingRejected, round, "Round %d: search abandoned after %d steps", round, limit)
				return nil, unsatisfiableRound(round)
			}
			top := stack[len(stack)-1]
			if top.next < len(top.candidates) {
				pick := top.candidates[top.next]
				top.next++
				placed[top.team] = true
				placed[pick] = true
				picks = append(picks, pick)
				break
			}

			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				e.log.add(EventPairingRejected, round, "Round %d: search exhausted every pairing", round)
				return nil, unsatisfiableRound(round)
			}
			parent := stack[len(stack)-1]
			undone := picks[len(picks)-1]
			picks = picks[:len(picks)-1]
			delete(placed, parent.team)
			delete(placed, undone)
			e.log.add(EventBacktrack, round, "Round %d: no valid opponent for %s, undoing %s vs %s",
				round, top.team.Name, parent.team.Name, teamName(undone))
		}
	}

	roundMatches := make([]Match, 0, len(stack))
	for i, frame := range stack {
		opponent := picks[i]
		if opponent == nil {
			e.log.add(EventPairingMade, round, "Round %d: %s has a bye", round, frame.team.Name)
			continue
		}
		home, away := e.AssignHomeAway(*frame.team, *opponent, existing, cfg)
		roundMatches = append(roundMatches, newMatch(round, home, away))
		if home == frame.team.ID {
			e.log.add(EventPairingMade, round, "Round %d: %s (home) vs %s (away)", round, frame.team.Name, opponent.Name)
		} else {
			e.log.add(EventPairingMade, round, "Round %d: %s (home) vs %s (away)", round, opponent.Name, frame.team.Name)
		}
	}
	return roundMatches, nil
}

// maxSearchSteps bounds the search for pathological exclusion sets.
func maxSearchSteps(teamCount int) int {
	return 10000 * (teamCount + 1)
}

func teamName(team *Team) string {
	if team == nil {
		return "bye"
	}
	return team.Name
}
