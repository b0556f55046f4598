package draw

import (
	"errors"
	"sort"
	"strings"
)

// AssignPots seeds teams into potCount pots by descending coefficient, ties
// broken by name. Pot sizes differ by at most one, larger pots first. Pots are
// informational; pairing never consults them.
func AssignPots(teams []Team, potCount int) ([][]Team, error) {
	if potCount <= 0 {
		return nil, errors.New("pot count must be positive")
	}
	if potCount > len(teams) {
		return nil, errors.New("pot count exceeds number of teams")
	}

	seeded := make([]Team, len(teams))
	copy(seeded, teams)
	sort.SliceStable(seeded, func(i, j int) bool {
		if seeded[i].Coefficient != seeded[j].Coefficient {
			return seeded[i].Coefficient > seeded[j].Coefficient
		}
		return strings.ToLower(seeded[i].Name) < strings.ToLower(seeded[j].Name)
	})

	base := len(seeded) / potCount
	extra := len(seeded) % potCount
	pots := make([][]Team, 0, potCount)
	start := 0
	for i := 0; i < potCount; i++ {
		size := base
		if i < extra {
			size++
		}
		pots = append(pots, seeded[start:start+size])
		start += size
	}
	return pots, nil
}
