package draw

import (
	"math/rand"
	"time"
)

// RandSource picks uniformly random indexes. *rand.Rand satisfies it.
type RandSource interface {
	Intn(n int) int
}

// NewSeededRand returns a deterministic source for reproducible draws.
func NewSeededRand(seed int64) RandSource {
	return rand.New(rand.NewSource(seed))
}

// NewRandSource returns a seeded source, or a clock-seeded one when seed is 0.
func NewRandSource(seed int64) RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewSeededRand(seed)
}

func shuffleTeams(rng RandSource, teams []*Team) {
	for i := len(teams) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		teams[i], teams[j] = teams[j], teams[i]
	}
}
