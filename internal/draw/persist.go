package draw

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
)

// ScheduleWriter appends rounds and matches within one unit of work.
type ScheduleWriter interface {
	InsertRound(ctx context.Context, competitionID int64, roundNumber int) (int64, error)
	InsertMatches(ctx context.Context, competitionID, roundID int64, matches []Match) error
}

// ScheduleStore runs fn atomically: if fn returns an error nothing it wrote is kept.
type ScheduleStore interface {
	RunInTx(ctx context.Context, fn func(ScheduleWriter) error) error
}

type SavedRound struct {
	ID          int64 `json:"id"`
	RoundNumber int   `json:"round_number"`
	MatchCount  int   `json:"match_count"`
}

type roundGroup struct {
	roundID string
	number  int
	matches []Match
}

// SaveDrawResults writes one pending round per distinct RoundID, in the order
// rounds first appear in matches, followed by that round's matches. The whole
// save is a single transaction. Saving the same matches twice creates two
// independent sets of rounds.
func SaveDrawResults(ctx context.Context, store ScheduleStore, competitionID int64, matches []Match) ([]SavedRound, error) {
	if store == nil {
		return nil, errors.New("schedule store is required")
	}
	if competitionID <= 0 {
		return nil, errors.New("competition ID is required")
	}

	groups, err := groupByRound(matches)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return []SavedRound{}, nil
	}

	saved := make([]SavedRound, 0, len(groups))
	var failedRound string
	err = store.RunInTx(ctx, func(w ScheduleWriter) error {
		saved = saved[:0]
		for _, group := range groups {
			failedRound = group.roundID
			roundID, err := w.InsertRound(ctx, competitionID, group.number)
			if err != nil {
				return fmt.Errorf("save round %s: insert round: %w", group.roundID, err)
			}
			if err := w.InsertMatches(ctx, competitionID, roundID, group.matches); err != nil {
				return fmt.Errorf("save round %s: insert matches: %w", group.roundID, err)
			}
			saved = append(saved, SavedRound{
				ID:          roundID,
				RoundNumber: group.number,
				MatchCount:  len(group.matches),
			})
		}
		failedRound = ""
		return nil
	})
	if err != nil {
		event := log.Ctx(ctx).Error().
			Err(err).
			Str("component", "draw_save").
			Int64("competition_id", competitionID)
		if failedRound != "" {
			event = event.Str("round_id", failedRound)
		}
		event.Msg("Failed to save draw results")
		return nil, err
	}
	return saved, nil
}

func groupByRound(matches []Match) ([]roundGroup, error) {
	var groups []roundGroup
	index := make(map[string]int)
	for _, match := range matches {
		i, ok := index[match.RoundID]
		if !ok {
			number, err := strconv.Atoi(match.RoundID)
			if err != nil || number <= 0 {
				return nil, fmt.Errorf("invalid round id %q", match.RoundID)
			}
			index[match.RoundID] = len(groups)
			groups = append(groups, roundGroup{roundID: match.RoundID, number: number})
			i = len(groups) - 1
		}
		groups[i].matches = append(groups[i].matches, match)
	}
	return groups, nil
}
