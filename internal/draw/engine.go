package draw

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Strategy selects how a single round is paired.
type Strategy string

const (
	// StrategyGreedy pops random teams, takes the first valid opponent and
	// undoes one pairing on a dead end.
	StrategyGreedy Strategy = "greedy"
	// StrategyBacktracking runs a depth-first search over an explicit frame
	// stack and unwinds as many pairings as needed.
	StrategyBacktracking Strategy = "backtracking"
)

func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "", StrategyGreedy:
		return StrategyGreedy, nil
	case StrategyBacktracking:
		return StrategyBacktracking, nil
	default:
		return "", fmt.Errorf("unknown draw strategy: %q", name)
	}
}

// RosterStore resolves the teams registered to a competition. Both lookups
// return an empty slice, never nil, when nothing is registered.
type RosterStore interface {
	ListCompetitionTeamIDs(ctx context.Context, competitionID int64) ([]int64, error)
	ListTeamsByIDs(ctx context.Context, ids []int64) ([]Team, error)
}

// Engine runs draws. It keeps the log of the current run only, so a single
// Engine must not be shared by concurrent RunDraw calls.
type Engine struct {
	roster       RosterStore
	audit        AuditSink
	strategy     Strategy
	rng          RandSource
	now          func() time.Time
	newRunID     func() string
	mirrorEvents bool

	log *eventLog
}

type Option func(*Engine)

func WithStrategy(strategy Strategy) Option {
	return func(e *Engine) { e.strategy = strategy }
}

func WithRand(rng RandSource) Option {
	return func(e *Engine) { e.rng = rng }
}

func WithAuditSink(sink AuditSink) Option {
	return func(e *Engine) { e.audit = sink }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithEventMirroring copies every draw log entry to the context logger at debug level.
func WithEventMirroring(enabled bool) Option {
	return func(e *Engine) { e.mirrorEvents = enabled }
}

func NewEngine(roster RosterStore, opts ...Option) (*Engine, error) {
	if roster == nil {
		return nil, errors.New("draw engine requires a roster store")
	}
	e := &Engine{
		roster:   roster,
		strategy: StrategyGreedy,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = NewRandSource(0)
	}
	if _, err := ParseStrategy(string(e.strategy)); err != nil {
		return nil, err
	}
	return e, nil
}

// RunDraw produces a complete schedule for cfg or an explicit failure. The
// returned log is populated in both cases; failed results carry no matches.
func (e *Engine) RunDraw(ctx context.Context, cfg Config) Result {
	logger := log.Ctx(ctx).With().
		Str("component", "draw_engine").
		Int64("competition_id", cfg.CompetitionID).
		Str("strategy", string(e.strategy)).
		Logger()

	var mirror *zerolog.Logger
	if e.mirrorEvents {
		mirror = &logger
	}
	e.log = newEventLog(e.now, mirror)

	runID := e.newRunID()
	result := e.runDraw(ctx, cfg)
	if result.Success {
		logger.Info().
			Str("run_id", runID).
			Int("match_count", len(result.Matches)).
			Msg("Draw completed")
	} else {
		logger.Warn().
			Str("run_id", runID).
			Str("error", result.Error).
			Msg("Draw failed")
	}

	if e.audit != nil {
		audit := DrawAudit{
			RunID:         runID,
			CompetitionID: cfg.CompetitionID,
			Success:       result.Success,
			Error:         result.Error,
			MatchCount:    len(result.Matches),
			Log:           result.Log,
		}
		if err := e.audit.RecordDraw(ctx, audit); err != nil {
			logger.Error().Err(err).Str("run_id", runID).Msg("Failed to record draw audit")
		}
	}
	return result
}

func (e *Engine) runDraw(ctx context.Context, cfg Config) Result {
	e.log.add(EventDrawStarted, 0, "Starting draw for competition %d: %d teams, %d matches per team, strategy %s",
		cfg.CompetitionID, cfg.NumberOfTeams, cfg.MatchesPerTeam, e.strategy)
	if cfg.SameCountryRestriction {
		e.log.add(EventWarning, 0, "same_country_restriction is set but not enforced by the pairing rules")
	}

	teams, err := e.loadTeams(ctx, cfg.CompetitionID)
	if err != nil {
		return e.fail(0, fmt.Sprintf("Failed to load teams: %v", err))
	}
	e.log.add(EventRosterLoaded, 0, "Loaded %d teams", len(teams))

	if len(teams) != cfg.NumberOfTeams {
		return e.fail(0, fmt.Sprintf("Expected %d teams but found %d", cfg.NumberOfTeams, len(teams)))
	}

	var matches []Match
	for round := 1; round <= cfg.MatchesPerTeam; round++ {
		if err := ctx.Err(); err != nil {
			return e.fail(round, fmt.Sprintf("Draw cancelled before round %d: %v", round, err))
		}
		e.log.add(EventRoundStarted, round, "Starting round %d", round)

		var roundMatches []Match
		switch e.strategy {
		case StrategyBacktracking:
			roundMatches, err = e.pairRoundBacktracking(teams, cfg, matches, round)
		default:
			roundMatches, err = e.pairRoundGreedy(teams, cfg, matches, round)
		}
		if err != nil {
			return e.fail(round, err.Error())
		}

		matches = append(matches, roundMatches...)
		e.log.add(EventRoundCompleted, round, "Round %d completed with %d matches", round, len(roundMatches))
	}

	e.log.add(EventDrawCompleted, 0, "Draw completed: %d matches across %d rounds", len(matches), cfg.MatchesPerTeam)
	lines, events := e.log.snapshot()
	if matches == nil {
		matches = []Match{}
	}
	return Result{
		Success: true,
		Matches: matches,
		Log:     lines,
		Events:  events,
	}
}

func (e *Engine) fail(round int, message string) Result {
	e.log.add(EventDrawFailed, round, "Draw failed: %s", message)
	lines, events := e.log.snapshot()
	return Result{
		Success: false,
		Matches: []Match{},
		Error:   message,
		Log:     lines,
		Events:  events,
	}
}

// loadTeams resolves the roster in two steps: competition to team ids, then
// team ids to team details.
func (e *Engine) loadTeams(ctx context.Context, competitionID int64) ([]Team, error) {
	ids, err := e.roster.ListCompetitionTeamIDs(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list competition teams: %w", err)
	}
	if len(ids) == 0 {
		return []Team{}, nil
	}
	teams, err := e.roster.ListTeamsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load team details: %w", err)
	}
	if teams == nil {
		teams = []Team{}
	}
	return teams, nil
}

// IsValidOpponent reports whether a may be paired with b given the
// exclusions and every match scheduled so far. Rejections are logged.
func (e *Engine) IsValidOpponent(a, b Team, cfg Config, existing []Match, round int) bool {
	ok, reason := validOpponent(a, b, cfg, existing)
	if !ok && e.log != nil {
		e.log.add(EventPairingRejected, round, "Round %d: %s vs %s rejected: %s", round, a.Name, b.Name, reason)
	}
	return ok
}

func validOpponent(a, b Team, cfg Config, existing []Match) (bool, string) {
	if a.ID == b.ID {
		return false, "same team"
	}
	for _, exclusion := range cfg.Exclusions {
		if exclusion.matches(a.ID, b.ID) {
			if exclusion.Reason != "" {
				return false, "excluded (" + exclusion.Reason + ")"
			}
			return false, "excluded"
		}
	}
	for _, match := range existing {
		if match.Involves(a.ID, b.ID) {
			return false, "already drawn in round " + match.RoundID
		}
	}
	return true, ""
}

// AssignHomeAway picks the home side for a pairing. With balancing enabled a
// team that reached ceil(MatchesPerTeam/2) home games is sent away when its
// opponent is under the cap, otherwise the team with fewer home games hosts.
func (e *Engine) AssignHomeAway(a, b Team, existing []Match, cfg Config) (home, away int64) {
	if !cfg.HomeAwayBalance {
		return e.coinFlip(a.ID, b.ID)
	}

	homeA := countHomeGames(a.ID, existing)
	homeB := countHomeGames(b.ID, existing)
	maxHome := (cfg.MatchesPerTeam + 1) / 2

	switch {
	case homeA >= maxHome && homeB < maxHome:
		return b.ID, a.ID
	case homeB >= maxHome && homeA < maxHome:
		return a.ID, b.ID
	case homeA < homeB:
		return a.ID, b.ID
	case homeB < homeA:
		return b.ID, a.ID
	default:
		return e.coinFlip(a.ID, b.ID)
	}
}

func (e *Engine) coinFlip(a, b int64) (home, away int64) {
	if e.rng.Intn(2) == 0 {
		return a, b
	}
	return b, a
}

func countHomeGames(teamID int64, matches []Match) int {
	count := 0
	for _, match := range matches {
		if match.HomeTeamID == teamID {
			count++
		}
	}
	return count
}

func unsatisfiableRound(round int) error {
	return fmt.Errorf("Unable to find valid pairings for round %d", round)
}
