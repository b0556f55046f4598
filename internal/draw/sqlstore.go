package draw

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	appdb "github.com/codr1/proclubs/internal/db"
	dbgen "github.com/codr1/proclubs/internal/db/generated"
)

// SQLStore backs the engine's roster, schedule and audit collaborators with
// the application database.
type SQLStore struct {
	db *appdb.DB
}

func NewSQLStore(database *appdb.DB) (*SQLStore, error) {
	if database == nil || database.Queries == nil {
		return nil, errors.New("draw store requires a database")
	}
	return &SQLStore{db: database}, nil
}

func (s *SQLStore) ListCompetitionTeamIDs(ctx context.Context, competitionID int64) ([]int64, error) {
	return s.db.Queries.ListCompetitionTeamIDs(ctx, competitionID)
}

func (s *SQLStore) ListTeamsByIDs(ctx context.Context, ids []int64) ([]Team, error) {
	rows, err := s.db.Queries.ListTeamsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	teams := make([]Team, 0, len(rows))
	for _, row := range rows {
		teams = append(teams, teamFromRow(row))
	}
	return teams, nil
}

// ListTeams returns the competition roster in registration order.
func (s *SQLStore) ListTeams(ctx context.Context, competitionID int64) ([]Team, error) {
	ids, err := s.ListCompetitionTeamIDs(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list competition teams: %w", err)
	}
	teams, err := s.ListTeamsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load team details: %w", err)
	}
	byID := indexTeams(teams)
	sorted := make([]Team, 0, len(teams))
	for _, id := range ids {
		if team, ok := byID[id]; ok {
			sorted = append(sorted, team)
		}
	}
	return sorted, nil
}

// LoadConfig builds the draw configuration for a stored competition,
// including its exclusions. It returns sql.ErrNoRows for unknown competitions.
func (s *SQLStore) LoadConfig(ctx context.Context, competitionID int64) (Config, error) {
	competition, err := s.db.Queries.GetCompetition(ctx, competitionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("load competition: %w", err)
	}
	rows, err := s.db.Queries.ListDrawExclusions(ctx, competitionID)
	if err != nil {
		return Config{}, fmt.Errorf("load exclusions: %w", err)
	}
	exclusions := make([]Exclusion, 0, len(rows))
	for _, row := range rows {
		exclusions = append(exclusions, Exclusion{
			TeamA:  row.TeamAID,
			TeamB:  row.TeamBID,
			Reason: row.Reason,
		})
	}
	return Config{
		CompetitionID:          competition.ID,
		NumberOfTeams:          int(competition.NumberOfTeams),
		MatchesPerTeam:         int(competition.MatchesPerTeam),
		SameCountryRestriction: competition.SameCountryRestriction,
		HomeAwayBalance:        competition.HomeAwayBalance,
		Exclusions:             exclusions,
	}, nil
}

func (s *SQLStore) RunInTx(ctx context.Context, fn func(ScheduleWriter) error) error {
	return s.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		return fn(sqlScheduleWriter{q: txdb.Queries})
	})
}

func (s *SQLStore) RecordDraw(ctx context.Context, audit DrawAudit) error {
	return s.db.Queries.CreateDrawAuditLog(ctx, dbgen.CreateDrawAuditLogParams{
		RunID:         audit.RunID,
		CompetitionID: audit.CompetitionID,
		Success:       audit.Success,
		Error:         audit.Error,
		MatchCount:    int64(audit.MatchCount),
		Log:           strings.Join(audit.Log, "\n"),
	})
}

type sqlScheduleWriter struct {
	q *dbgen.Queries
}

func (w sqlScheduleWriter) InsertRound(ctx context.Context, competitionID int64, roundNumber int) (int64, error) {
	return w.q.CreateRound(ctx, dbgen.CreateRoundParams{
		CompetitionID: competitionID,
		RoundNumber:   int64(roundNumber),
		Status:        RoundStatusPending,
	})
}

func (w sqlScheduleWriter) InsertMatches(ctx context.Context, competitionID, roundID int64, matches []Match) error {
	for _, match := range matches {
		var matchDate sql.NullTime
		if match.MatchDate != nil {
			matchDate = sql.NullTime{Time: *match.MatchDate, Valid: true}
		}
		status := match.Status
		if status == "" {
			status = MatchStatusScheduled
		}
		if _, err := w.q.CreateMatch(ctx, dbgen.CreateMatchParams{
			CompetitionID: competitionID,
			RoundID:       roundID,
			HomeTeamID:    match.HomeTeamID,
			AwayTeamID:    match.AwayTeamID,
			MatchDate:     matchDate,
			Status:        status,
		}); err != nil {
			return fmt.Errorf("insert match %d vs %d: %w", match.HomeTeamID, match.AwayTeamID, err)
		}
	}
	return nil
}

func teamFromRow(row dbgen.Team) Team {
	return Team{
		ID:          row.ID,
		Name:        row.Name,
		Country:     row.Country,
		Coefficient: row.Coefficient,
	}
}
