package dbgen

import (
	"context"
	"database/sql"
)

const createRound = `
INSERT INTO rounds (
    competition_id,
    round_number,
    status
) VALUES (?, ?, ?)
`

type CreateRoundParams struct {
	CompetitionID int64  `json:"competition_id"`
	RoundNumber   int64  `json:"round_number"`
	Status        string `json:"status"`
}

// CreateRound inserts a round and returns its generated id.
func (q *Queries) CreateRound(ctx context.Context, arg CreateRoundParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createRound, arg.CompetitionID, arg.RoundNumber, arg.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const createMatch = `
INSERT INTO matches (
    competition_id,
    round_id,
    home_team_id,
    away_team_id,
    match_date,
    status
) VALUES (?, ?, ?, ?, ?, ?)
`

type CreateMatchParams struct {
	CompetitionID int64        `json:"competition_id"`
	RoundID       int64        `json:"round_id"`
	HomeTeamID    int64        `json:"home_team_id"`
	AwayTeamID    int64        `json:"away_team_id"`
	MatchDate     sql.NullTime `json:"match_date"`
	Status        string       `json:"status"`
}

func (q *Queries) CreateMatch(ctx context.Context, arg CreateMatchParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createMatch,
		arg.CompetitionID,
		arg.RoundID,
		arg.HomeTeamID,
		arg.AwayTeamID,
		arg.MatchDate,
		arg.Status,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const listCompetitionRounds = `
SELECT id, competition_id, round_number, status, created_at
FROM rounds
WHERE competition_id = ?
ORDER BY round_number, id
`

func (q *Queries) ListCompetitionRounds(ctx context.Context, competitionID int64) ([]Round, error) {
	rows, err := q.db.QueryContext(ctx, listCompetitionRounds, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Round{}
	for rows.Next() {
		var i Round
		if err := rows.Scan(
			&i.ID,
			&i.CompetitionID,
			&i.RoundNumber,
			&i.Status,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listCompetitionMatches = `
SELECT id, competition_id, round_id, home_team_id, away_team_id, match_date, status, created_at
FROM matches
WHERE competition_id = ?
ORDER BY round_id, id
`

func (q *Queries) ListCompetitionMatches(ctx context.Context, competitionID int64) ([]Match, error) {
	rows, err := q.db.QueryContext(ctx, listCompetitionMatches, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Match{}
	for rows.Next() {
		var i Match
		if err := rows.Scan(
			&i.ID,
			&i.CompetitionID,
			&i.RoundID,
			&i.HomeTeamID,
			&i.AwayTeamID,
			&i.MatchDate,
			&i.Status,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
