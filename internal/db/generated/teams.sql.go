package dbgen

import (
	"context"
	"strings"
)

const createTeam = `
INSERT INTO teams (
    name,
    country,
    coefficient
) VALUES (?, ?, ?)
`

type CreateTeamParams struct {
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	Coefficient float64 `json:"coefficient"`
}

func (q *Queries) CreateTeam(ctx context.Context, arg CreateTeamParams) (Team, error) {
	result, err := q.db.ExecContext(ctx, createTeam, arg.Name, arg.Country, arg.Coefficient)
	if err != nil {
		return Team{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Team{}, err
	}
	return q.GetTeam(ctx, id)
}

const getTeam = `
SELECT id, name, country, coefficient, created_at
FROM teams
WHERE id = ?
`

func (q *Queries) GetTeam(ctx context.Context, id int64) (Team, error) {
	row := q.db.QueryRowContext(ctx, getTeam, id)
	var i Team
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Country,
		&i.Coefficient,
		&i.CreatedAt,
	)
	return i, err
}

const registerCompetitionTeam = `
INSERT INTO competition_teams (competition_id, team_id)
VALUES (?, ?)
`

type RegisterCompetitionTeamParams struct {
	CompetitionID int64 `json:"competition_id"`
	TeamID        int64 `json:"team_id"`
}

func (q *Queries) RegisterCompetitionTeam(ctx context.Context, arg RegisterCompetitionTeamParams) error {
	_, err := q.db.ExecContext(ctx, registerCompetitionTeam, arg.CompetitionID, arg.TeamID)
	return err
}

const listCompetitionTeamIDs = `
SELECT team_id
FROM competition_teams
WHERE competition_id = ?
ORDER BY created_at, team_id
`

func (q *Queries) ListCompetitionTeamIDs(ctx context.Context, competitionID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listCompetitionTeamIDs, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []int64{}
	for rows.Next() {
		var teamID int64
		if err := rows.Scan(&teamID); err != nil {
			return nil, err
		}
		items = append(items, teamID)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTeamsByIDs = `
SELECT id, name, country, coefficient, created_at
FROM teams
WHERE id IN (/*SLICE:ids*/?)
ORDER BY id
`

func (q *Queries) ListTeamsByIDs(ctx context.Context, ids []int64) ([]Team, error) {
	if len(ids) == 0 {
		return []Team{}, nil
	}
	query := listTeamsByIDs
	queryParams := make([]interface{}, 0, len(ids))
	for _, v := range ids {
		queryParams = append(queryParams, v)
	}
	query = strings.Replace(query, "/*SLICE:ids*/?", strings.Repeat(",?", len(ids))[1:], 1)
	rows, err := q.db.QueryContext(ctx, query, queryParams...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Team{}
	for rows.Next() {
		var i Team
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Country,
			&i.Coefficient,
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
