package dbgen

import (
	"context"
)

const createCompetition = `
INSERT INTO competitions (
    name,
    number_of_teams,
    matches_per_team,
    same_country_restriction,
    home_away_balance
) VALUES (?, ?, ?, ?, ?)
`

type CreateCompetitionParams struct {
	Name                   string `json:"name"`
	NumberOfTeams          int64  `json:"number_of_teams"`
	MatchesPerTeam         int64  `json:"matches_per_team"`
	SameCountryRestriction bool   `json:"same_country_restriction"`
	HomeAwayBalance        bool   `json:"home_away_balance"`
}

func (q *Queries) CreateCompetition(ctx context.Context, arg CreateCompetitionParams) (Competition, error) {
	result, err := q.db.ExecContext(ctx, createCompetition,
		arg.Name,
		arg.NumberOfTeams,
		arg.MatchesPerTeam,
		arg.SameCountryRestriction,
		arg.HomeAwayBalance,
	)
	if err != nil {
		return Competition{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Competition{}, err
	}
	return q.GetCompetition(ctx, id)
}

const getCompetition = `
SELECT id, name, number_of_teams, matches_per_team, same_country_restriction, home_away_balance, created_at, updated_at
FROM competitions
WHERE id = ?
`

func (q *Queries) GetCompetition(ctx context.Context, id int64) (Competition, error) {
	row := q.db.QueryRowContext(ctx, getCompetition, id)
	var i Competition
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.NumberOfTeams,
		&i.MatchesPerTeam,
		&i.SameCountryRestriction,
		&i.HomeAwayBalance,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createDrawExclusion = `
INSERT INTO draw_exclusions (
    competition_id,
    team_a_id,
    team_b_id,
    reason
) VALUES (?, ?, ?, ?)
`

type CreateDrawExclusionParams struct {
	CompetitionID int64  `json:"competition_id"`
	TeamAID       int64  `json:"team_a_id"`
	TeamBID       int64  `json:"team_b_id"`
	Reason        string `json:"reason"`
}

func (q *Queries) CreateDrawExclusion(ctx context.Context, arg CreateDrawExclusionParams) (DrawExclusion, error) {
	result, err := q.db.ExecContext(ctx, createDrawExclusion,
		arg.CompetitionID,
		arg.TeamAID,
		arg.TeamBID,
		arg.Reason,
	)
	if err != nil {
		return DrawExclusion{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return DrawExclusion{}, err
	}
	row := q.db.QueryRowContext(ctx, getDrawExclusion, id)
	var i DrawExclusion
	err = row.Scan(
		&i.ID,
		&i.CompetitionID,
		&i.TeamAID,
		&i.TeamBID,
		&i.Reason,
		&i.CreatedAt,
	)
	return i, err
}

const getDrawExclusion = `
SELECT id, competition_id, team_a_id, team_b_id, reason, created_at
FROM draw_exclusions
WHERE id = ?
`

const listDrawExclusions = `
SELECT id, competition_id, team_a_id, team_b_id, reason, created_at
FROM draw_exclusions
WHERE competition_id = ?
ORDER BY id
`

func (q *Queries) ListDrawExclusions(ctx context.Context, competitionID int64) ([]DrawExclusion, error) {
	rows, err := q.db.QueryContext(ctx, listDrawExclusions, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DrawExclusion{}
	for rows.Next() {
		var i DrawExclusion
		if err := rows.Scan(
			&i.ID,
			&i.CompetitionID,
			&i.TeamAID,
			&i.TeamBID,
			&i.Reason,
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
