package dbgen

import (
	"context"
)

const createDrawAuditLog = `
INSERT INTO draw_audit_log (
    run_id,
    competition_id,
    success,
    error,
    match_count,
    log
) VALUES (?, ?, ?, ?, ?, ?)
`

type CreateDrawAuditLogParams struct {
	RunID         string `json:"run_id"`
	CompetitionID int64  `json:"competition_id"`
	Success       bool   `json:"success"`
	Error         string `json:"error"`
	MatchCount    int64  `json:"match_count"`
	Log           string `json:"log"`
}

func (q *Queries) CreateDrawAuditLog(ctx context.Context, arg CreateDrawAuditLogParams) error {
	_, err := q.db.ExecContext(ctx, createDrawAuditLog,
		arg.RunID,
		arg.CompetitionID,
		arg.Success,
		arg.Error,
		arg.MatchCount,
		arg.Log,
	)
	return err
}

const listDrawAuditLogs = `
SELECT id, run_id, competition_id, success, error, match_count, log, created_at
FROM draw_audit_log
WHERE competition_id = ?
ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListDrawAuditLogs(ctx context.Context, competitionID int64) ([]DrawAuditLog, error) {
	rows, err := q.db.QueryContext(ctx, listDrawAuditLogs, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DrawAuditLog{}
	for rows.Next() {
		var i DrawAuditLog
		if err := rows.Scan(
			&i.ID,
			&i.RunID,
			&i.CompetitionID,
			&i.Success,
			&i.Error,
			&i.MatchCount,
			&i.Log,
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
