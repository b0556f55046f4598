package dbgen

import (
	"context"
	"database/sql"
	"time"
)

const createDrawRequest = `
INSERT INTO draw_requests (competition_id, status)
VALUES (?, 'pending')
`

func (q *Queries) CreateDrawRequest(ctx context.Context, competitionID int64) (DrawRequest, error) {
	result, err := q.db.ExecContext(ctx, createDrawRequest, competitionID)
	if err != nil {
		return DrawRequest{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return DrawRequest{}, err
	}
	return q.GetDrawRequest(ctx, id)
}

const getDrawRequest = `
SELECT id, competition_id, status, error, rounds_created, requested_at, completed_at, claimed_at
FROM draw_requests
WHERE id = ?
`

func (q *Queries) GetDrawRequest(ctx context.Context, id int64) (DrawRequest, error) {
	row := q.db.QueryRowContext(ctx, getDrawRequest, id)
	var i DrawRequest
	err := row.Scan(
		&i.ID,
		&i.CompetitionID,
		&i.Status,
		&i.Error,
		&i.RoundsCreated,
		&i.RequestedAt,
		&i.CompletedAt,
		&i.ClaimedAt,
	)
	return i, err
}

const listPendingDrawRequests = `
SELECT id, competition_id, status, error, rounds_created, requested_at, completed_at, claimed_at
FROM draw_requests
WHERE status = 'pending'
ORDER BY requested_at, id
LIMIT ?
`

func (q *Queries) ListPendingDrawRequests(ctx context.Context, limit int64) ([]DrawRequest, error) {
	rows, err := q.db.QueryContext(ctx, listPendingDrawRequests, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DrawRequest{}
	for rows.Next() {
		var i DrawRequest
		if err := rows.Scan(
			&i.ID,
			&i.CompetitionID,
			&i.Status,
			&i.Error,
			&i.RoundsCreated,
			&i.RequestedAt,
			&i.CompletedAt,
			&i.ClaimedAt,
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

const claimDrawRequest = `
UPDATE draw_requests
SET status = 'running',
    claimed_at = ?
WHERE id = ? AND status = 'pending'
`

type ClaimDrawRequestParams struct {
	ID        int64     `json:"id"`
	ClaimedAt time.Time `json:"claimed_at"`
}

// ClaimDrawRequest moves a pending request to running and reports the affected row count.
func (q *Queries) ClaimDrawRequest(ctx context.Context, arg ClaimDrawRequestParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, claimDrawRequest, arg.ClaimedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const failStaleDrawRequests = `
UPDATE draw_requests
SET status = 'failed',
    error = ?,
    completed_at = ?
WHERE status = 'running' AND claimed_at < ?
`

type FailStaleDrawRequestsParams struct {
	Error        string    `json:"error"`
	CompletedAt  time.Time `json:"completed_at"`
	ClaimedAfter time.Time `json:"claimed_after"`
}

// FailStaleDrawRequests fails running requests claimed before ClaimedAfter.
func (q *Queries) FailStaleDrawRequests(ctx context.Context, arg FailStaleDrawRequestsParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, failStaleDrawRequests, arg.Error, arg.CompletedAt, arg.ClaimedAfter)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const finishDrawRequest = `
UPDATE draw_requests
SET status = ?,
    error = ?,
    rounds_created = ?,
    completed_at = ?
WHERE id = ?
`

type FinishDrawRequestParams struct {
	ID            int64        `json:"id"`
	Status        string       `json:"status"`
	Error         string       `json:"error"`
	RoundsCreated int64        `json:"rounds_created"`
	CompletedAt   sql.NullTime `json:"completed_at"`
}

func (q *Queries) FinishDrawRequest(ctx context.Context, arg FinishDrawRequestParams) error {
	_, err := q.db.ExecContext(ctx, finishDrawRequest,
		arg.Status,
		arg.Error,
		arg.RoundsCreated,
		arg.CompletedAt,
		arg.ID,
	)
	return err
}
