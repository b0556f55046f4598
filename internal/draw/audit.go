package draw

import "context"

// DrawAudit is the record handed to the audit sink after every draw run.
type DrawAudit struct {
	RunID         string
	CompetitionID int64
	Success       bool
	Error         string
	MatchCount    int
	Log           []string
}

// AuditSink receives draw audits. Sink failures are logged, never returned.
type AuditSink interface {
	RecordDraw(ctx context.Context, audit DrawAudit) error
}
