package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/proclubs/internal/config"
	"github.com/codr1/proclubs/internal/db"
	dbgen "github.com/codr1/proclubs/internal/db/generated"
	"github.com/codr1/proclubs/internal/draw"
	"github.com/codr1/proclubs/internal/ratelimit"
)

const (
	DrawRequestsJobName = "draw_requests"

	DrawRequestPending   = "pending"
	DrawRequestRunning   = "running"
	DrawRequestCompleted = "completed"
	DrawRequestFailed    = "failed"

	drawRequestsJobTimeout = 5 * time.Minute

	// DrawRequestStaleAfter is how long a request may stay running before
	// the job gives up on it.
	DrawRequestStaleAfter = drawRequestsJobTimeout

	drawRequestAbandonedError = "Draw request abandoned while running"
)

// DrawRequestProcessor works through queued draw requests: each one is
// claimed, drawn, saved on success and marked completed or failed.
type DrawRequestProcessor struct {
	database *db.DB
	store    *draw.SQLStore
	settings draw.Settings
	guard    *ratelimit.Limiter
	batch    int64
	now      func() time.Time
}

// NewDrawRequestProcessor builds a processor. guard may be nil; when set,
// saves share the HTTP handlers' per-competition in-flight guard.
func NewDrawRequestProcessor(database *db.DB, settings draw.Settings, batch int64, guard *ratelimit.Limiter) (*DrawRequestProcessor, error) {
	if database == nil {
		return nil, fmt.Errorf("draw request processor requires database")
	}
	store, err := draw.NewSQLStore(database)
	if err != nil {
		return nil, err
	}
	if _, err := settings.Options(); err != nil {
		return nil, err
	}
	if batch <= 0 {
		batch = 1
	}
	return &DrawRequestProcessor{
		database: database,
		store:    store,
		settings: settings,
		guard:    guard,
		batch:    batch,
		now:      time.Now,
	}, nil
}

// RegisterDrawRequestJob registers the draw_requests job on the singleton scheduler.
func RegisterDrawRequestJob(database *db.DB, cfg *config.Config, guard *ratelimit.Limiter) error {
	if cfg == nil {
		return fmt.Errorf("draw request job requires config")
	}
	processor, err := NewDrawRequestProcessor(database, draw.Settings{
		Strategy:  cfg.Draw.Strategy,
		Seed:      cfg.Draw.Seed,
		LogEvents: cfg.Draw.LogEvents,
	}, cfg.Scheduler.DrawRequestsBatch, guard)
	if err != nil {
		return err
	}

	cronExpr := cfg.Scheduler.DrawRequestsCron
	jobLogger := log.With().
		Str("component", "draw_requests_job").
		Str("job_name", DrawRequestsJobName).
		Str("cron", cronExpr).
		Logger()

	_, err = AddJob(DrawRequestsJobName, cronExpr, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), drawRequestsJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		processed, err := processor.Process(ctx)
		if processed > 0 {
			jobLogger.Info().Int("processed", processed).Msg("Draw requests processed")
		}
		return err
	})
	return err
}

// Process fails running requests older than DrawRequestStaleAfter, then
// handles up to one batch of pending requests and returns how many it
// finished. A request whose competition has a save in flight is left pending
// for the next run.
func (p *DrawRequestProcessor) Process(ctx context.Context) (int, error) {
	logger := log.Ctx(ctx)

	if err := p.failStale(ctx); err != nil {
		return 0, err
	}

	pending, err := p.database.Queries.ListPendingDrawRequests(ctx, p.batch)
	if err != nil {
		return 0, fmt.Errorf("list pending draw requests: %w", err)
	}

	processed := 0
	for _, request := range pending {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		requestLogger := logger.With().
			Int64("draw_request_id", request.ID).
			Int64("competition_id", request.CompetitionID).
			Logger()

		done, err := p.processOne(requestLogger.WithContext(ctx), request, &requestLogger)
		if err != nil {
			requestLogger.Error().Err(err).Msg("Failed to process draw request")
			continue
		}
		if done {
			processed++
		}
	}
	return processed, nil
}

// failStale closes out requests left running by a crashed process or a
// failed status update. They are failed rather than requeued since their
// schedule may already be saved.
func (p *DrawRequestProcessor) failStale(ctx context.Context) error {
	now := p.now().UTC()
	stale, err := p.database.Queries.FailStaleDrawRequests(ctx, dbgen.FailStaleDrawRequestsParams{
		Error:        drawRequestAbandonedError,
		CompletedAt:  now,
		ClaimedAfter: now.Add(-DrawRequestStaleAfter),
	})
	if err != nil {
		return fmt.Errorf("fail stale draw requests: %w", err)
	}
	if stale > 0 {
		log.Ctx(ctx).Warn().Int64("count", stale).Msg("Failed stale running draw requests")
	}
	return nil
}

func (p *DrawRequestProcessor) processOne(ctx context.Context, request dbgen.DrawRequest, logger *zerolog.Logger) (bool, error) {
	if p.guard != nil {
		release, err := p.guard.AcquireSave(request.CompetitionID)
		if errors.Is(err, ratelimit.ErrSaveInProgress) {
			logger.Debug().Msg("Draw request deferred: save in progress")
			return false, nil
		}
		if err != nil {
			return false, err
		}
		defer release()
	}

	claimed, err := p.database.Queries.ClaimDrawRequest(ctx, dbgen.ClaimDrawRequestParams{
		ID:        request.ID,
		ClaimedAt: p.now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("claim draw request: %w", err)
	}
	if claimed == 0 {
		logger.Debug().Msg("Draw request already claimed")
		return false, nil
	}

	roundsCreated, runErr := p.run(ctx, request.CompetitionID)

	params := dbgen.FinishDrawRequestParams{
		ID:            request.ID,
		Status:        DrawRequestCompleted,
		RoundsCreated: int64(roundsCreated),
		CompletedAt:   sql.NullTime{Time: p.now().UTC(), Valid: true},
	}
	if runErr != nil {
		params.Status = DrawRequestFailed
		params.Error = runErr.Error()
		params.RoundsCreated = 0
	}
	// Record the outcome even if ctx expired during the draw.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.database.Queries.FinishDrawRequest(finishCtx, params); err != nil {
		return false, fmt.Errorf("finish draw request: %w", err)
	}

	if runErr != nil {
		logger.Warn().Str("error", runErr.Error()).Msg("Draw request failed")
	} else {
		logger.Info().Int("rounds_created", roundsCreated).Msg("Draw request completed")
	}
	return true, nil
}

func (p *DrawRequestProcessor) run(ctx context.Context, competitionID int64) (int, error) {
	cfg, err := p.store.LoadConfig(ctx, competitionID)
	if err != nil {
		return 0, fmt.Errorf("load competition: %w", err)
	}
	engine, err := draw.NewStoreEngine(p.store, p.settings)
	if err != nil {
		return 0, err
	}
	result := engine.RunDraw(ctx, cfg)
	if !result.Success {
		return 0, errors.New(result.Error)
	}
	saved, err := draw.SaveDrawResults(ctx, p.store, competitionID, result.Matches)
	if err != nil {
		return 0, err
	}
	return len(saved), nil
}
