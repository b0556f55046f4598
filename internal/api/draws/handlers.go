// internal/api/draws/handlers.go
package draws

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/proclubs/internal/api/apiutil"
	"github.com/codr1/proclubs/internal/config"
	appdb "github.com/codr1/proclubs/internal/db"
	dbgen "github.com/codr1/proclubs/internal/db/generated"
	"github.com/codr1/proclubs/internal/draw"
	"github.com/codr1/proclubs/internal/ratelimit"
)

const (
	drawTimeout          = 30 * time.Second
	drawQueryTimeout     = 5 * time.Second
	competitionIDPathKey = "id"
	requestIDPathKey     = "request_id"
	potsQueryKey         = "pots"
)

var (
	store      *appdb.DB
	drawStore  *draw.SQLStore
	settings   draw.Settings
	limiter    *ratelimit.Limiter
	trustProxy bool
)

type drawResponse struct {
	draw.Result
	Pots [][]draw.Team `json:"pots,omitempty"`
}

type saveRequest struct {
	Matches []draw.Match `json:"matches"`
}

type saveResponse struct {
	Rounds []draw.SavedRound `json:"rounds"`
}

type matchResponse struct {
	ID         int64      `json:"id"`
	HomeTeamID int64      `json:"home_team_id"`
	AwayTeamID int64      `json:"away_team_id"`
	MatchDate  *time.Time `json:"match_date"`
	Status     string     `json:"status"`
}

type roundResponse struct {
	ID          int64           `json:"id"`
	RoundNumber int64           `json:"round_number"`
	Status      string          `json:"status"`
	Matches     []matchResponse `json:"matches"`
}

type drawRequestResponse struct {
	ID            int64      `json:"id"`
	CompetitionID int64      `json:"competition_id"`
	Status        string     `json:"status"`
	Error         string     `json:"error,omitempty"`
	RoundsCreated int64      `json:"rounds_created"`
	RequestedAt   time.Time  `json:"requested_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

// InitHandlers must be called during server startup before handling requests.
// A nil limiter disables rate limiting and the save guard.
func InitHandlers(database *appdb.DB, cfg *config.Config, rateLimiter *ratelimit.Limiter) error {
	store = database
	drawStore = nil
	limiter = rateLimiter
	settings = draw.Settings{}
	trustProxy = false
	if database == nil {
		return nil
	}

	sqlStore, err := draw.NewSQLStore(database)
	if err != nil {
		return err
	}
	drawStore = sqlStore
	if cfg != nil {
		settings = draw.Settings{
			Strategy:  cfg.Draw.Strategy,
			Seed:      cfg.Draw.Seed,
			LogEvents: cfg.Draw.LogEvents,
		}
		trustProxy = cfg.RateLimit.TrustProxy
	}
	if _, err := settings.Options(); err != nil {
		return err
	}
	return nil
}

// POST /api/v1/competitions/{id}/draw
func HandleDrawPreview(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if drawStore == nil {
		logger.Error().Msg("Draw store not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	competitionID, err := apiutil.PathID(r, competitionIDPathKey)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Invalid competition id")
		return
	}
	potCount, err := apiutil.OptionalQueryInt(r, potsQueryKey)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Invalid pots")
		return
	}
	if !allowDraw(w, r, competitionID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), drawTimeout)
	defer cancel()

	cfg, err := loadDrawConfig(ctx, competitionID)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load competition")
		return
	}

	var pots [][]draw.Team
	if potCount > 0 {
		teams, err := drawStore.ListTeams(ctx, competitionID)
		if err != nil {
			apiutil.WriteHandlerError(w, r, err, "Failed to load teams")
			return
		}
		pots, err = draw.AssignPots(teams, potCount)
		if err != nil {
			apiutil.WriteHandlerError(w, r, apiutil.FieldError{Field: potsQueryKey, Reason: err.Error()}, "Invalid pots")
			return
		}
	}

	engine, err := draw.NewStoreEngine(drawStore, settings)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to create draw engine")
		return
	}
	if limiter != nil {
		limiter.RecordDraw(competitionID, ratelimit.GetClientIP(r, trustProxy))
	}
	result := engine.RunDraw(ctx, cfg)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	if err := apiutil.WriteJSON(w, status, drawResponse{Result: result, Pots: pots}); err != nil {
		logger.Error().Err(err).Int64("competition_id", competitionID).Msg("Failed to write draw response")
	}
}

// POST /api/v1/competitions/{id}/draw/save
func HandleDrawSave(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if drawStore == nil {
		logger.Error().Msg("Draw store not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	competitionID, err := apiutil.PathID(r, competitionIDPathKey)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Invalid competition id")
		return
	}
	var req saveRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(req.Matches) == 0 {
		apiutil.WriteHandlerError(w, r, apiutil.FieldError{Field: "matches", Reason: "must not be empty"}, "Invalid schedule")
		return
	}

	if limiter != nil {
		release, err := limiter.AcquireSave(competitionID)
		if err != nil {
			apiutil.WriteHandlerError(w, r, apiutil.HandlerError{
				Status:  http.StatusConflict,
				Message: "A save is already in progress for this competition",
				Err:     err,
			}, "Failed to save draw")
			return
		}
		defer release()
	}

	ctx, cancel := context.WithTimeout(r.Context(), drawTimeout)
	defer cancel()

	saved, err := saveSchedule(ctx, competitionID, req.Matches)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to save draw")
		return
	}

	logger.Info().
		Int64("competition_id", competitionID).
		Int("round_count", len(saved)).
		Int("match_count", len(req.Matches)).
		Msg("Draw saved")
	if err := apiutil.WriteJSON(w, http.StatusCreated, saveResponse{Rounds: saved}); err != nil {
		logger.Error().Err(err).Int64("competition_id", competitionID).Msg("Failed to write save response")
	}
}

func saveSchedule(ctx context.Context, competitionID int64, matches []draw.Match) ([]draw.SavedRound, error) {
	cfg, err := loadDrawConfig(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	teams, err := drawStore.ListTeams(ctx, competitionID)
	if err != nil {
		return nil, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load teams", Err: err}
	}
	if err := draw.ValidateSchedule(teams, cfg, matches); err != nil {
		return nil, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	}
	saved, err := draw.SaveDrawResults(ctx, drawStore, competitionID, matches)
	if err != nil {
		return nil, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to save draw", Err: err}
	}
	return saved, nil
}

// GET /api/v1/competitions/{id}/rounds
func HandleRoundsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if store == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	competitionID, err := apiutil.PathID(r, competitionIDPathKey)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Invalid competition id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), drawQueryTimeout)
	defer cancel()

	if err := ensureCompetition(ctx, store.Queries, competitionID); err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load competition")
		return
	}
	rounds, err := store.Queries.ListCompetitionRounds(ctx, competitionID)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load rounds")
		return
	}
	matches, err := store.Queries.ListCompetitionMatches(ctx, competitionID)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load matches")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"rounds": groupRounds(rounds, matches),
	}); err != nil {
		logger.Error().Err(err).Int64("competition_id", competitionID).Msg("Failed to write rounds response")
	}
}

func groupRounds(rounds []dbgen.Round, matches []dbgen.Match) []roundResponse {
	byRound := make(map[int64][]matchResponse, len(rounds))
	for _, match := range matches {
		var matchDate *time.Time
		if match.MatchDate.Valid {
			t := match.MatchDate.Time
			matchDate = &t
		}
		byRound[match.RoundID] = append(byRound[match.RoundID], matchResponse{
			ID:         match.ID,
			HomeTeamID: match.HomeTeamID,
			AwayTeamID: match.AwayTeamID,
			MatchDate:  matchDate,
			Status:     match.Status,
		})
	}

	response := make([]roundResponse, 0, len(rounds))
	for _, round := range rounds {
		roundMatches := byRound[round.ID]
		if roundMatches == nil {
			roundMatches = []matchResponse{}
		}
		response = append(response, roundResponse{
			ID:          round.ID,
			RoundNumber: round.RoundNumber,
			Status:      round.Status,
			Matches:     roundMatches,
		})
	}
	return response
}

// POST /api/v1/competitions/{id}/draw/requests
func HandleDrawRequestCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if store == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	competitionID, err := apiutil.PathID(r, competitionIDPathKey)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Invalid competition id")
		return
	}
	if !allowDraw(w, r, competitionID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), drawQueryTimeout)
	defer cancel()

	if err := ensureCompetition(ctx, store.Queries, competitionID); err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load competition")
		return
	}
	request, err := store.Queries.CreateDrawRequest(ctx, competitionID)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to queue draw request")
		return
	}
	if limiter != nil {
		limiter.RecordDraw(competitionID, ratelimit.GetClientIP(r, trustProxy))
	}

	logger.Info().
		Int64("competition_id", competitionID).
		Int64("draw_request_id", request.ID).
		Msg("Draw request queued")
	if err := apiutil.WriteJSON(w, http.StatusAccepted, newDrawRequestResponse(request)); err != nil {
		logger.Error().Err(err).Msg("Failed to write draw request response")
	}
}

// GET /api/v1/competitions/{id}/draw/requests/{request_id}
func HandleDrawRequestGet(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if store == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	competitionID, err := apiutil.PathID(r, competitionIDPathKey)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Invalid competition id")
		return
	}
	requestID, err := apiutil.PathID(r, requestIDPathKey)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Invalid draw request id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), drawQueryTimeout)
	defer cancel()

	request, err := store.Queries.GetDrawRequest(ctx, requestID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		apiutil.WriteHandlerError(w, r, err, "Failed to load draw request")
		return
	}
	if err != nil || request.CompetitionID != competitionID {
		apiutil.WriteError(w, r, http.StatusNotFound, "Draw request not found")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, newDrawRequestResponse(request)); err != nil {
		logger.Error().Err(err).Msg("Failed to write draw request response")
	}
}

func newDrawRequestResponse(request dbgen.DrawRequest) drawRequestResponse {
	response := drawRequestResponse{
		ID:            request.ID,
		CompetitionID: request.CompetitionID,
		Status:        request.Status,
		Error:         request.Error,
		RoundsCreated: request.RoundsCreated,
		RequestedAt:   request.RequestedAt,
	}
	if request.CompletedAt.Valid {
		completedAt := request.CompletedAt.Time
		response.CompletedAt = &completedAt
	}
	return response
}

// allowDraw writes a 429 and returns false when the competition or the
// client IP is over its draw budget.
func allowDraw(w http.ResponseWriter, r *http.Request, competitionID int64) bool {
	if limiter == nil {
		return true
	}
	ip := ratelimit.GetClientIP(r, trustProxy)
	result := limiter.CheckDraw(competitionID, ip)
	if result.Allowed {
		return true
	}

	ratelimit.LogRateLimitExceeded(competitionID, ip, result)
	retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	apiutil.WriteError(w, r, http.StatusTooManyRequests, "Too many draw requests, try again later")
	return false
}

func loadDrawConfig(ctx context.Context, competitionID int64) (draw.Config, error) {
	cfg, err := drawStore.LoadConfig(ctx, competitionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return draw.Config{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Competition not found", Err: err}
		}
		return draw.Config{}, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load competition", Err: err}
	}
	return cfg, nil
}

func ensureCompetition(ctx context.Context, q *dbgen.Queries, competitionID int64) error {
	if _, err := q.GetCompetition(ctx, competitionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Competition not found", Err: err}
		}
		return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load competition", Err: err}
	}
	return nil
}
