// internal/api/competitions/handlers.go
package competitions

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/proclubs/internal/api/apiutil"
	appdb "github.com/codr1/proclubs/internal/db"
	dbgen "github.com/codr1/proclubs/internal/db/generated"
)

const (
	competitionQueryTimeout = 5 * time.Second
	competitionIDPathKey    = "id"
	maxNameLength           = 120
)

var (
	store *appdb.DB
)

type competitionRequest struct {
	Name                   string `json:"name"`
	NumberOfTeams          int64  `json:"numberOfTeams"`
	MatchesPerTeam         int64  `json:"matchesPerTeam"`
	SameCountryRestriction bool   `json:"sameCountryRestriction"`
	HomeAwayBalance        *bool  `json:"homeAwayBalance"`
}

type teamRequest struct {
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	Coefficient float64 `json:"coefficient"`
}

type registrationRequest struct {
	TeamID int64 `json:"teamId"`
}

type exclusionRequest struct {
	TeamA  int64  `json:"teamA"`
	TeamB  int64  `json:"teamB"`
	Reason string `json:"reason"`
}

type competitionResponse struct {
	dbgen.Competition
	Teams      []dbgen.Team          `json:"teams"`
	Exclusions []dbgen.DrawExclusion `json:"exclusions"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB) {
	store = database
}

func loadDB() *appdb.DB {
	return store
}

// POST /api/v1/competitions
func HandleCompetitionCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req competitionRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	params, err := req.toParams()
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Invalid competition")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), competitionQueryTimeout)
	defer cancel()

	competition, err := database.Queries.CreateCompetition(ctx, params)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to create competition")
		return
	}

	logger.Info().Int64("competition_id", competition.ID).Msg("Competition created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, competition); err != nil {
		logger.Error().Err(err).Msg("Failed to write competition response")
	}
}

func (req competitionRequest) toParams() (dbgen.CreateCompetitionParams, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return dbgen.CreateCompetitionParams{}, apiutil.FieldError{Field: "name", Reason: "is required"}
	case len(name) > maxNameLength:
		return dbgen.CreateCompetitionParams{}, apiutil.FieldError{Field: "name", Reason: "is too long"}
	case req.NumberOfTeams < 2:
		return dbgen.CreateCompetitionParams{}, apiutil.FieldError{Field: "numberOfTeams", Reason: "must be at least 2"}
	case req.MatchesPerTeam < 1:
		return dbgen.CreateCompetitionParams{}, apiutil.FieldError{Field: "matchesPerTeam", Reason: "must be at least 1"}
	case req.MatchesPerTeam >= req.NumberOfTeams:
		return dbgen.CreateCompetitionParams{}, apiutil.FieldError{Field: "matchesPerTeam", Reason: "must be less than numberOfTeams"}
	}

	homeAwayBalance := true
	if req.HomeAwayBalance != nil {
		homeAwayBalance = *req.HomeAwayBalance
	}
	return dbgen.CreateCompetitionParams{
		Name:                   name,
		NumberOfTeams:          req.NumberOfTeams,
		MatchesPerTeam:         req.MatchesPerTeam,
		SameCountryRestriction: req.SameCountryRestriction,
		HomeAwayBalance:        homeAwayBalance,
	}, nil
}

// GET /api/v1/competitions/{id}
func HandleCompetitionGet(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	competitionID, err := apiutil.PathID(r, competitionIDPathKey)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Invalid competition id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), competitionQueryTimeout)
	defer cancel()

	competition, err := loadCompetition(ctx, database.Queries, competitionID)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load competition")
		return
	}
	teams, err := listRegisteredTeams(ctx, database.Queries, competitionID)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load teams")
		return
	}
	exclusions, err := database.Queries.ListDrawExclusions(ctx, competitionID)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load exclusions")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, competitionResponse{
		Competition: competition,
		Teams:       teams,
		Exclusions:  exclusions,
	}); err != nil {
		logger.Error().Err(err).Int64("competition_id", competitionID).Msg("Failed to write competition response")
	}
}

// POST /api/v1/teams
func HandleTeamCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var req teamRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		apiutil.WriteHandlerError(w, r, apiutil.FieldError{Field: "name", Reason: "is required"}, "Invalid team")
		return
	}
	if req.Coefficient < 0 {
		apiutil.WriteHandlerError(w, r, apiutil.FieldError{Field: "coefficient", Reason: "must be 0 or greater"}, "Invalid team")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), competitionQueryTimeout)
	defer cancel()

	team, err := database.Queries.CreateTeam(ctx, dbgen.CreateTeamParams{
		Name:        name,
		Country:     strings.ToUpper(strings.TrimSpace(req.Country)),
		Coefficient: req.Coefficient,
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to create team")
		return
	}

	logger.Info().Int64("team_id", team.ID).Msg("Team created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, team); err != nil {
		logger.Error().Err(err).Msg("Failed to write team response")
	}
}

// POST /api/v1/competitions/{id}/teams
func HandleCompetitionTeamRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	competitionID, err := apiutil.PathID(r, competitionIDPathKey)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Invalid competition id")
		return
	}
	var req registrationRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.TeamID <= 0 {
		apiutil.WriteHandlerError(w, r, apiutil.FieldError{Field: "teamId", Reason: "must be a positive integer"}, "Invalid registration")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), competitionQueryTimeout)
	defer cancel()

	var team dbgen.Team
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		competition, err := loadCompetition(ctx, txdb.Queries, competitionID)
		if err != nil {
			return err
		}
		team, err = txdb.Queries.GetTeam(ctx, req.TeamID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apiutil.HandlerError{Status: http.StatusNotFound, Message: "Team not found", Err: err}
			}
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load team", Err: err}
		}
		registered, err := txdb.Queries.ListCompetitionTeamIDs(ctx, competitionID)
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load roster", Err: err}
		}
		for _, id := range registered {
			if id == req.TeamID {
				return apiutil.HandlerError{Status: http.StatusConflict, Message: "Team is already registered"}
			}
		}
		if int64(len(registered)) >= competition.NumberOfTeams {
			return apiutil.HandlerError{Status: http.StatusConflict, Message: "Competition roster is full"}
		}
		if err := txdb.Queries.RegisterCompetitionTeam(ctx, dbgen.RegisterCompetitionTeamParams{
			CompetitionID: competitionID,
			TeamID:        req.TeamID,
		}); err != nil {
			if appdb.IsUniqueViolation(err) {
				return apiutil.HandlerError{Status: http.StatusConflict, Message: "Team is already registered", Err: err}
			}
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to register team", Err: err}
		}
		return nil
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to register team")
		return
	}

	logger.Info().
		Int64("competition_id", competitionID).
		Int64("team_id", req.TeamID).
		Msg("Team registered")
	if err := apiutil.WriteJSON(w, http.StatusCreated, team); err != nil {
		logger.Error().Err(err).Msg("Failed to write registration response")
	}
}

// GET /api/v1/competitions/{id}/teams
func HandleCompetitionTeamsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	competitionID, err := apiutil.PathID(r, competitionIDPathKey)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Invalid competition id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), competitionQueryTimeout)
	defer cancel()

	if _, err := loadCompetition(ctx, database.Queries, competitionID); err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load competition")
		return
	}
	teams, err := listRegisteredTeams(ctx, database.Queries, competitionID)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to load teams")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"teams": teams}); err != nil {
		logger.Error().Err(err).Msg("Failed to write teams response")
	}
}

// POST /api/v1/competitions/{id}/exclusions
func HandleExclusionCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	database := loadDB()
	if database == nil {
		logger.Error().Msg("Database not initialized")
		apiutil.WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	competitionID, err := apiutil.PathID(r, competitionIDPathKey)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Invalid competition id")
		return
	}
	var req exclusionRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	switch {
	case req.TeamA <= 0:
		apiutil.WriteHandlerError(w, r, apiutil.FieldError{Field: "teamA", Reason: "must be a positive integer"}, "Invalid exclusion")
		return
	case req.TeamB <= 0:
		apiutil.WriteHandlerError(w, r, apiutil.FieldError{Field: "teamB", Reason: "must be a positive integer"}, "Invalid exclusion")
		return
	case req.TeamA == req.TeamB:
		apiutil.WriteHandlerError(w, r, apiutil.FieldError{Field: "teamB", Reason: "must differ from teamA"}, "Invalid exclusion")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), competitionQueryTimeout)
	defer cancel()

	var exclusion dbgen.DrawExclusion
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		if _, err := loadCompetition(ctx, txdb.Queries, competitionID); err != nil {
			return err
		}
		registered, err := txdb.Queries.ListCompetitionTeamIDs(ctx, competitionID)
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load roster", Err: err}
		}
		if !containsID(registered, req.TeamA) || !containsID(registered, req.TeamB) {
			return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Both teams must be registered to the competition"}
		}
		exclusion, err = txdb.Queries.CreateDrawExclusion(ctx, dbgen.CreateDrawExclusionParams{
			CompetitionID: competitionID,
			TeamAID:       req.TeamA,
			TeamBID:       req.TeamB,
			Reason:        strings.TrimSpace(req.Reason),
		})
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to create exclusion", Err: err}
		}
		return nil
	})
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to create exclusion")
		return
	}

	logger.Info().
		Int64("competition_id", competitionID).
		Int64("exclusion_id", exclusion.ID).
		Msg("Draw exclusion created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, exclusion); err != nil {
		logger.Error().Err(err).Msg("Failed to write exclusion response")
	}
}

func loadCompetition(ctx context.Context, q *dbgen.Queries, competitionID int64) (dbgen.Competition, error) {
	competition, err := q.GetCompetition(ctx, competitionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Competition{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Competition not found", Err: err}
		}
		return dbgen.Competition{}, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load competition", Err: err}
	}
	return competition, nil
}

func listRegisteredTeams(ctx context.Context, q *dbgen.Queries, competitionID int64) ([]dbgen.Team, error) {
	ids, err := q.ListCompetitionTeamIDs(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	rows, err := q.ListTeamsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]dbgen.Team, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	teams := make([]dbgen.Team, 0, len(ids))
	for _, id := range ids {
		if team, ok := byID[id]; ok {
			teams = append(teams, team)
		}
	}
	return teams, nil
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
