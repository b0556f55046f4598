// cmd/server/server.go
package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/proclubs/internal/api"
	"github.com/codr1/proclubs/internal/api/apiutil"
	"github.com/codr1/proclubs/internal/api/competitions"
	"github.com/codr1/proclubs/internal/api/draws"
	"github.com/codr1/proclubs/internal/config"
	"github.com/codr1/proclubs/internal/db"
	"github.com/codr1/proclubs/internal/ratelimit"
)

func newServer(cfg *config.Config, database *db.DB, limiter *ratelimit.Limiter) (*http.Server, error) {
	competitions.InitHandlers(database)
	if err := draws.InitHandlers(database, cfg, limiter); err != nil {
		return nil, err
	}

	router := http.NewServeMux()
	registerRoutes(router, database)

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, nil
}

func registerRoutes(mux *http.ServeMux, database *db.DB) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := database.PingContext(ctx); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Health check failed")
			apiutil.WriteError(w, r, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		if err := apiutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write health response")
		}
	})

	// Competition routes
	mux.HandleFunc("POST /api/v1/competitions", competitions.HandleCompetitionCreate)
	mux.HandleFunc("GET /api/v1/competitions/{id}", competitions.HandleCompetitionGet)
	mux.HandleFunc("POST /api/v1/competitions/{id}/teams", competitions.HandleCompetitionTeamRegister)
	mux.HandleFunc("GET /api/v1/competitions/{id}/teams", competitions.HandleCompetitionTeamsList)
	mux.HandleFunc("POST /api/v1/competitions/{id}/exclusions", competitions.HandleExclusionCreate)
	mux.HandleFunc("POST /api/v1/teams", competitions.HandleTeamCreate)

	// Draw routes
	mux.HandleFunc("POST /api/v1/competitions/{id}/draw", draws.HandleDrawPreview)
	mux.HandleFunc("POST /api/v1/competitions/{id}/draw/save", draws.HandleDrawSave)
	mux.HandleFunc("GET /api/v1/competitions/{id}/rounds", draws.HandleRoundsList)
	mux.HandleFunc("POST /api/v1/competitions/{id}/draw/requests", draws.HandleDrawRequestCreate)
	mux.HandleFunc("GET /api/v1/competitions/{id}/draw/requests/{request_id}", draws.HandleDrawRequestGet)
}
