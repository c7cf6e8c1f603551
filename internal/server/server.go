package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"tourney-rating/internal/rating"
	"tourney-rating/internal/repository"
	"tourney-rating/internal/service"

	"github.com/rs/zerolog"
)

// RatingServer is the thin JSON surface over the engine. Handlers only
// decode, delegate and encode; no scoring logic lives here.
type RatingServer struct {
	applier  *service.Applier
	sync     *service.SyncService
	decay    *service.DecayService
	profiles *service.ProfileService
	players  *repository.PlayerRepository
	history  *repository.HistoryRepository
	logger   zerolog.Logger
}

func NewRatingServer(
	applier *service.Applier,
	syncSvc *service.SyncService,
	decaySvc *service.DecayService,
	profiles *service.ProfileService,
	players *repository.PlayerRepository,
	history *repository.HistoryRepository,
	logger zerolog.Logger,
) *RatingServer {
	return &RatingServer{
		applier:  applier,
		sync:     syncSvc,
		decay:    decaySvc,
		profiles: profiles,
		players:  players,
		history:  history,
		logger:   logger,
	}
}

// Register mounts every route on the mux.
func (s *RatingServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/tournaments/{id}/apply", s.handleApply)
	mux.HandleFunc("POST /v1/tournaments/{id}/import", s.handleImport)
	mux.HandleFunc("GET /v1/players/{id}", s.handleGetPlayer)
	mux.HandleFunc("GET /v1/players/{id}/history", s.handleGetHistory)
	mux.HandleFunc("GET /v1/metrics", s.handleMetrics)
	mux.HandleFunc("GET /v1/anomalies", s.handleAnomalies)
	mux.HandleFunc("POST /v1/profiles/evaluate", s.handleEvaluateProfile)
	mux.HandleFunc("POST /v1/profiles/reload", s.handleReloadProfile)
	mux.HandleFunc("POST /v1/decay", s.handleDecay)
}

func (s *RatingServer) handleApply(w http.ResponseWriter, r *http.Request) {
	tournamentID := r.PathValue("id")

	report, err := s.applier.ApplyTournament(r.Context(), tournamentID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *RatingServer) handleImport(w http.ResponseWriter, r *http.Request) {
	tournamentID := r.PathValue("id")

	if err := s.sync.ImportTournament(r.Context(), tournamentID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"tournament_id": tournamentID, "status": "imported"})
}

func (s *RatingServer) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.players.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"player_id":     player.PlayerID,
		"name":          player.Name,
		"rating":        player.Rating,
		"events_rated":  player.EventsRated,
		"last_event_at": player.LastEventAt,
	})
}

func (s *RatingServer) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.history.ListByPlayer(r.Context(), r.PathValue("id"), 50)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"history": records})
}

func (s *RatingServer) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.applier.Metrics())
}

func (s *RatingServer) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	outliers, err := s.applier.DetectAnomalies(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"anomalies": outliers})
}

func (s *RatingServer) handleEvaluateProfile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}
	evaluation, err := s.profiles.Evaluate(body)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, evaluation)
}

func (s *RatingServer) handleReloadProfile(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.profiles.Reload(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"profile_id":   cfg.ProfileID,
		"health_score": rating.HealthScore(cfg),
	})
}

func (s *RatingServer) handleDecay(w http.ResponseWriter, r *http.Request) {
	decayed, err := s.decay.Run(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"decayed": decayed})
}

func (s *RatingServer) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, rating.ErrProfileNotFound):
		status = http.StatusNotFound
	case errors.Is(err, rating.ErrConfigInvalid), errors.Is(err, rating.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *RatingServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}
