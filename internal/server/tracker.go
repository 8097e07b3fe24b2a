package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"chess-tracker/internal/api"
	"chess-tracker/internal/domain"
	"chess-tracker/internal/service"
)

// TrackerServer serves the aggregated history as JSON. An empty series is a
// valid 200 response, distinct from an upstream failure.
type TrackerServer struct {
	history *service.HistoryService
	h2h     *service.HeadToHeadService
	logger  zerolog.Logger
}

func NewTrackerServer(history *service.HistoryService, h2h *service.HeadToHeadService, logger zerolog.Logger) *TrackerServer {
	return &TrackerServer{history: history, h2h: h2h, logger: logger}
}

func (s *TrackerServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/player/{handle}/rating-history", s.handleRatingHistory)
	mux.HandleFunc("GET /api/head-to-head/{handle}/{opponent}", s.handleHeadToHead)
}

func (s *TrackerServer) handleRatingHistory(w http.ResponseWriter, r *http.Request) {
	handle := r.PathValue("handle")

	series, err := s.history.GetRatingHistory(r.Context(), handle)
	if err != nil {
		s.writeError(w, handle, err)
		return
	}
	if series == nil {
		series = domain.HistorySeries{}
	}
	s.writeJSON(w, series)
}

func (s *TrackerServer) handleHeadToHead(w http.ResponseWriter, r *http.Request) {
	handle := r.PathValue("handle")
	opponent := r.PathValue("opponent")

	games, err := s.h2h.GamesBetween(r.Context(), handle, opponent)
	if err != nil {
		s.writeError(w, handle, err)
		return
	}
	if games == nil {
		games = []domain.GameRecord{}
	}
	s.writeJSON(w, games)
}

func (s *TrackerServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *TrackerServer) writeError(w http.ResponseWriter, handle string, err error) {
	status := http.StatusBadGateway

	var reqErr *api.RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound {
		status = http.StatusNotFound
	}

	s.logger.Error().Err(err).Str("handle", handle).Int("status", status).Msg("request failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
