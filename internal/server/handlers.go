package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/linguiz/internal/api"
	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/grading"
)

// maxVerifyBody caps the verify request body.
const maxVerifyBody = 4 << 10

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, api.ErrorResponse{
		Error: api.ErrorDetail{Code: code, Message: message},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, api.HealthResponse{
		Status:     "healthy",
		APIVersion: api.APIVersion,
	})
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := exercise.Filter{
		Category: q.Get("category"),
		Level:    exercise.Level(strings.ToUpper(q.Get("difficulty"))),
	}
	if filter.Level != "" && !filter.Level.Valid() {
		respondError(w, http.StatusBadRequest, api.CodeBadRequest, "invalid difficulty: "+q.Get("difficulty"))
		return
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, api.CodeBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	exs, err := s.svc.FetchExercises(r.Context(), filter)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to list exercises", "error", err)
		respondError(w, http.StatusInternalServerError, api.CodeInternal, "failed to fetch exercises")
		return
	}
	if exs == nil {
		exs = []*exercise.Exercise{}
	}
	respondJSON(w, http.StatusOK, exs)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// An empty body is a timeout request, same as a blank answer.
	var req api.VerifyRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxVerifyBody)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, api.CodeBadRequest, "invalid request body")
		return
	}

	out, err := s.svc.VerifyAnswer(r.Context(), id, req.Answer)
	switch {
	case errors.Is(err, grading.ErrNotFound):
		respondError(w, http.StatusNotFound, api.CodeNotFound, "exercise not found")
		return
	case err != nil:
		s.logger.ErrorContext(r.Context(), "failed to verify answer", "exercise_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, api.CodeInternal, "failed to verify answer")
		return
	}
	respondJSON(w, http.StatusOK, out)
}
