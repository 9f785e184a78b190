// Package http is the thin JSON glue over the quiz service. Schema-level
// concerns (field authorization, GraphQL wiring) belong to the hosting
// platform; this surface only frames the four store operations plus the
// stats read.
package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"lecture-quiz-service/internal/app"
	"lecture-quiz-service/internal/domain"
)

type Handler struct {
	service *app.QuizService
	stats   app.StatsReader // nil when the backend has no stats capability
}

func NewHandler(service *app.QuizService, stats app.StatsReader) *Handler {
	return &Handler{service: service, stats: stats}
}

// Register mounts the quiz routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/events/{eventID}/quiz/info", h.getQuizInfo)
	mux.HandleFunc("GET /api/events/{eventID}/quiz", h.getQuizDefinition)
	mux.HandleFunc("PUT /api/events/{eventID}/quiz", h.createQuiz)
	mux.HandleFunc("POST /api/events/{eventID}/quiz/submission", h.submitQuiz)
	mux.HandleFunc("GET /api/events/{eventID}/quiz/stats", h.getStats)
}

func (h *Handler) getQuizInfo(w http.ResponseWriter, r *http.Request) {
	info := h.service.GetQuizInfo(r.Context(), r.PathValue("eventID"))
	writeJSON(w, http.StatusOK, info)
}

// getQuizDefinition serves the quiz-taking surface; correct answers are
// stripped before the definition leaves the process.
func (h *Handler) getQuizDefinition(w http.ResponseWriter, r *http.Request) {
	quiz := h.service.GetQuizDefinition(r.Context(), r.PathValue("eventID"))
	if quiz == nil {
		writeError(w, http.StatusNotFound, "no quiz for event")
		return
	}
	writeJSON(w, http.StatusOK, quiz.Sanitized())
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var input domain.QuizInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "malformed quiz input")
		return
	}

	quiz, err := h.service.CreateQuiz(r.Context(), r.PathValue("eventID"), input, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var input domain.AnswersInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "malformed answers input")
		return
	}

	result, err := h.service.SubmitQuiz(r.Context(), r.PathValue("eventID"), input, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeError(w, http.StatusNotFound, "stats not supported by this backend")
		return
	}
	stats, err := h.stats.EventStats(r.Context(), r.PathValue("eventID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Printf("unclassified quiz error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
