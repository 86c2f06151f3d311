// Package chi exposes the HTTP API: chat, similarity screening and
// record management for the innovation collection.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/innoreg/internal/domain"
	chatuc "github.com/kailas-cloud/innoreg/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/innoreg/internal/usecase/health"
	recorduc "github.com/kailas-cloud/innoreg/internal/usecase/record"
	similarityuc "github.com/kailas-cloud/innoreg/internal/usecase/similarity"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the use case services into chi routes.
type Server struct {
	records       *recorduc.Service
	chat          *chatuc.Service
	similarity    *similarityuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	records *recorduc.Service,
	chat *chatuc.Service,
	similarity *similarityuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		records:    records,
		chat:       chat,
		similarity: similarity,
		health:     health,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, codeRecordNotFound),
		sentinelHandler(domain.ErrConversationNotFound, http.StatusNotFound, codeConversationNotFound),
		sentinelHandler(domain.ErrInvalidRecord, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeVectorDimMismatch),
		sentinelHandler(domain.ErrConversationBusy, http.StatusConflict, codeConversationBusy),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeAIProviderError),
		sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, codeAIProviderError),
		sentinelHandler(domain.ErrMalformedVerdict, http.StatusBadGateway, codeMalformedVerdict),
	}
	return s
}

// Routes registers all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/chat", s.Chat)
	r.Get("/v1/conversations/{id}", s.ConversationHistory)
	r.Post("/v1/similarity", s.ScreenSimilarity)
	r.Put("/v1/records/{id}", s.UpsertRecord)
	r.Get("/v1/records/{id}", s.GetRecord)
	r.Delete("/v1/records/{id}", s.DeleteRecord)
	r.Get("/v1/records", s.ListRecords)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Chat handles POST /v1/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	records, err := s.records.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	answer, err := s.chat.Ask(r.Context(), req.ConversationID, req.Query, records)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		ConversationID: answer.ConversationID,
		Answer:         answer.Text,
		IsRAG:          answer.IsRAG,
	})
}

// ConversationHistory handles GET /v1/conversations/{id}.
func (s *Server) ConversationHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	messages, err := s.chat.History(id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]messageResponse, len(messages))
	for i, m := range messages {
		items[i] = messageToResponse(m)
	}

	writeJSON(w, http.StatusOK, conversationResponse{
		ConversationID: id,
		Messages:       items,
	})
}

// ScreenSimilarity handles POST /v1/similarity.
func (s *Server) ScreenSimilarity(w http.ResponseWriter, r *http.Request) {
	var req similarityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	refs, err := s.records.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	v, err := s.similarity.Classify(r.Context(), similarityuc.Candidate{
		Title:   req.Title,
		Content: req.Content,
	}, refs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verdictToResponse(v))
}

// UpsertRecord handles PUT /v1/records/{id}.
func (s *Server) UpsertRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rec, err := s.records.Upsert(r.Context(), recorduc.Input{
		ID:      id,
		Title:   req.Title,
		Content: req.Content,
		Authors: req.Authors,
		Units:   req.Units,
		Level:   req.Level,
		Year:    req.Year,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToResponse(rec))
}

// GetRecord handles GET /v1/records/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.records.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToResponse(rec))
}

// DeleteRecord handles DELETE /v1/records/{id}.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.records.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRecords handles GET /v1/records.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]recordResponse, len(records))
	for i := range records {
		items[i] = recordToResponse(records[i])
	}

	writeJSON(w, http.StatusOK, recordListResponse{
		Items: items,
		Total: len(items),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrRecordNotFound,
		domain.ErrConversationNotFound,
		domain.ErrInvalidRecord,
		domain.ErrEmptyQuery,
		domain.ErrVectorDimMismatch,
		domain.ErrConversationBusy,
		domain.ErrRateLimited,
		domain.ErrEmbeddingUnavailable,
		domain.ErrGenerationFailed,
		domain.ErrMalformedVerdict,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
