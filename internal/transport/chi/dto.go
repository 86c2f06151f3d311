package chi

import (
	"time"

	domrec "github.com/kailas-cloud/innoreg/internal/domain/record"
	"github.com/kailas-cloud/innoreg/internal/domain/verdict"
	chatuc "github.com/kailas-cloud/innoreg/internal/usecase/chat"
)

// errorCode is the machine-readable error identifier in API responses.
type errorCode string

const (
	codeBadRequest           errorCode = "bad_request"
	codeValidationFailed     errorCode = "validation_failed"
	codeRecordNotFound       errorCode = "record_not_found"
	codeConversationNotFound errorCode = "conversation_not_found"
	codeConversationBusy     errorCode = "conversation_busy"
	codeVectorDimMismatch    errorCode = "vector_dim_mismatch"
	codeRateLimited          errorCode = "rate_limited"
	codeAIProviderError      errorCode = "ai_provider_error"
	codeMalformedVerdict     errorCode = "malformed_verdict"
	codeInternalError        errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type chatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Query          string `json:"query"`
}

type chatResponse struct {
	ConversationID string `json:"conversation_id"`
	Answer         string `json:"answer"`
	IsRAG          bool   `json:"is_rag"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	IsRAG     bool      `json:"is_rag"`
	CreatedAt time.Time `json:"created_at"`
}

type conversationResponse struct {
	ConversationID string            `json:"conversation_id"`
	Messages       []messageResponse `json:"messages"`
}

type similarityRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type similarityResponse struct {
	Score          float64 `json:"score"`
	Classification string  `json:"classification"`
	Reason         string  `json:"reason"`
	ReferenceID    string  `json:"reference_id,omitempty"`
	ReferenceTitle string  `json:"reference_title,omitempty"`
}

type recordRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Authors []string `json:"authors"`
	Units   []string `json:"units"`
	Level   string   `json:"level"`
	Year    int      `json:"year"`
}

type recordResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Authors      []string `json:"authors,omitempty"`
	Units        []string `json:"units,omitempty"`
	Level        string   `json:"level,omitempty"`
	Year         int      `json:"year,omitempty"`
	HasEmbedding bool     `json:"has_embedding"`
}

type recordListResponse struct {
	Items []recordResponse `json:"items"`
	Total int              `json:"total"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func messageToResponse(m chatuc.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		IsRAG:     m.IsRAG,
		CreatedAt: m.CreatedAt,
	}
}

func verdictToResponse(v verdict.Verdict) similarityResponse {
	return similarityResponse{
		Score:          v.Score(),
		Classification: string(v.Classification()),
		Reason:         v.Rationale(),
		ReferenceID:    v.ReferenceID(),
		ReferenceTitle: v.ReferenceTitle(),
	}
}

func recordToResponse(rec domrec.Record) recordResponse {
	return recordResponse{
		ID:           rec.ID(),
		Title:        rec.Title(),
		Content:      rec.Content(),
		Authors:      rec.Authors(),
		Units:        rec.Units(),
		Level:        rec.Level(),
		Year:         rec.Year(),
		HasEmbedding: rec.HasEmbedding(),
	}
}
