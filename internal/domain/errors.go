package domain

import "errors"

var (
	// ErrRecordNotFound signals a missing innovation record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidRecord signals a record that failed validation.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrVectorDimMismatch signals embeddings of unequal dimension.
	// The stale side must be re-embedded, never compared as-is.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingUnavailable signals an embedding provider failure.
	// Retrieval recovers from it by degrading to keyword-only search.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrGenerationFailed signals a generation provider failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrMalformedVerdict signals a similarity verdict that failed schema
	// or range validation. Always a hard failure — a garbage verdict must
	// never be accepted silently.
	ErrMalformedVerdict = errors.New("malformed similarity verdict")
	// ErrConversationBusy signals a chat turn submitted while a prior turn
	// of the same conversation is still in flight.
	ErrConversationBusy = errors.New("conversation busy")
	// ErrConversationNotFound signals an unknown conversation id.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrEmptyQuery signals a blank chat query.
	ErrEmptyQuery = errors.New("query is required")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)
