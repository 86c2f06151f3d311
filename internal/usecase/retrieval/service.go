// Package retrieval implements hybrid keyword + vector search over an
// in-memory snapshot of the innovation record collection.
package retrieval

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/innoreg/internal/domain"
	"github.com/kailas-cloud/innoreg/internal/domain/match"
	"github.com/kailas-cloud/innoreg/internal/domain/record"
)

// Options holds the retrieval tuning knobs.
type Options struct {
	// MaxResults bounds the ranked result size, and with it the text
	// handed to the downstream generation call.
	MaxResults int
	// VectorThreshold is the strict minimum cosine similarity for a
	// vector hit. Tuned, not derived.
	VectorThreshold float64
	// PreviewRunes bounds each record's content preview in the
	// serialized context block.
	PreviewRunes int
}

// DefaultOptions returns the standard retrieval settings.
func DefaultOptions() Options {
	return Options{
		MaxResults:      30,
		VectorThreshold: 0.35,
		PreviewRunes:    800,
	}
}

// Service runs hybrid retrieval: exact keyword filtering fused with
// vector similarity search, keyword-priority deduplication, ranking and
// truncation.
type Service struct {
	embed  domain.Embedder
	opts   Options
	logger *zap.Logger
}

// New creates a retrieval service.
func New(embed domain.Embedder, opts Options, logger *zap.Logger) *Service {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultOptions().MaxResults
	}
	if opts.VectorThreshold <= 0 {
		opts.VectorThreshold = DefaultOptions().VectorThreshold
	}
	if opts.PreviewRunes <= 0 {
		opts.PreviewRunes = DefaultOptions().PreviewRunes
	}
	return &Service{embed: embed, opts: opts, logger: logger}
}

// Retrieve searches the snapshot for the query. The embedding fetch is
// the only suspension point; when it fails the error is logged and
// retrieval degrades to keyword-only — partial capability loss must not
// cause total query failure. An empty result means "no evidence found",
// which callers must handle distinctly from an error.
func (s *Service) Retrieve(
	ctx context.Context, query string, records []record.Record,
) []match.Match {
	keywordHits := matchKeyword(query, records)

	var vectorHits []match.Match
	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("query embedding failed, degrading to keyword-only search",
			zap.Error(err))
	} else {
		var mismatched []string
		vectorHits, mismatched = matchVector(embResult.Embedding, records, s.opts.VectorThreshold)
		if len(mismatched) > 0 {
			s.logger.Warn("records skipped: embedding dimension mismatch, re-embedding required",
				zap.Strings("record_ids", mismatched))
		}
	}

	return mergeMatches(keywordHits, vectorHits, s.opts.MaxResults)
}
