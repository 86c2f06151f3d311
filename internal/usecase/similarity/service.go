// Package similarity screens a candidate submission against the
// existing record collection for duplicates. One classifier serves all
// three invocation contexts: chat duplicate warnings, batch import
// screening and public single-submission screening.
package similarity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/innoreg/internal/domain"
	"github.com/kailas-cloud/innoreg/internal/domain/record"
	"github.com/kailas-cloud/innoreg/internal/domain/verdict"
)

// Candidate is the submission under screening.
type Candidate struct {
	Title   string
	Content string
}

// Options bounds the prompt handed to the generation call.
type Options struct {
	// MaxReferences caps how many reference records enter the prompt.
	MaxReferences int
	// PreviewRunes bounds each reference's content preview.
	PreviewRunes int
}

// DefaultOptions returns the standard screening settings.
func DefaultOptions() Options {
	return Options{MaxReferences: 30, PreviewRunes: 800}
}

// Service classifies candidates via the generation provider. Scoring and
// rationale are delegated to the model; the service owns input shaping
// (bounded reference set) and output contract enforcement (schema and
// range validation, single threshold policy).
type Service struct {
	gen    domain.Generator
	policy verdict.Policy
	opts   Options
	logger *zap.Logger
}

// New creates a similarity screening service.
func New(gen domain.Generator, policy verdict.Policy, opts Options, logger *zap.Logger) *Service {
	if opts.MaxReferences <= 0 {
		opts.MaxReferences = DefaultOptions().MaxReferences
	}
	if opts.PreviewRunes <= 0 {
		opts.PreviewRunes = DefaultOptions().PreviewRunes
	}
	return &Service{gen: gen, policy: policy, opts: opts, logger: logger}
}

// verdictPayload is the JSON contract the generation provider must honor.
type verdictPayload struct {
	Score          *float64 `json:"score"`
	Reason         string   `json:"reason"`
	ReferenceID    string   `json:"reference_id"`
	ReferenceTitle string   `json:"reference_title"`
}

// Classify screens the candidate against the reference collection and
// returns a validated verdict. A provider answer that fails schema or
// range validation is a hard domain.ErrMalformedVerdict — never a
// silently defaulted score.
func (s *Service) Classify(
	ctx context.Context, cand Candidate, refs []record.Record,
) (verdict.Verdict, error) {
	if strings.TrimSpace(cand.Title) == "" {
		return verdict.Verdict{}, fmt.Errorf("candidate title is required: %w", domain.ErrInvalidRecord)
	}

	// No references — nothing to duplicate. Saves a generation call.
	if len(refs) == 0 {
		return verdict.FromScore(0, s.policy,
			"Chưa có sáng kiến nào trong hệ thống để đối chiếu.", "", "")
	}

	if len(refs) > s.opts.MaxReferences {
		s.logger.Debug("reference set truncated for screening prompt",
			zap.Int("total", len(refs)),
			zap.Int("kept", s.opts.MaxReferences))
		refs = refs[:s.opts.MaxReferences]
	}

	result, err := s.gen.Generate(ctx, domain.GenerationRequest{
		System:      screeningSystemPrompt,
		Prompt:      buildScreeningPrompt(cand, refs, s.opts.PreviewRunes),
		Temperature: 0,
		SchemaName:  "similarity_verdict",
		JSONSchema:  verdictSchema,
	})
	if err != nil {
		return verdict.Verdict{}, fmt.Errorf("screening generation: %w", err)
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(result.Text), &payload); err != nil {
		return verdict.Verdict{}, fmt.Errorf("parse verdict %q: %v: %w",
			truncateForLog(result.Text), err, domain.ErrMalformedVerdict)
	}
	if payload.Score == nil {
		return verdict.Verdict{}, fmt.Errorf("verdict missing score: %w", domain.ErrMalformedVerdict)
	}

	return verdict.FromScore(*payload.Score, s.policy,
		payload.Reason, payload.ReferenceID, payload.ReferenceTitle)
}

func truncateForLog(s string) string {
	const max = 200
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
