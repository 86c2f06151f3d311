// Package record manages the approved innovation collection: validation,
// embedding at ingest time, persistence.
package record

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/innoreg/internal/domain"
	domrec "github.com/kailas-cloud/innoreg/internal/domain/record"
)

// Input is the denormalized submission shape accepted from the CRUD layer.
type Input struct {
	ID      string
	Title   string
	Content string
	Authors []string
	Units   []string
	Level   string
	Year    int
}

// Service handles record ingestion and lookup. The embedding is
// computed once per create/update from title + content; an embedding
// failure is logged, not fatal — the record stays keyword-searchable
// until the next update recomputes the vector.
type Service struct {
	repo   Repository
	embed  domain.Embedder
	logger *zap.Logger
}

// New creates a record management service.
func New(repo Repository, embed domain.Embedder, logger *zap.Logger) *Service {
	return &Service{repo: repo, embed: embed, logger: logger}
}

// Upsert validates, embeds and stores a record.
func (s *Service) Upsert(ctx context.Context, in Input) (domrec.Record, error) {
	rec, err := domrec.New(in.ID, in.Title, in.Content, in.Authors, in.Units, in.Level, in.Year)
	if err != nil {
		return domrec.Record{}, err
	}

	embResult, err := s.embed.Embed(ctx, embeddingText(rec))
	if err != nil {
		s.logger.Warn("record embedding failed, stored without vector",
			zap.String("record_id", rec.ID()),
			zap.Error(err))
	} else {
		rec = rec.WithEmbedding(embResult.Embedding)
	}

	if err := s.repo.Save(ctx, rec); err != nil {
		return domrec.Record{}, fmt.Errorf("save record: %w", err)
	}
	return rec, nil
}

// Get fetches one record.
func (s *Service) Get(ctx context.Context, id string) (domrec.Record, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes a record from the candidate collection.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// List returns the current collection snapshot.
func (s *Service) List(ctx context.Context) ([]domrec.Record, error) {
	return s.repo.List(ctx)
}

// embeddingText is what gets vectorized: the semantic content, not the
// metadata (authors/units/years are keyword territory).
func embeddingText(rec domrec.Record) string {
	if rec.Content() == "" {
		return rec.Title()
	}
	return rec.Title() + "\n" + strings.TrimSpace(rec.Content())
}
