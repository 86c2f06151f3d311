package retrieval

import (
	"errors"

	"github.com/kailas-cloud/innoreg/internal/domain"
	"github.com/kailas-cloud/innoreg/internal/domain/match"
	"github.com/kailas-cloud/innoreg/internal/domain/record"
	"github.com/kailas-cloud/innoreg/internal/domain/vector"
)

// matchVector scores every embedded record against the query vector and
// keeps those strictly above the threshold. Records without an embedding
// are skipped silently. Records whose embedding dimension does not match
// the query are skipped and their ids returned for the caller to log —
// a stale dimension means the record needs re-embedding, not comparison.
// Output is unsorted; ranking is the retriever's job.
func matchVector(
	queryVec []float32, records []record.Record, threshold float64,
) (hits []match.Match, mismatched []string) {
	for _, rec := range records {
		if !rec.HasEmbedding() {
			continue
		}
		score, err := vector.Cosine(queryVec, rec.Embedding())
		if err != nil {
			if errors.Is(err, domain.ErrVectorDimMismatch) {
				mismatched = append(mismatched, rec.ID())
			}
			continue
		}
		if score > threshold {
			hits = append(hits, match.New(rec, score, match.Vector))
		}
	}
	return hits, mismatched
}
