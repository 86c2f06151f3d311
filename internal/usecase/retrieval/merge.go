package retrieval

import (
	"sort"

	"github.com/kailas-cloud/innoreg/internal/domain/match"
)

// mergeMatches fuses keyword and vector hits with keyword-priority
// deduplication: every record appears at most once, and when both
// sources hit the same record the keyword match (score 1.0) wins —
// authors, units and years are precise facts, so an exact string match
// is stronger signal than semantic similarity. The merged set is
// stably sorted by score descending (ties keep first-seen order) and
// truncated to maxResults.
func mergeMatches(keyword, vector []match.Match, maxResults int) []match.Match {
	seen := make(map[string]struct{}, len(keyword))
	merged := make([]match.Match, 0, len(keyword)+len(vector))

	for _, m := range keyword {
		rec := m.Record()
		seen[rec.ID()] = struct{}{}
		merged = append(merged, m)
	}
	for _, m := range vector {
		rec := m.Record()
		if _, ok := seen[rec.ID()]; ok {
			continue
		}
		seen[rec.ID()] = struct{}{}
		merged = append(merged, m)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score() > merged[j].Score()
	})

	if len(merged) > maxResults {
		merged = merged[:maxResults]
	}
	return merged
}
