package retrieval

import (
	"strings"

	"github.com/kailas-cloud/innoreg/internal/domain/match"
	"github.com/kailas-cloud/innoreg/internal/domain/record"
)

// matchKeyword returns every record whose search text contains the
// trimmed lowercased query as a substring. Exact evidence is treated as
// maximally confident: every hit scores 1.0. An empty query matches
// nothing. Output order is the input order.
func matchKeyword(query string, records []record.Record) []match.Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var hits []match.Match
	for _, rec := range records {
		if strings.Contains(rec.SearchText(), q) {
			hits = append(hits, match.New(rec, 1.0, match.Keyword))
		}
	}
	return hits
}
