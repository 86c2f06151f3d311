// Package match defines a single retrieval hit.
package match

import "github.com/kailas-cloud/innoreg/internal/domain/record"

// Source tags how a match was found.
type Source string

const (
	// Keyword marks an exact substring match (score always 1.0).
	Keyword Source = "keyword"
	// Vector marks a semantic similarity match.
	Vector Source = "vector"
)

// Match pairs a record with a relevance score in [0,1] and its source.
// Within one retrieval a record appears at most once; when both sources
// hit the same record, the keyword match wins.
type Match struct {
	rec    record.Record
	score  float64
	source Source
}

// New creates a match.
func New(rec record.Record, score float64, source Source) Match {
	return Match{rec: rec, score: score, source: source}
}

// Record returns the matched record.
func (m *Match) Record() record.Record { return m.rec }

// Score returns the relevance score.
func (m *Match) Score() float64 { return m.score }

// Source returns the match provenance.
func (m *Match) Source() Source { return m.source }
