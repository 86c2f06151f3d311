// Package verdict defines the structured outcome of similarity screening.
package verdict

import (
	"fmt"

	"github.com/kailas-cloud/innoreg/internal/domain"
)

// Classification is the duplicate screening outcome.
type Classification string

const (
	// New marks a candidate with no meaningful overlap.
	New Classification = "new"
	// Similar marks a candidate overlapping an existing record.
	Similar Classification = "similar"
	// Duplicate marks a candidate that duplicates an existing record.
	Duplicate Classification = "duplicate"
)

// Policy maps a 0-100 similarity score to a classification.
// One policy serves every screening call site (chat warnings, batch
// import, public submissions); the bands are configuration, not code.
type Policy struct {
	DuplicateMin float64
	SimilarMin   float64
}

// DefaultPolicy returns the standard bands: >=70 duplicate, >=40 similar.
func DefaultPolicy() Policy {
	return Policy{DuplicateMin: 70, SimilarMin: 40}
}

// Validate checks band ordering and range.
func (p Policy) Validate() error {
	if p.SimilarMin < 0 || p.DuplicateMin > 100 || p.SimilarMin >= p.DuplicateMin {
		return fmt.Errorf("invalid policy bands: similar_min=%v duplicate_min=%v",
			p.SimilarMin, p.DuplicateMin)
	}
	return nil
}

// Classify maps a score to its band.
func (p Policy) Classify(score float64) Classification {
	switch {
	case score >= p.DuplicateMin:
		return Duplicate
	case score >= p.SimilarMin:
		return Similar
	default:
		return New
	}
}

// Verdict is the structured outcome of one similarity classification.
type Verdict struct {
	score          float64
	classification Classification
	rationale      string
	referenceID    string
	referenceTitle string
}

// FromScore validates the provider answer and derives the classification
// from the policy. The score must be in [0,100] and the rationale
// non-empty; anything else is a malformed provider answer.
func FromScore(score float64, policy Policy, rationale, refID, refTitle string) (Verdict, error) {
	if score < 0 || score > 100 {
		return Verdict{}, fmt.Errorf("score %v out of [0,100]: %w", score, domain.ErrMalformedVerdict)
	}
	if rationale == "" {
		return Verdict{}, fmt.Errorf("missing rationale: %w", domain.ErrMalformedVerdict)
	}
	return Verdict{
		score:          score,
		classification: policy.Classify(score),
		rationale:      rationale,
		referenceID:    refID,
		referenceTitle: refTitle,
	}, nil
}

// Score returns the similarity score in [0,100].
func (v *Verdict) Score() float64 { return v.score }

// Classification returns the screening outcome band.
func (v *Verdict) Classification() Classification { return v.classification }

// Rationale returns the human-readable explanation.
func (v *Verdict) Rationale() string { return v.rationale }

// ReferenceID returns the most-similar existing record id, if any.
func (v *Verdict) ReferenceID() string { return v.referenceID }

// ReferenceTitle returns the most-similar existing record title, if any.
func (v *Verdict) ReferenceTitle() string { return v.referenceTitle }
