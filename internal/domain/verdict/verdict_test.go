package verdict

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/innoreg/internal/domain"
)

func TestPolicy_Classify(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		score float64
		want  Classification
	}{
		{0, New},
		{39.9, New},
		{40, Similar},
		{69.9, Similar},
		{70, Duplicate},
		{100, Duplicate},
	}
	for _, tc := range cases {
		if got := p.Classify(tc.score); got != tc.want {
			t.Errorf("Classify(%v) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestPolicy_Validate(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
	bad := Policy{DuplicateMin: 40, SimilarMin: 70}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected inverted bands to fail validation")
	}
}

func TestFromScore_RangeValidation(t *testing.T) {
	for _, score := range []float64{-1, 100.5} {
		_, err := FromScore(score, DefaultPolicy(), "reason", "", "")
		if !errors.Is(err, domain.ErrMalformedVerdict) {
			t.Errorf("score %v: expected ErrMalformedVerdict, got %v", score, err)
		}
	}
}

func TestFromScore_MissingRationale(t *testing.T) {
	_, err := FromScore(50, DefaultPolicy(), "", "", "")
	if !errors.Is(err, domain.ErrMalformedVerdict) {
		t.Fatalf("expected ErrMalformedVerdict, got %v", err)
	}
}

func TestFromScore_DerivesClassification(t *testing.T) {
	v, err := FromScore(85, DefaultPolicy(), "near-identical wording", "sk-1", "Old title")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Classification() != Duplicate {
		t.Errorf("expected duplicate, got %v", v.Classification())
	}
	if v.ReferenceID() != "sk-1" || v.ReferenceTitle() != "Old title" {
		t.Error("reference pointer lost")
	}
}
