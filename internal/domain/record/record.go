// Package record defines the innovation submission aggregate.
package record

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/innoreg/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxContentSize is the maximum record content size in bytes.
const MaxContentSize = 163840 // 160KB

// Record is one approved innovation submission (immutable value object).
// The embedding is optional: records without one stay eligible for
// keyword matching but are excluded from vector scoring.
type Record struct {
	id        string
	title     string
	content   string
	authors   []string
	units     []string
	level     string
	year      int
	embedding []float32
}

// New validates and creates a Record.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Title: non-empty.
// Authors and units are always ordered lists (possibly empty); callers
// must normalize loose upstream shapes before reaching this boundary.
func New(
	id, title, content string,
	authors, units []string,
	level string, year int,
) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("record ID is required: %w", domain.ErrInvalidRecord)
	}
	if len(id) > 256 {
		return Record{}, fmt.Errorf("record ID too long (max 256): %w", domain.ErrInvalidRecord)
	}
	if !idRegex.MatchString(id) {
		return Record{}, fmt.Errorf(
			"record ID must be alphanumeric with underscores and hyphens: %w", domain.ErrInvalidRecord)
	}
	if strings.TrimSpace(title) == "" {
		return Record{}, fmt.Errorf("title is required: %w", domain.ErrInvalidRecord)
	}
	if len(content) > MaxContentSize {
		return Record{}, fmt.Errorf("content too large (max %d bytes): %w", MaxContentSize, domain.ErrInvalidRecord)
	}

	return Record{
		id:      id,
		title:   title,
		content: content,
		authors: cloneStrings(authors),
		units:   cloneStrings(units),
		level:   level,
		year:    year,
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(
	id, title, content string,
	authors, units []string,
	level string, year int,
	embedding []float32,
) Record {
	return Record{
		id: id, title: title, content: content,
		authors: authors, units: units,
		level: level, year: year, embedding: embedding,
	}
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// Title returns the submission title.
func (r *Record) Title() string { return r.title }

// Content returns the free-text summary.
func (r *Record) Content() string { return r.content }

// Authors returns the ordered author names.
func (r *Record) Authors() []string { return r.authors }

// Units returns the ordered organizational unit names.
func (r *Record) Units() []string { return r.units }

// Level returns the recognition level.
func (r *Record) Level() string { return r.level }

// Year returns the recognition year.
func (r *Record) Year() int { return r.year }

// Embedding returns the embedding vector, or nil if absent.
func (r *Record) Embedding() []float32 { return r.embedding }

// HasEmbedding reports whether the record carries an embedding vector.
func (r *Record) HasEmbedding() bool { return len(r.embedding) > 0 }

// WithEmbedding returns a copy with the given vector set.
func (r *Record) WithEmbedding(v []float32) Record {
	c := *r
	c.embedding = v
	return c
}

// Preview returns the content truncated to maxRunes runes, with an
// ellipsis when cut. Rune-safe: content is Vietnamese text.
func (r *Record) Preview(maxRunes int) string {
	runes := []rune(r.content)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return r.content
	}
	return string(runes[:maxRunes]) + "…"
}

// SearchText returns the lowercase haystack for keyword matching:
// title, authors, units and year joined into one string.
func (r *Record) SearchText() string {
	parts := make([]string, 0, 4)
	parts = append(parts, r.title)
	if len(r.authors) > 0 {
		parts = append(parts, strings.Join(r.authors, " "))
	}
	if len(r.units) > 0 {
		parts = append(parts, strings.Join(r.units, " "))
	}
	parts = append(parts, strconv.Itoa(r.year))
	return strings.ToLower(strings.Join(parts, " "))
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}
