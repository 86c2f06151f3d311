package record

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/innoreg/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	r, err := New("sk-2024-001", "Hệ thống đọc công tơ thông minh", "Tóm tắt nội dung",
		[]string{"Nguyễn Văn An", "Trần Thị Bình"}, []string{"Phòng Kỹ thuật"}, "cấp cơ sở", 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID() != "sk-2024-001" {
		t.Errorf("unexpected ID %q", r.ID())
	}
	if r.HasEmbedding() {
		t.Error("new record should not carry an embedding")
	}
}

func TestNew_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		id      string
		title   string
		content string
	}{
		{"empty id", "", "title", ""},
		{"bad id chars", "id with spaces", "title", ""},
		{"long id", strings.Repeat("a", 257), "title", ""},
		{"empty title", "id1", "", ""},
		{"blank title", "id1", "   ", ""},
		{"huge content", "id1", "title", strings.Repeat("x", MaxContentSize+1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.id, tc.title, tc.content, nil, nil, "", 2024)
			if !errors.Is(err, domain.ErrInvalidRecord) {
				t.Fatalf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}
}

func TestSearchText(t *testing.T) {
	r := Reconstruct("1", "Smart Meter Reader", "content",
		[]string{"Nguyễn Văn An"}, []string{"Phòng Kỹ thuật"}, "", 2023, nil)

	text := r.SearchText()
	for _, want := range []string{"smart meter reader", "nguyễn văn an", "phòng kỹ thuật", "2023"} {
		if !strings.Contains(text, want) {
			t.Errorf("search text missing %q: %q", want, text)
		}
	}
	if strings.Contains(text, "content") {
		t.Error("search text must not include free-text content")
	}
}

func TestWithEmbedding(t *testing.T) {
	r := Reconstruct("1", "t", "", nil, nil, "", 2024, nil)
	e := r.WithEmbedding([]float32{1, 2, 3})
	if !e.HasEmbedding() {
		t.Fatal("expected embedding to be set")
	}
	if r.HasEmbedding() {
		t.Error("original record mutated")
	}
}
