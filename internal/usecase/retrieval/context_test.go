package retrieval

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/innoreg/internal/domain/match"
	"github.com/kailas-cloud/innoreg/internal/domain/record"
)

func TestBuildContext_Empty(t *testing.T) {
	svc := New(&mockEmbedder{}, DefaultOptions(), zap.NewNop())
	if got := svc.BuildContext(nil); got != "" {
		t.Fatalf("expected empty context, got %q", got)
	}
}

func TestBuildContext_BlockShape(t *testing.T) {
	rec := record.Reconstruct("sk-1", "Tên sáng kiến thử nghiệm", "Nội dung tóm tắt",
		[]string{"Nguyễn Văn An"}, []string{"Phòng Kỹ thuật"}, "cấp cơ sở", 2024, nil)
	svc := New(&mockEmbedder{}, DefaultOptions(), zap.NewNop())

	ctx := svc.BuildContext([]match.Match{match.New(rec, 0.87, match.Vector)})
	for _, want := range []string{
		"[độ liên quan 0.87]", "sk-1", "2024", "cấp cơ sở",
		"Phòng Kỹ thuật", "Nguyễn Văn An", "Tên sáng kiến thử nghiệm", "Nội dung tóm tắt",
	} {
		if !strings.Contains(ctx, want) {
			t.Errorf("context missing %q:\n%s", want, ctx)
		}
	}
}

func TestBuildContext_SeparatorBetweenBlocks(t *testing.T) {
	a := record.Reconstruct("a", "t1", "c1", nil, nil, "", 2023, nil)
	b := record.Reconstruct("b", "t2", "c2", nil, nil, "", 2024, nil)
	svc := New(&mockEmbedder{}, DefaultOptions(), zap.NewNop())

	ctx := svc.BuildContext([]match.Match{
		match.New(a, 1.0, match.Keyword),
		match.New(b, 0.5, match.Vector),
	})
	if !strings.Contains(ctx, "\n\n") {
		t.Error("expected blank-line separator between blocks")
	}
}

func TestBuildContext_PreviewTruncated(t *testing.T) {
	long := strings.Repeat("ă", 2000) // multibyte runes, must not be cut mid-rune
	rec := record.Reconstruct("sk-1", "title", long, nil, nil, "", 2024, nil)
	opts := DefaultOptions()
	opts.PreviewRunes = 100
	svc := New(&mockEmbedder{}, opts, zap.NewNop())

	ctx := svc.BuildContext([]match.Match{match.New(rec, 1.0, match.Keyword)})
	if strings.Count(ctx, "ă") > 100 {
		t.Errorf("preview not truncated: %d runes", strings.Count(ctx, "ă"))
	}
	if !strings.Contains(ctx, "…") {
		t.Error("expected ellipsis after truncation")
	}
}
