package retrieval

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/innoreg/internal/domain/match"
)

// BuildContext serializes ranked matches into the context block for the
// generation call. Each record becomes one fixed-shape block prefixed
// with its relevance score; content previews are bounded so no single
// record dominates the context window. An empty match list yields an
// empty string, which callers must treat as "insufficient evidence".
func (s *Service) BuildContext(matches []match.Match) string {
	if len(matches) == 0 {
		return ""
	}

	var b strings.Builder
	for i, m := range matches {
		if i > 0 {
			b.WriteString("\n\n")
		}
		rec := m.Record()
		fmt.Fprintf(&b, "[độ liên quan %.2f] Mã số: %s\n", m.Score(), rec.ID())
		fmt.Fprintf(&b, "Năm công nhận: %d\n", rec.Year())
		if rec.Level() != "" {
			fmt.Fprintf(&b, "Cấp công nhận: %s\n", rec.Level())
		}
		if len(rec.Units()) > 0 {
			fmt.Fprintf(&b, "Đơn vị: %s\n", strings.Join(rec.Units(), ", "))
		}
		if len(rec.Authors()) > 0 {
			fmt.Fprintf(&b, "Tác giả: %s\n", strings.Join(rec.Authors(), ", "))
		}
		fmt.Fprintf(&b, "Tên sáng kiến: %s\n", rec.Title())
		if rec.Content() != "" {
			fmt.Fprintf(&b, "Nội dung: %s", rec.Preview(s.opts.PreviewRunes))
		}
	}
	return b.String()
}
