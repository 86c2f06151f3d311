package similarity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/innoreg/internal/domain/record"
)

const screeningSystemPrompt = `Bạn là chuyên gia thẩm định sáng kiến. ` +
	`Hãy so sánh sáng kiến ứng viên với danh sách sáng kiến đã được công nhận ` +
	`và chấm điểm mức độ trùng lặp từ 0 đến 100 (0 = hoàn toàn mới, ` +
	`100 = trùng lặp hoàn toàn). So sánh thuần túy về nội dung và giải pháp kỹ thuật, ` +
	`không xét tác giả hay đơn vị. Trả lời đúng theo schema JSON được yêu cầu; ` +
	`nêu rõ lý do chấm điểm và sáng kiến giống nhất (nếu có).`

// verdictSchema is the strict JSON schema the provider must return.
var verdictSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"score": {"type": "number", "minimum": 0, "maximum": 100},
		"reason": {"type": "string"},
		"reference_id": {"type": "string"},
		"reference_title": {"type": "string"}
	},
	"required": ["score", "reason"],
	"additionalProperties": false
}`)

// buildScreeningPrompt serializes the candidate and the bounded
// reference set. References carry title and content only — screening is
// purely textual, metadata stays out of the comparison.
func buildScreeningPrompt(cand Candidate, refs []record.Record, previewRunes int) string {
	var b strings.Builder

	b.WriteString("SÁNG KIẾN ỨNG VIÊN:\n")
	fmt.Fprintf(&b, "Tên: %s\n", cand.Title)
	if cand.Content != "" {
		fmt.Fprintf(&b, "Nội dung: %s\n", cand.Content)
	}

	b.WriteString("\nDANH SÁCH SÁNG KIẾN ĐÃ CÔNG NHẬN:\n")
	for i, ref := range refs {
		fmt.Fprintf(&b, "\n%d. [%s] %s\n", i+1, ref.ID(), ref.Title())
		if ref.Content() != "" {
			fmt.Fprintf(&b, "%s\n", ref.Preview(previewRunes))
		}
	}

	return b.String()
}
