package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/innoreg/internal/domain"
	domrec "github.com/kailas-cloud/innoreg/internal/domain/record"
	"github.com/kailas-cloud/innoreg/internal/domain/verdict"
	chatuc "github.com/kailas-cloud/innoreg/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/innoreg/internal/usecase/health"
	recorduc "github.com/kailas-cloud/innoreg/internal/usecase/record"
	retrievaluc "github.com/kailas-cloud/innoreg/internal/usecase/retrieval"
	similarityuc "github.com/kailas-cloud/innoreg/internal/usecase/similarity"
)

type memRepo struct {
	records map[string]domrec.Record
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[string]domrec.Record)}
}

func (m *memRepo) Save(_ context.Context, rec domrec.Record) error {
	m.records[rec.ID()] = rec
	return nil
}

func (m *memRepo) Get(_ context.Context, id string) (domrec.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return domrec.Record{}, domain.ErrRecordNotFound
	}
	return rec, nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memRepo) List(_ context.Context) ([]domrec.Record, error) {
	out := make([]domrec.Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0}}, nil
}

type stubGenerator struct {
	text string
	err  error
}

func (g *stubGenerator) Generate(_ context.Context, _ domain.GenerationRequest) (domain.GenerationResult, error) {
	if g.err != nil {
		return domain.GenerationResult{}, g.err
	}
	return domain.GenerationResult{Text: g.text}, nil
}

type stubPinger struct{}

func (stubPinger) Ping(_ context.Context) error { return nil }

func newTestRouter(t *testing.T, gen domain.Generator) (*gochi.Mux, *memRepo) {
	t.Helper()
	logger := zap.NewNop()
	repo := newMemRepo()

	records := recorduc.New(repo, stubEmbedder{}, logger)
	retriever := retrievaluc.New(stubEmbedder{}, retrievaluc.DefaultOptions(), logger)
	chat := chatuc.New(retriever, gen, logger)
	similarity := similarityuc.New(gen, verdict.DefaultPolicy(), similarityuc.DefaultOptions(), logger)
	health := healthuc.New(stubPinger{}, nil)

	server := NewServer(records, chat, similarity, health, logger)
	r := gochi.NewRouter()
	server.Routes(r)
	return r, repo
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestUpsertAndGetRecord(t *testing.T) {
	r, _ := newTestRouter(t, &stubGenerator{})

	rr := doJSON(t, r, "PUT", "/v1/records/sk-001", recordRequest{
		Title:   "Tự động hóa quy trình nghiệm thu",
		Content: "Áp dụng checklist số hóa.",
		Authors: []string{"Trần Thị Bình"},
		Units:   []string{"Phòng Quản lý chất lượng"},
		Level:   "cấp tỉnh",
		Year:    2023,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("upsert: got %d, body %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, r, "GET", "/v1/records/sk-001", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: got %d", rr.Code)
	}
	var resp recordResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Title != "Tự động hóa quy trình nghiệm thu" || !resp.HasEmbedding {
		t.Errorf("unexpected record response: %+v", resp)
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	r, _ := newTestRouter(t, &stubGenerator{})

	rr := doJSON(t, r, "GET", "/v1/records/missing", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatal(err)
	}
	if errResp.Code != codeRecordNotFound {
		t.Errorf("error code: got %s", errResp.Code)
	}
}

func TestUpsertRecord_ValidationError(t *testing.T) {
	r, _ := newTestRouter(t, &stubGenerator{})

	rr := doJSON(t, r, "PUT", "/v1/records/sk-002", recordRequest{Title: ""})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
}

func TestDeleteRecord(t *testing.T) {
	r, repo := newTestRouter(t, &stubGenerator{})
	rec, _ := domrec.New("sk-003", "Sáng kiến thử nghiệm", "", nil, nil, "", 2024)
	repo.records["sk-003"] = rec

	rr := doJSON(t, r, "DELETE", "/v1/records/sk-003", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("got %d, want 204", rr.Code)
	}
	if _, ok := repo.records["sk-003"]; ok {
		t.Error("record not deleted")
	}
}

func TestChat_EmptyQuery(t *testing.T) {
	r, _ := newTestRouter(t, &stubGenerator{})

	rr := doJSON(t, r, "POST", "/v1/chat", chatRequest{Query: "   "})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
}

func TestChat_NoMatches(t *testing.T) {
	r, _ := newTestRouter(t, &stubGenerator{text: "should not be used"})

	rr := doJSON(t, r, "POST", "/v1/chat", chatRequest{Query: "máy bay không người lái"})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	var resp chatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != chatuc.NoMatchMessage {
		t.Errorf("answer = %q, want no-match message", resp.Answer)
	}
	if resp.IsRAG {
		t.Error("no-match answer must not be flagged as RAG")
	}
	if resp.ConversationID == "" {
		t.Error("expected a generated conversation id")
	}
}

func TestChat_GroundedAnswerAndHistory(t *testing.T) {
	r, repo := newTestRouter(t, &stubGenerator{text: "Sáng kiến sk-004 phù hợp nhất."})
	rec, _ := domrec.New("sk-004", "Giải pháp tiết kiệm điện năng", "Chi tiết nội dung.", nil, nil, "", 2024)
	repo.records["sk-004"] = rec

	rr := doJSON(t, r, "POST", "/v1/chat", chatRequest{Query: "tiết kiệm điện năng"})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rr.Code, rr.Body.String())
	}
	var resp chatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.IsRAG {
		t.Error("grounded answer must be flagged as RAG")
	}

	rr = doJSON(t, r, "GET", "/v1/conversations/"+resp.ConversationID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("history: got %d", rr.Code)
	}
	var conv conversationResponse
	if err := json.NewDecoder(rr.Body).Decode(&conv); err != nil {
		t.Fatal(err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("history length = %d, want 2", len(conv.Messages))
	}
	if conv.Messages[0].Role != "user" || conv.Messages[1].Role != "assistant" {
		t.Errorf("unexpected roles: %+v", conv.Messages)
	}
}

func TestConversationHistory_NotFound(t *testing.T) {
	r, _ := newTestRouter(t, &stubGenerator{})

	rr := doJSON(t, r, "GET", "/v1/conversations/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
}

func TestScreenSimilarity_EmptyCollection(t *testing.T) {
	r, _ := newTestRouter(t, &stubGenerator{err: domain.ErrGenerationFailed})

	rr := doJSON(t, r, "POST", "/v1/similarity", similarityRequest{Title: "Đề xuất mới"})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rr.Code, rr.Body.String())
	}
	var resp similarityResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Classification != "new" || resp.Score != 0 {
		t.Errorf("empty collection verdict: %+v", resp)
	}
}

func TestScreenSimilarity_DuplicateVerdict(t *testing.T) {
	payload := `{"score": 85, "reason": "Trùng lặp về giải pháp kỹ thuật.", "reference_id": "sk-005", "reference_title": "Giải pháp cũ"}`
	r, repo := newTestRouter(t, &stubGenerator{text: payload})
	rec, _ := domrec.New("sk-005", "Giải pháp cũ", "Nội dung.", nil, nil, "", 2022)
	repo.records["sk-005"] = rec

	rr := doJSON(t, r, "POST", "/v1/similarity", similarityRequest{
		Title:   "Giải pháp gần giống",
		Content: "Nội dung tương tự.",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rr.Code, rr.Body.String())
	}
	var resp similarityResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Classification != "duplicate" || resp.ReferenceID != "sk-005" {
		t.Errorf("verdict: %+v", resp)
	}
}

func TestScreenSimilarity_MalformedVerdict_502(t *testing.T) {
	r, repo := newTestRouter(t, &stubGenerator{text: `{"score": "high"}`})
	rec, _ := domrec.New("sk-006", "Sáng kiến nền", "", nil, nil, "", 2024)
	repo.records["sk-006"] = rec

	rr := doJSON(t, r, "POST", "/v1/similarity", similarityRequest{Title: "Ứng viên"})
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("got %d, want 502", rr.Code)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatal(err)
	}
	if errResp.Code != codeMalformedVerdict {
		t.Errorf("error code: got %s", errResp.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestRouter(t, &stubGenerator{})

	rr := doJSON(t, r, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Checks["database"] != "ok" {
		t.Errorf("health: %+v", resp)
	}
}
