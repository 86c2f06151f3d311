package record

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/innoreg/internal/domain"
	domrec "github.com/kailas-cloud/innoreg/internal/domain/record"
)

// fakeHashStore is an in-memory db.HashStore.
type fakeHashStore struct {
	hashes map[string]map[string]string
}

func newFakeHashStore() *fakeHashStore {
	return &fakeHashStore{hashes: make(map[string]map[string]string)}
}

func (f *fakeHashStore) HSet(_ context.Context, key string, fields map[string]string) error {
	h, ok := f.hashes[key]
	if !ok {
		h = make(map[string]string)
		f.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (f *fakeHashStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	out := make(map[string]string, len(f.hashes[key]))
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeHashStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, key := range keys {
		m, _ := f.HGetAll(ctx, key)
		out[i] = m
	}
	return out, nil
}

func (f *fakeHashStore) Del(_ context.Context, key string) error {
	delete(f.hashes, key)
	return nil
}

func (f *fakeHashStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.hashes[key]
	return ok, nil
}

func (f *fakeHashStore) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range f.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func testRecord(t *testing.T, id string) domrec.Record {
	t.Helper()
	rec, err := domrec.New(id, "Giải pháp tiết kiệm điện "+id, "Nội dung chi tiết",
		[]string{"Nguyễn Văn An"}, []string{"Phòng Kỹ thuật"}, "cấp cơ sở", 2024)
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	return rec
}

func TestRepo_SaveGetRoundTrip(t *testing.T) {
	repo := New(newFakeHashStore())
	ctx := context.Background()

	base := testRecord(t, "sk-1")
	rec := base.WithEmbedding([]float32{0.25, -1.5, 3.75})
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Get(ctx, "sk-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title() != rec.Title() {
		t.Errorf("title mismatch: %q vs %q", got.Title(), rec.Title())
	}
	if got.Year() != 2024 || got.Level() != "cấp cơ sở" {
		t.Error("metadata lost in round trip")
	}
	if len(got.Authors()) != 1 || got.Authors()[0] != "Nguyễn Văn An" {
		t.Errorf("authors lost: %v", got.Authors())
	}
	emb := got.Embedding()
	if len(emb) != 3 || emb[0] != 0.25 || emb[1] != -1.5 || emb[2] != 3.75 {
		t.Errorf("embedding lost: %v", emb)
	}
}

func TestRepo_SaveOverwritesStaleFields(t *testing.T) {
	repo := New(newFakeHashStore())
	ctx := context.Background()

	embBase := testRecord(t, "sk-1")
	withEmb := embBase.WithEmbedding([]float32{1, 2})
	if err := repo.Save(ctx, withEmb); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Update without an embedding — the old vector must not survive.
	if err := repo.Save(ctx, testRecord(t, "sk-1")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Get(ctx, "sk-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.HasEmbedding() {
		t.Error("stale embedding survived the overwrite")
	}
}

func TestRepo_GetNotFound(t *testing.T) {
	repo := New(newFakeHashStore())
	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestRepo_DeleteNotFound(t *testing.T) {
	repo := New(newFakeHashStore())
	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestRepo_ListSortedSnapshot(t *testing.T) {
	repo := New(newFakeHashStore())
	ctx := context.Background()

	for _, id := range []string{"sk-3", "sk-1", "sk-2"} {
		if err := repo.Save(ctx, testRecord(t, id)); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	records, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"sk-1", "sk-2", "sk-3"} {
		if records[i].ID() != want {
			t.Errorf("position %d: expected %s, got %s", i, want, records[i].ID())
		}
	}
}

func TestRepo_ListEmpty(t *testing.T) {
	repo := New(newFakeHashStore())
	records, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty snapshot, got %d", len(records))
	}
}
