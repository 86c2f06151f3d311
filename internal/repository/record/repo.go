// Package record persists innovation records in Redis hashes. It is the
// only writer of the candidate collection; retrieval works off the
// snapshot returned by List and never mutates.
package record

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/innoreg/internal/db"
	"github.com/kailas-cloud/innoreg/internal/domain"
	domrec "github.com/kailas-cloud/innoreg/internal/domain/record"
)

var keyPrefix = domain.KeyPrefix + "record:"

// Repo stores records as Redis hashes under innoreg:record:<id>.
type Repo struct {
	store db.HashStore
}

// New creates a record repository.
func New(store db.HashStore) *Repo {
	return &Repo{store: store}
}

// Save upserts a record.
func (r *Repo) Save(ctx context.Context, rec domrec.Record) error {
	fields, err := toFields(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID(), err)
	}
	// Full overwrite: stale fields from a previous version must not survive.
	if err := r.store.Del(ctx, keyPrefix+rec.ID()); err != nil {
		return fmt.Errorf("clear record %s: %w", rec.ID(), err)
	}
	if err := r.store.HSet(ctx, keyPrefix+rec.ID(), fields); err != nil {
		return fmt.Errorf("save record %s: %w", rec.ID(), err)
	}
	return nil
}

// Get fetches one record by id.
func (r *Repo) Get(ctx context.Context, id string) (domrec.Record, error) {
	fields, err := r.store.HGetAll(ctx, keyPrefix+id)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("get record %s: %w", id, err)
	}
	if len(fields) == 0 {
		return domrec.Record{}, fmt.Errorf("record %s: %w", id, domain.ErrRecordNotFound)
	}
	return fromFields(id, fields)
}

// Delete removes a record. Deleting an absent record is an error: the
// admin UI needs to distinguish "removed" from "never existed".
func (r *Repo) Delete(ctx context.Context, id string) error {
	exists, err := r.store.Exists(ctx, keyPrefix+id)
	if err != nil {
		return fmt.Errorf("check record %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("record %s: %w", id, domain.ErrRecordNotFound)
	}
	if err := r.store.Del(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}

// List returns the full collection sorted by id — the immutable
// snapshot each retrieval operation works off.
func (r *Repo) List(ctx context.Context) ([]domrec.Record, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	records := make([]domrec.Record, 0, len(hashes))
	for i, fields := range hashes {
		if len(fields) == 0 {
			// Deleted between SCAN and HGETALL.
			continue
		}
		id := strings.TrimPrefix(keys[i], keyPrefix)
		rec, err := fromFields(id, fields)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
