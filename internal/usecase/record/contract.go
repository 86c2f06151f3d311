package record

import (
	"context"

	domrec "github.com/kailas-cloud/innoreg/internal/domain/record"
)

// Repository defines the storage contract for record management.
type Repository interface {
	Save(ctx context.Context, rec domrec.Record) error
	Get(ctx context.Context, id string) (domrec.Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domrec.Record, error)
}
