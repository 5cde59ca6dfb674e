package icd10

import "context"

// CodeRepository provides access to the ICD-10 reference table.
type CodeRepository interface {
	// ListOrdered returns stored records ordered by code. limit <= 0
	// returns the full set; a positive limit supports sampled runs.
	ListOrdered(ctx context.Context, limit int) ([]*CodeRecord, error)
	// UpsertAll writes records in fixed-size chunks, each inside its own
	// transaction, applying the non-regressive merge policy. It returns
	// the number of chunks committed; on error the failing chunk is
	// rolled back, later chunks are not attempted, and earlier chunks
	// stay committed.
	UpsertAll(ctx context.Context, records []*CodeRecord, chunkSize int) (int, error)
	// Coverage computes post-commit per-field coverage statistics.
	Coverage(ctx context.Context) (*DatabaseStats, error)
}
