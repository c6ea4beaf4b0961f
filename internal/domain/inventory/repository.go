package inventory

import (
	"context"

	"github.com/google/uuid"
)

// InventoryBatchRepository is the append-only ledger store. Rows are never
// updated after insert.
type InventoryBatchRepository interface {
	// Append inserts batch and fills in its storage-assigned Sequence
	Append(ctx context.Context, batch *InventoryBatch) error

	// DeleteBySource removes every batch of one source document in a single
	// statement and returns how many were removed. Zero is not an error.
	DeleteBySource(ctx context.Context, tenantID uuid.UUID, sourceType SourceType, sourceID uuid.UUID) (int64, error)

	// ListForProduct returns the product's batches ordered by Sequence ascending
	ListForProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]InventoryBatch, error)

	// ListBySource returns one document's batches ordered by Sequence ascending
	ListBySource(ctx context.Context, tenantID uuid.UUID, sourceType SourceType, sourceID uuid.UUID) ([]InventoryBatch, error)
}
