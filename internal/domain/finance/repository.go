package finance

import (
	"context"

	"github.com/google/uuid"
)

// TransactionGroupRepository defines persistence for accounting groups
type TransactionGroupRepository interface {
	// Create inserts a group with its entries
	Create(ctx context.Context, group *TransactionGroup) error

	// FindActiveBySource returns the posted group of a source document
	FindActiveBySource(ctx context.Context, tenantID uuid.UUID, sourceType string, sourceID uuid.UUID) (*TransactionGroup, error)

	// MarkVoided persists a voided status
	MarkVoided(ctx context.Context, group *TransactionGroup) error
}
