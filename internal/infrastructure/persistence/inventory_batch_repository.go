package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInventoryBatchRepository implements the append-only ledger store
type GormInventoryBatchRepository struct {
	db *gorm.DB
}

// NewGormInventoryBatchRepository creates a new GormInventoryBatchRepository
func NewGormInventoryBatchRepository(db *gorm.DB) *GormInventoryBatchRepository {
	return &GormInventoryBatchRepository{db: db}
}

// Append inserts batch and copies the database-assigned sequence back
func (r *GormInventoryBatchRepository) Append(ctx context.Context, batch *inventory.InventoryBatch) error {
	model := models.InventoryBatchModelFromDomain(batch)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, "inventory batch")
	}
	batch.Sequence = model.Sequence
	return nil
}

// DeleteBySource removes every batch of one source document in one statement
func (r *GormInventoryBatchRepository) DeleteBySource(ctx context.Context, tenantID uuid.UUID, sourceType inventory.SourceType, sourceID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source_type = ? AND source_id = ?", tenantID, sourceType, sourceID).
		Delete(&models.InventoryBatchModel{})
	if result.Error != nil {
		return 0, translateError(result.Error, "delete inventory batches")
	}
	return result.RowsAffected, nil
}

// ListForProduct returns the product's batches in FIFO order
func (r *GormInventoryBatchRepository) ListForProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]inventory.InventoryBatch, error) {
	return r.list(ctx, r.db.Where("tenant_id = ? AND product_id = ?", tenantID, productID))
}

// ListBySource returns one document's batches in FIFO order
func (r *GormInventoryBatchRepository) ListBySource(ctx context.Context, tenantID uuid.UUID, sourceType inventory.SourceType, sourceID uuid.UUID) ([]inventory.InventoryBatch, error) {
	return r.list(ctx, r.db.Where("tenant_id = ? AND source_type = ? AND source_id = ?", tenantID, sourceType, sourceID))
}

func (r *GormInventoryBatchRepository) list(ctx context.Context, query *gorm.DB) ([]inventory.InventoryBatch, error) {
	var rows []models.InventoryBatchModel
	if err := query.WithContext(ctx).Order("sequence ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "list inventory batches")
	}
	batches := make([]inventory.InventoryBatch, len(rows))
	for i := range rows {
		batches[i] = *rows[i].ToDomain()
	}
	return batches, nil
}

var _ inventory.InventoryBatchRepository = (*GormInventoryBatchRepository)(nil)
