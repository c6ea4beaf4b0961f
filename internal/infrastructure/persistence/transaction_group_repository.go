package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/finance"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionGroupRepository implements TransactionGroupRepository using GORM
type GormTransactionGroupRepository struct {
	db *gorm.DB
}

// NewGormTransactionGroupRepository creates a new GormTransactionGroupRepository
func NewGormTransactionGroupRepository(db *gorm.DB) *GormTransactionGroupRepository {
	return &GormTransactionGroupRepository{db: db}
}

// Create inserts the group and its entries atomically
func (r *GormTransactionGroupRepository) Create(ctx context.Context, group *finance.TransactionGroup) error {
	model := models.TransactionGroupModelFromDomain(group)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Entries").Create(model).Error; err != nil {
			return translateError(err, "transaction group")
		}
		if len(model.Entries) == 0 {
			return nil
		}
		if err := tx.Create(&model.Entries).Error; err != nil {
			return translateError(err, "journal entries")
		}
		return nil
	})
}

// FindActiveBySource returns the posted group of a source document
func (r *GormTransactionGroupRepository) FindActiveBySource(ctx context.Context, tenantID uuid.UUID, sourceType string, sourceID uuid.UUID) (*finance.TransactionGroup, error) {
	var model models.TransactionGroupModel
	if err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Where("tenant_id = ? AND source_type = ? AND source_id = ? AND status = ?",
			tenantID, sourceType, sourceID, finance.TransactionGroupStatusPosted).
		Order("posted_at DESC").
		First(&model).Error; err != nil {
		return nil, translateError(err, "transaction group")
	}
	return model.ToDomain(), nil
}

// MarkVoided persists a voided status
func (r *GormTransactionGroupRepository) MarkVoided(ctx context.Context, group *finance.TransactionGroup) error {
	result := r.db.WithContext(ctx).Model(&models.TransactionGroupModel{}).
		Where("tenant_id = ? AND id = ?", group.TenantID, group.ID).
		Updates(map[string]any{
			"status":     group.Status,
			"voided_at":  group.VoidedAt,
			"updated_at": group.UpdatedAt,
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return translateError(result.Error, "void transaction group")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("transaction group")
	}
	return nil
}

var _ finance.TransactionGroupRepository = (*GormTransactionGroupRepository)(nil)
