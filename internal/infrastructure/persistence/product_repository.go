package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/catalog"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByIDForTenant finds a product by ID within a tenant
func (r *GormProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "product")
	}
	return model.ToDomain(), nil
}

// FindByCode finds a product by its code within a tenant
func (r *GormProductRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error; err != nil {
		return nil, translateError(err, "product")
	}
	return model.ToDomain(), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return translateError(err, "product")
	}
	return nil
}

// UpdateLastPurchasePrice records the most recent unit price paid
func (r *GormProductRepository) UpdateLastPurchasePrice(ctx context.Context, tenantID, id uuid.UUID, price decimal.Decimal) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]any{
			"last_purchase_price": price,
			"last_purchased_at":   now,
			"updated_at":          now,
		})
	if result.Error != nil {
		return translateError(result.Error, "update last purchase price")
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("product")
	}
	return nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
