package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockMetricsProvider implements StockMetricsProvider over the
// inventory_batches ledger table.
type GormStockMetricsProvider struct {
	db *gorm.DB
}

// NewGormStockMetricsProvider creates a new GormStockMetricsProvider.
func NewGormStockMetricsProvider(db *gorm.DB) *GormStockMetricsProvider {
	return &GormStockMetricsProvider{db: db}
}

// GetNegativeStockCount counts products whose signed quantity sum is negative.
func (p *GormStockMetricsProvider) GetNegativeStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	sub := p.db.WithContext(ctx).
		Table("inventory_batches").
		Select("product_id").
		Where("tenant_id = ?", tenantID).
		Group("product_id").
		Having("SUM(quantity) < 0")
	err := p.db.WithContext(ctx).Table("(?) AS negative_products", sub).Count(&count).Error
	return count, err
}

// GormTenantProvider implements TenantProvider by reading the distinct
// tenants that own purchase orders.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns the tenant IDs present in purchase_orders.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("purchase_orders").
		Distinct("tenant_id").
		Pluck("tenant_id", &ids).Error
	return ids, err
}
