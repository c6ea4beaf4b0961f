package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/partner"
	"github.com/pharmapos/backend/internal/infrastructure/persistence/models"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// GormSupplierRepository implements SupplierRepository using GORM. Names are
// stored NFC-normalized so exact lookups match regardless of input form.
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByIDForTenant finds a supplier by ID within a tenant
func (r *GormSupplierRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "supplier")
	}
	return model.ToDomain(), nil
}

// FindByName finds the oldest supplier with exactly this normalized name
func (r *GormSupplierRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*partner.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID, normalizeName(name)).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		return nil, translateError(err, "supplier")
	}
	return model.ToDomain(), nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	model := models.SupplierModelFromDomain(supplier)
	model.Name = normalizeName(model.Name)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return translateError(err, "supplier")
	}
	return nil
}

func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
