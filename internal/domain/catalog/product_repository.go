package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByIDForTenant finds a product by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by its code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// UpdateLastPurchasePrice records the most recent unit price paid
	UpdateLastPurchasePrice(ctx context.Context, tenantID, id uuid.UUID, price decimal.Decimal) error
}
