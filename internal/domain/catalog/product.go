package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is the catalog view the purchasing core needs: a code to resolve
// order lines against and the last price paid.
type Product struct {
	shared.TenantAggregateRoot
	Code              string
	Name              string
	LastPurchasePrice decimal.Decimal
	LastPurchasedAt   *time.Time
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, code, name string) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("code", "product code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("name", "product name cannot be empty")
	}
	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                strings.TrimSpace(name),
		LastPurchasePrice:   decimal.Zero,
	}, nil
}
