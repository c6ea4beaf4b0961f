package partner

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
)

// Supplier is a vendor purchase orders are placed with
type Supplier struct {
	shared.TenantAggregateRoot
	Code string
	Name string
}

// NewSupplier creates a new supplier
func NewSupplier(tenantID uuid.UUID, code, name string) (*Supplier, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("name", "supplier name cannot be empty")
	}
	return &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.TrimSpace(code),
		Name:                strings.TrimSpace(name),
	}, nil
}
