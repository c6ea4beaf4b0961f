package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
)

// PurchaseOrderFilter narrows purchase order listings
type PurchaseOrderFilter struct {
	shared.Filter
	Status        *PurchaseOrderStatus
	PaymentStatus *PaymentStatus
	SupplierID    *uuid.UUID
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByIDForTenant loads an order with its lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindByOrderNumber loads an order by its system order number
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*PurchaseOrder, error)

	// FindAllForTenant lists orders matching filter
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PurchaseOrderFilter) ([]PurchaseOrder, error)

	// CountForTenant counts orders matching filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PurchaseOrderFilter) (int64, error)

	// Create inserts a new order with its lines. A unique-constraint
	// violation is returned as a conflict wrapping shared.ErrDuplicateKey.
	Create(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock updates an existing order if its stored version still
	// equals order.Version, then bumps the version.
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// DeleteForTenant removes an order and its lines. It refuses with a
	// conflict when the stored order is completed, and with a concurrency
	// conflict when its version is no longer expectedVersion.
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID, expectedVersion int) error

	// ExistsByOrderNumber checks order numbers across all tenants
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)

	// ExistsByPOID checks display codes within a tenant, ignoring excludeID
	ExistsByPOID(ctx context.Context, tenantID uuid.UUID, poid string, excludeID *uuid.UUID) (bool, error)
}
