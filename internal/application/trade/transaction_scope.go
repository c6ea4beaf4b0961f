package trade

import (
	"context"

	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/trade"
)

// TransactionScope runs purchase order writes and their ledger effects in
// one database transaction.
type TransactionScope interface {
	// Execute runs fn inside a transaction. An error from fn rolls back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to the current
// transaction.
type TransactionalRepositories interface {
	PurchaseOrderRepo() trade.PurchaseOrderRepository
	BatchRepo() inventory.InventoryBatchRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// Used in tests.
type NoOpTransactionScope struct {
	orderRepo trade.PurchaseOrderRepository
	batchRepo inventory.InventoryBatchRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(orderRepo trade.PurchaseOrderRepository, batchRepo inventory.InventoryBatchRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{orderRepo: orderRepo, batchRepo: batchRepo}
}

// Execute runs fn without a transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// PurchaseOrderRepo returns the purchase order repository
func (s *NoOpTransactionScope) PurchaseOrderRepo() trade.PurchaseOrderRepository {
	return s.orderRepo
}

// BatchRepo returns the inventory batch repository
func (s *NoOpTransactionScope) BatchRepo() inventory.InventoryBatchRepository {
	return s.batchRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
