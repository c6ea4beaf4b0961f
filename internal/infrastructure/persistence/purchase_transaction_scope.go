package persistence

import (
	"context"

	apptrade "github.com/pharmapos/backend/internal/application/trade"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormPurchaseTransactionScope implements TransactionScope using GORM
// transactions. Order writes and ledger effects commit or roll back together.
type GormPurchaseTransactionScope struct {
	db *gorm.DB
}

// NewGormPurchaseTransactionScope creates a new GormPurchaseTransactionScope
func NewGormPurchaseTransactionScope(db *gorm.DB) *GormPurchaseTransactionScope {
	return &GormPurchaseTransactionScope{db: db}
}

// Execute runs fn within a database transaction. An error from fn rolls back.
func (s *GormPurchaseTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormPurchaseRepositories{tx: tx})
	})
}

// gormPurchaseRepositories binds repositories to the current transaction
type gormPurchaseRepositories struct {
	tx *gorm.DB
}

// PurchaseOrderRepo returns the purchase order repository scoped to the transaction
func (r *gormPurchaseRepositories) PurchaseOrderRepo() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// BatchRepo returns the inventory batch repository scoped to the transaction
func (r *gormPurchaseRepositories) BatchRepo() inventory.InventoryBatchRepository {
	return NewGormInventoryBatchRepository(r.tx)
}

var (
	_ apptrade.TransactionScope          = (*GormPurchaseTransactionScope)(nil)
	_ apptrade.TransactionalRepositories = (*gormPurchaseRepositories)(nil)
)
