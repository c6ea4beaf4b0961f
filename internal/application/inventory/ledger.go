package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceUpdater receives the unit price of the latest inbound batch of a product.
type PriceUpdater interface {
	UpdateLastPurchasePrice(ctx context.Context, tenantID, productID uuid.UUID, price decimal.Decimal) error
}

// Ledger appends and removes inventory batches. After each inbound append it
// pushes the batch price to the catalog; that update is best-effort and never
// fails the append.
type Ledger struct {
	batches inventory.InventoryBatchRepository
	prices  PriceUpdater
	logger  *zap.Logger
}

// NewLedger creates a Ledger. prices may be nil.
func NewLedger(batches inventory.InventoryBatchRepository, prices PriceUpdater, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{batches: batches, prices: prices, logger: logger}
}

// AppendBatch inserts batch and returns its id.
func (l *Ledger) AppendBatch(ctx context.Context, batch *inventory.InventoryBatch) (uuid.UUID, error) {
	if err := l.batches.Append(ctx, batch); err != nil {
		return uuid.Nil, fmt.Errorf("append inventory batch: %w", err)
	}
	if batch.IsInbound() && l.prices != nil {
		if err := l.prices.UpdateLastPurchasePrice(ctx, batch.TenantID, batch.ProductID, batch.UnitPrice); err != nil {
			l.logger.Warn("failed to update last purchase price",
				zap.String("product_id", batch.ProductID.String()),
				zap.String("batch_id", batch.ID.String()),
				zap.Error(err),
			)
		}
	}
	return batch.ID, nil
}

// DeleteBySource removes all batches of one source document.
func (l *Ledger) DeleteBySource(ctx context.Context, tenantID uuid.UUID, sourceType inventory.SourceType, sourceID uuid.UUID) (int64, error) {
	n, err := l.batches.DeleteBySource(ctx, tenantID, sourceType, sourceID)
	if err != nil {
		return 0, fmt.Errorf("delete inventory batches for %s %s: %w", sourceType, sourceID, err)
	}
	return n, nil
}

// ListForProduct returns a product's batches oldest first.
func (l *Ledger) ListForProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]inventory.InventoryBatch, error) {
	return l.batches.ListForProduct(ctx, tenantID, productID)
}

type priceUpdate struct {
	tenantID  uuid.UUID
	productID uuid.UUID
	price     decimal.Decimal
}

// DeferredPriceUpdates records price updates made inside a database
// transaction so they can be applied after commit. A failed update inside
// the transaction would otherwise abort it.
type DeferredPriceUpdates struct {
	mu      sync.Mutex
	updates []priceUpdate
}

// NewDeferredPriceUpdates creates an empty collector
func NewDeferredPriceUpdates() *DeferredPriceUpdates {
	return &DeferredPriceUpdates{}
}

// UpdateLastPurchasePrice records the update; it never fails.
func (d *DeferredPriceUpdates) UpdateLastPurchasePrice(_ context.Context, tenantID, productID uuid.UUID, price decimal.Decimal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.updates = append(d.updates, priceUpdate{tenantID: tenantID, productID: productID, price: price})
	return nil
}

// Len returns the number of pending updates
func (d *DeferredPriceUpdates) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.updates)
}

// Flush applies the recorded updates in order, logging failures.
func (d *DeferredPriceUpdates) Flush(ctx context.Context, target PriceUpdater, logger *zap.Logger) {
	d.mu.Lock()
	pending := d.updates
	d.updates = nil
	d.mu.Unlock()

	if target == nil {
		return
	}
	for _, u := range pending {
		if err := target.UpdateLastPurchasePrice(ctx, u.tenantID, u.productID, u.price); err != nil && logger != nil {
			logger.Warn("failed to update last purchase price",
				zap.String("product_id", u.productID.String()),
				zap.Error(err),
			)
		}
	}
}

var _ PriceUpdater = (*DeferredPriceUpdates)(nil)
