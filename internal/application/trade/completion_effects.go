package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	inventoryapp "github.com/pharmapos/backend/internal/application/inventory"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/pharmapos/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AccountingIntegration is the accounting collaborator notified when an
// order crosses the completed boundary.
type AccountingIntegration interface {
	// OnPurchaseOrderCompleted books the order and returns the transaction
	// group id to link, or "" when nothing was booked.
	OnPurchaseOrderCompleted(ctx context.Context, order *trade.PurchaseOrder, userID uuid.UUID) (string, error)
	// OnPurchaseOrderUnlocked reverses what the completion hook booked.
	OnPurchaseOrderUnlocked(ctx context.Context, order *trade.PurchaseOrder) error
}

// EffectContext is shared by the effects of one transition.
type EffectContext struct {
	Order   *trade.PurchaseOrder
	ActorID uuid.UUID
	// Repos is set only while in-transaction effects run.
	Repos TransactionalRepositories
	// Prices collects last-purchase-price updates until after commit.
	Prices                     *inventoryapp.DeferredPriceUpdates
	PreviousTransactionGroupID *string
	// OrderChanged asks for the order to be saved again after the
	// post-commit effects.
	OrderChanged bool
}

// CompletionEffect reacts to an order entering or leaving completed. Both
// hooks must be idempotent.
//
// Effects with InTransaction run inside the order's database transaction and
// their errors abort it. The rest run after commit and their errors are only
// logged.
type CompletionEffect interface {
	Name() string
	InTransaction() bool
	OnEnterCompleted(ctx context.Context, ec *EffectContext) error
	OnExitCompleted(ctx context.Context, ec *EffectContext) error
}

// InventoryEffect writes one ledger batch per resolved line on entry and
// removes the order's batches on exit.
type InventoryEffect struct {
	metrics *telemetry.PurchasingMetrics
	logger  *zap.Logger
}

// NewInventoryEffect creates a new InventoryEffect
func NewInventoryEffect(logger *zap.Logger) *InventoryEffect {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryEffect{logger: logger}
}

// SetMetrics sets the purchasing metrics collector
func (e *InventoryEffect) SetMetrics(m *telemetry.PurchasingMetrics) {
	e.metrics = m
}

// Name returns the effect name
func (e *InventoryEffect) Name() string { return "inventory" }

// InTransaction reports that ledger writes share the order's transaction
func (e *InventoryEffect) InTransaction() bool { return true }

// OnEnterCompleted clears any batches left for the order, then appends one
// per line with a resolved product.
func (e *InventoryEffect) OnEnterCompleted(ctx context.Context, ec *EffectContext) error {
	if ec.Repos == nil {
		return fmt.Errorf("inventory effect requires a transaction")
	}
	order := ec.Order
	var prices inventoryapp.PriceUpdater
	if ec.Prices != nil {
		prices = ec.Prices
	}
	ledger := inventoryapp.NewLedger(ec.Repos.BatchRepo(), prices, e.logger)

	if _, err := ledger.DeleteBySource(ctx, order.TenantID, inventory.SourceTypePurchaseOrder, order.ID); err != nil {
		return err
	}

	source := inventory.BatchSource{
		Type:   inventory.SourceTypePurchaseOrder,
		ID:     order.ID,
		Number: order.OrderNumber,
	}
	appended := 0
	for _, line := range order.ResolvedLines() {
		batch, err := inventory.NewInventoryBatch(order.TenantID, *line.ProductID, line.Quantity, line.TotalCost, source)
		if err != nil {
			return fmt.Errorf("line %d: %w", line.LineNo, err)
		}
		batch.WithBatchNumber(line.BatchNumber, line.ExpiryDate).WithCreator(ec.ActorID)
		if _, err := ledger.AppendBatch(ctx, batch); err != nil {
			return fmt.Errorf("line %d: %w", line.LineNo, err)
		}
		appended++
	}

	e.logger.Info("purchase order batches appended",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("batches", appended),
		zap.Int("unresolved_lines", len(order.Items)-appended),
	)
	e.metrics.RecordBatchesAppended(ctx, order.TenantID, appended)
	return nil
}

// OnExitCompleted removes every batch of the order.
func (e *InventoryEffect) OnExitCompleted(ctx context.Context, ec *EffectContext) error {
	if ec.Repos == nil {
		return fmt.Errorf("inventory effect requires a transaction")
	}
	order := ec.Order
	ledger := inventoryapp.NewLedger(ec.Repos.BatchRepo(), nil, e.logger)

	removed, err := ledger.DeleteBySource(ctx, order.TenantID, inventory.SourceTypePurchaseOrder, order.ID)
	if err != nil {
		return err
	}
	e.logger.Info("purchase order batches removed",
		zap.String("order_id", order.ID.String()),
		zap.Int64("batches", removed),
	)
	e.metrics.RecordBatchesRemoved(ctx, order.TenantID, removed)
	return nil
}

// AccountingEffect forwards transitions to the accounting collaborator
// after commit.
type AccountingEffect struct {
	accounting AccountingIntegration
}

// NewAccountingEffect creates a new AccountingEffect
func NewAccountingEffect(accounting AccountingIntegration) *AccountingEffect {
	return &AccountingEffect{accounting: accounting}
}

// Name returns the effect name
func (e *AccountingEffect) Name() string { return "accounting" }

// InTransaction reports that accounting runs after commit
func (e *AccountingEffect) InTransaction() bool { return false }

// OnEnterCompleted books the order and links the returned group.
func (e *AccountingEffect) OnEnterCompleted(ctx context.Context, ec *EffectContext) error {
	groupID, err := e.accounting.OnPurchaseOrderCompleted(ctx, ec.Order, ec.ActorID)
	if err != nil {
		return err
	}
	if groupID != "" {
		ec.Order.LinkTransactionGroup(groupID)
		ec.OrderChanged = true
	}
	return nil
}

// OnExitCompleted reverses the booking.
func (e *AccountingEffect) OnExitCompleted(ctx context.Context, ec *EffectContext) error {
	return e.accounting.OnPurchaseOrderUnlocked(ctx, ec.Order)
}

var (
	_ CompletionEffect = (*InventoryEffect)(nil)
	_ CompletionEffect = (*AccountingEffect)(nil)
)
