package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// PurchasingMetrics tracks the purchase order lifecycle, the inventory
// ledger and order-number allocation. All record methods are safe to call
// on a nil receiver so services can run without metrics.
type PurchasingMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	orderCreatedTotal   *Counter
	orderCompletedTotal *Counter
	orderUnlockedTotal  *Counter
	orderDeletedTotal   *Counter
	completedAmount     *Counter

	batchesAppendedTotal *Counter
	batchesRemovedTotal  *Counter
	costMatchTotal       *Counter

	allocatorCollisionTotal *Counter
	allocatorExhaustedTotal *Counter
	effectFailureTotal      *Counter

	negativeStockProducts *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	stockProvider StockMetricsProvider
}

// StockMetricsProvider supplies ledger aggregates for periodic collection
// without the telemetry layer depending on the inventory domain.
type StockMetricsProvider interface {
	// GetNegativeStockCount counts products whose signed ledger sum is below zero
	GetNegativeStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// PurchasingMetricsConfig holds configuration for purchasing metrics.
type PurchasingMetricsConfig struct {
	Meter         metric.Meter
	Logger        *zap.Logger
	StockProvider StockMetricsProvider
}

// NewPurchasingMetrics creates a new PurchasingMetrics instance.
func NewPurchasingMetrics(cfg PurchasingMetricsConfig) (*PurchasingMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &PurchasingMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		stockProvider: cfg.StockProvider,
	}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&pm.orderCreatedTotal, "pharma_purchase_order_created_total", "Purchase orders created", "{orders}"},
		{&pm.orderCompletedTotal, "pharma_purchase_order_completed_total", "Transitions into completed", "{orders}"},
		{&pm.orderUnlockedTotal, "pharma_purchase_order_unlocked_total", "Transitions out of completed", "{orders}"},
		{&pm.orderDeletedTotal, "pharma_purchase_order_deleted_total", "Purchase orders deleted", "{orders}"},
		{&pm.completedAmount, "pharma_purchase_order_completed_amount_total", "Completed order amount in cents", "{cents}"},
		{&pm.batchesAppendedTotal, "pharma_inventory_batches_appended_total", "Ledger batches appended", "{batches}"},
		{&pm.batchesRemovedTotal, "pharma_inventory_batches_removed_total", "Ledger batches removed by source", "{batches}"},
		{&pm.costMatchTotal, "pharma_inventory_cost_match_total", "Cost matches computed", "{matches}"},
		{&pm.allocatorCollisionTotal, "pharma_order_number_collision_total", "Order number candidates already taken", "{candidates}"},
		{&pm.allocatorExhaustedTotal, "pharma_order_number_exhausted_total", "Order number allocations that ran out of attempts", "{allocations}"},
		{&pm.effectFailureTotal, "pharma_completion_effect_failure_total", "Best-effort completion effects that failed", "{failures}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	pm.negativeStockProducts, err = NewGauge(
		cfg.Meter,
		"pharma_inventory_negative_stock_products",
		"Products whose ledger balance is below zero",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	return pm, nil
}

// RecordOrderCreated records a purchase order creation.
func (pm *PurchasingMetrics) RecordOrderCreated(ctx context.Context, tenantID uuid.UUID) {
	if pm == nil {
		return
	}
	pm.orderCreatedTotal.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordOrderCompleted records an entry into completed and its amount.
func (pm *PurchasingMetrics) RecordOrderCompleted(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) {
	if pm == nil {
		return
	}
	attr := AttrTenantID.String(tenantID.String())
	pm.orderCompletedTotal.Inc(ctx, attr)
	pm.completedAmount.Add(ctx, amount.Mul(decimal.NewFromInt(100)).IntPart(), attr)
}

// RecordOrderUnlocked records an exit from completed.
func (pm *PurchasingMetrics) RecordOrderUnlocked(ctx context.Context, tenantID uuid.UUID) {
	if pm == nil {
		return
	}
	pm.orderUnlockedTotal.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordOrderDeleted records a purchase order deletion.
func (pm *PurchasingMetrics) RecordOrderDeleted(ctx context.Context, tenantID uuid.UUID) {
	if pm == nil {
		return
	}
	pm.orderDeletedTotal.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordBatchesAppended records ledger appends.
func (pm *PurchasingMetrics) RecordBatchesAppended(ctx context.Context, tenantID uuid.UUID, n int) {
	if pm == nil || n <= 0 {
		return
	}
	pm.batchesAppendedTotal.Add(ctx, int64(n), AttrTenantID.String(tenantID.String()))
}

// RecordBatchesRemoved records ledger rows removed by source.
func (pm *PurchasingMetrics) RecordBatchesRemoved(ctx context.Context, tenantID uuid.UUID, n int64) {
	if pm == nil || n <= 0 {
		return
	}
	pm.batchesRemovedTotal.Add(ctx, n, AttrTenantID.String(tenantID.String()))
}

// RecordCostMatch records one cost computation.
func (pm *PurchasingMetrics) RecordCostMatch(ctx context.Context, tenantID uuid.UUID, method string, shortfall bool) {
	if pm == nil {
		return
	}
	pm.costMatchTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrCostMethod.String(method),
		AttrShortfall.Bool(shortfall),
	)
}

// RecordAllocatorCollision records a taken order-number candidate.
func (pm *PurchasingMetrics) RecordAllocatorCollision(ctx context.Context, kind string) {
	if pm == nil {
		return
	}
	pm.allocatorCollisionTotal.Inc(ctx, AttrOrderKind.String(kind))
}

// RecordAllocatorExhausted records an allocation that ran out of attempts.
func (pm *PurchasingMetrics) RecordAllocatorExhausted(ctx context.Context, kind string) {
	if pm == nil {
		return
	}
	pm.allocatorExhaustedTotal.Inc(ctx, AttrOrderKind.String(kind))
}

// RecordEffectFailure records a failed best-effort effect.
func (pm *PurchasingMetrics) RecordEffectFailure(ctx context.Context, effect string) {
	if pm == nil {
		return
	}
	pm.effectFailureTotal.Inc(ctx, AttrEffect.String(effect))
}

// RecordNegativeStockCount records the gauge for one tenant.
func (pm *PurchasingMetrics) RecordNegativeStockCount(ctx context.Context, tenantID uuid.UUID, count int64) {
	if pm == nil {
		return
	}
	pm.negativeStockProducts.Record(ctx, count, AttrTenantID.String(tenantID.String()))
}

// StartPeriodicCollection starts collecting gauge metrics every interval
// (default 5 minutes). It does not block; call Stop to end it.
func (pm *PurchasingMetrics) StartPeriodicCollection(ctx context.Context, tenants TenantProvider, interval time.Duration) {
	if pm == nil {
		return
	}
	pm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go pm.runPeriodicCollection(ctx, tenants, interval)
	})
}

func (pm *PurchasingMetrics) runPeriodicCollection(ctx context.Context, tenants TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pm.collectStockMetrics(ctx, tenants)

	for {
		select {
		case <-pm.stopChan:
			pm.logger.Info("Stopping periodic purchasing metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pm.collectStockMetrics(ctx, tenants)
		}
	}
}

func (pm *PurchasingMetrics) collectStockMetrics(ctx context.Context, tenants TenantProvider) {
	if pm.stockProvider == nil {
		return
	}
	tenantIDs, err := tenants.GetActiveTenantIDs(ctx)
	if err != nil {
		pm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}
	for _, tenantID := range tenantIDs {
		count, err := pm.stockProvider.GetNegativeStockCount(ctx, tenantID)
		if err != nil {
			pm.logger.Warn("Failed to get negative stock count",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		pm.RecordNegativeStockCount(ctx, tenantID, count)
	}
}

// Stop stops the periodic collection.
func (pm *PurchasingMetrics) Stop() {
	if pm == nil {
		return
	}
	pm.stopOnce.Do(func() {
		close(pm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewPurchasingMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
