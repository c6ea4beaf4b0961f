package trade

import (
	"context"

	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/pharmapos/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PurchaseOrderMetricsHandler turns purchase order lifecycle events into
// purchasing metrics.
type PurchaseOrderMetricsHandler struct {
	metrics *telemetry.PurchasingMetrics
	logger  *zap.Logger
}

// NewPurchaseOrderMetricsHandler creates a new handler
func NewPurchaseOrderMetricsHandler(metrics *telemetry.PurchasingMetrics, logger *zap.Logger) *PurchaseOrderMetricsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderMetricsHandler{metrics: metrics, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PurchaseOrderMetricsHandler) EventTypes() []string {
	return []string{
		trade.EventTypePurchaseOrderCreated,
		trade.EventTypePurchaseOrderCompleted,
		trade.EventTypePurchaseOrderUnlocked,
		trade.EventTypePurchaseOrderDeleted,
	}
}

// Handle records the metric matching the event
func (h *PurchaseOrderMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.PurchaseOrderCreatedEvent:
		h.metrics.RecordOrderCreated(ctx, e.TenantID())
	case *trade.PurchaseOrderCompletedEvent:
		h.metrics.RecordOrderCompleted(ctx, e.TenantID(), e.TotalAmount)
	case *trade.PurchaseOrderUnlockedEvent:
		h.metrics.RecordOrderUnlocked(ctx, e.TenantID())
	case *trade.PurchaseOrderDeletedEvent:
		h.metrics.RecordOrderDeleted(ctx, e.TenantID())
	default:
		h.logger.Debug("ignoring event", zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*PurchaseOrderMetricsHandler)(nil)
