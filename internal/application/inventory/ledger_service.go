package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LedgerService exposes ledger reads and stock consumption outside the
// purchase order lifecycle.
type LedgerService struct {
	ledger  *Ledger
	costing *CostingService
	metrics *telemetry.PurchasingMetrics
	logger  *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(ledger *Ledger, costing *CostingService, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{ledger: ledger, costing: costing, logger: logger}
}

// SetMetrics sets the purchasing metrics collector
func (s *LedgerService) SetMetrics(m *telemetry.PurchasingMetrics) {
	s.metrics = m
}

// ListForProduct returns a product's batches in FIFO order
func (s *LedgerService) ListForProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]BatchResponse, error) {
	batches, err := s.ledger.ListForProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	return ToBatchResponses(batches), nil
}

// RecordConsumption prices the outgoing quantity by FIFO and appends one
// negative batch carrying that cost. Oversold stock is allowed; the
// shortfall is reported in the returned cost.
func (s *LedgerService) RecordConsumption(ctx context.Context, tenantID, actorID uuid.UUID, req RecordConsumptionRequest) (*ConsumptionResponse, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.NewValidationError("quantity", "consumed quantity must be positive")
	}

	sourceType := inventory.SourceTypeConsumption
	if req.SourceType != "" {
		sourceType = inventory.SourceType(req.SourceType)
	}
	sourceID := uuid.New()
	if req.SourceID != nil && *req.SourceID != uuid.Nil {
		sourceID = *req.SourceID
	}

	cost, err := s.costing.Match(ctx, tenantID, req.ProductID, req.Quantity, "")
	if err != nil {
		return nil, err
	}

	batch, err := inventory.NewInventoryBatch(tenantID, req.ProductID, req.Quantity.Neg(), cost.TotalCost.Neg(), inventory.BatchSource{
		Type:   sourceType,
		ID:     sourceID,
		Number: req.SourceNumber,
	})
	if err != nil {
		return nil, err
	}
	if cost.MatchedQuantity.IsPositive() {
		batch.WithUnitPrice(cost.UnitCost)
	}
	batch.WithCreator(actorID)

	if _, err := s.ledger.AppendBatch(ctx, batch); err != nil {
		return nil, err
	}
	s.metrics.RecordBatchesAppended(ctx, tenantID, 1)

	if cost.NegativeInventory {
		s.logger.Info("consumption oversold inventory",
			zap.String("product_id", req.ProductID.String()),
			zap.String("shortfall", cost.Shortfall.String()),
		)
	}

	return &ConsumptionResponse{Batch: ToBatchResponse(batch), Cost: cost}, nil
}
