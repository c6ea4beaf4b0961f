package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/shared/strategy"
	"github.com/pharmapos/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CostStrategyProvider provides cost strategies by name; an empty name
// selects the configured default.
type CostStrategyProvider interface {
	GetCostStrategy(name string) (strategy.CostCalculationStrategy, error)
}

// CostingService prices quantities against the inventory ledger. It only
// reads the ledger.
type CostingService struct {
	batches    inventory.InventoryBatchRepository
	strategies CostStrategyProvider
	metrics    *telemetry.PurchasingMetrics
	logger     *zap.Logger
}

// NewCostingService creates a new CostingService
func NewCostingService(batches inventory.InventoryBatchRepository, strategies CostStrategyProvider, logger *zap.Logger) *CostingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CostingService{batches: batches, strategies: strategies, logger: logger}
}

// SetMetrics sets the purchasing metrics collector
func (s *CostingService) SetMetrics(m *telemetry.PurchasingMetrics) {
	s.metrics = m
}

// Match prices quantity of productID by walking its batches oldest first.
func (s *CostingService) Match(ctx context.Context, tenantID, productID uuid.UUID, quantity decimal.Decimal, method string) (strategy.CostResult, error) {
	if productID == uuid.Nil {
		return strategy.CostResult{}, shared.NewValidationError("product_id", "product is required")
	}
	if quantity.IsNegative() {
		return strategy.CostResult{}, shared.NewValidationError("quantity", "quantity must not be negative")
	}

	costStrategy, err := s.strategies.GetCostStrategy(method)
	if err != nil {
		return strategy.CostResult{}, err
	}

	batches, err := s.batches.ListForProduct(ctx, tenantID, productID)
	if err != nil {
		return strategy.CostResult{}, fmt.Errorf("list batches for product %s: %w", productID, err)
	}

	entries := make([]strategy.StockEntry, len(batches))
	for i := range batches {
		entries[i] = batches[i].ToStockEntry()
	}

	result, err := costStrategy.CalculateCost(ctx, strategy.CostContext{
		TenantID:  tenantID.String(),
		ProductID: productID.String(),
		Quantity:  quantity,
	}, entries)
	if err != nil {
		return strategy.CostResult{}, err
	}

	if result.NegativeInventory {
		s.logger.Debug("cost match reached negative inventory",
			zap.String("product_id", productID.String()),
			zap.String("requested", quantity.String()),
			zap.String("shortfall", result.Shortfall.String()),
		)
	}
	s.metrics.RecordCostMatch(ctx, tenantID, string(result.Method), result.Shortfall.IsPositive())
	return result, nil
}

// Simulate answers a cost preview request.
func (s *CostingService) Simulate(ctx context.Context, tenantID uuid.UUID, req CostPreviewRequest) (*CostPreviewResponse, error) {
	result, err := s.Match(ctx, tenantID, req.ProductID, req.Quantity, req.Method)
	if err != nil {
		return nil, err
	}
	return &CostPreviewResponse{ProductID: req.ProductID, CostResult: result}, nil
}
