package cost

import (
	"context"
	"sort"

	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// MovingAverageCostStrategy implements weighted average cost calculation
type MovingAverageCostStrategy struct {
	strategy.BaseStrategy
}

// NewMovingAverageCostStrategy creates a new moving average cost strategy
func NewMovingAverageCostStrategy() *MovingAverageCostStrategy {
	return &MovingAverageCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"moving_average",
			strategy.StrategyTypeCost,
			"Weighted moving average cost calculation",
		),
	}
}

// Method returns the costing method
func (s *MovingAverageCostStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodMovingAverage
}

// CalculateCost prices the requested quantity at the running weighted
// average. Receipts re-weight the average; consumption leaves it unchanged.
func (s *MovingAverageCostStrategy) CalculateCost(
	ctx context.Context,
	costCtx strategy.CostContext,
	entries []strategy.StockEntry,
) (strategy.CostResult, error) {
	requested := costCtx.Quantity
	if requested.IsNegative() {
		return strategy.CostResult{}, shared.NewValidationError("quantity", "requested quantity must not be negative")
	}

	sorted := make([]strategy.StockEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Sequence < sorted[j].Sequence
	})

	onHand := decimal.Zero
	avg := decimal.Zero
	for _, e := range sorted {
		if e.Quantity.IsPositive() {
			base := decimal.Max(onHand, decimal.Zero)
			value := base.Mul(avg).Add(e.CostOf(e.Quantity))
			onHand = onHand.Add(e.Quantity)
			if total := base.Add(e.Quantity); total.IsPositive() {
				avg = value.Div(total)
			}
			continue
		}
		onHand = onHand.Add(e.Quantity)
	}

	result := strategy.EmptyCostResult(strategy.CostMethodMovingAverage, requested)
	result.AvailableQuantity = onHand
	if requested.IsZero() {
		return result, nil
	}

	matched := decimal.Min(requested, decimal.Max(onHand, decimal.Zero))
	result.MatchedQuantity = matched
	result.Shortfall = requested.Sub(matched)
	result.NegativeInventory = result.Shortfall.IsPositive() || onHand.IsNegative()
	result.UnitCost = avg.Round(strategy.UnitPricePrecision)
	result.TotalCost = matched.Mul(avg).Round(strategy.CurrencyPrecision)
	return result, nil
}
