package cost

import (
	"context"
	"sort"

	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// FIFOCostStrategy implements First-In-First-Out cost calculation.
//
// The ledger is replayed as a single running balance: receipts push cost
// layers, consumption drains the oldest layers first, and any consumption
// that outran supply is a deficit absorbed by later receipts. The requested
// quantity is then priced against whatever layers remain, oldest first.
type FIFOCostStrategy struct {
	strategy.BaseStrategy
}

// NewFIFOCostStrategy creates a new FIFO cost strategy
func NewFIFOCostStrategy() *FIFOCostStrategy {
	return &FIFOCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fifo",
			strategy.StrategyTypeCost,
			"First-In-First-Out cost calculation",
		),
	}
}

// Method returns the costing method
func (s *FIFOCostStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodFIFO
}

type costLayer struct {
	entry     strategy.StockEntry
	unitCost  decimal.Decimal
	remaining decimal.Decimal
}

// CalculateCost prices costCtx.Quantity using the oldest remaining layers.
// Insufficient supply is reported as a shortfall, not an error.
func (s *FIFOCostStrategy) CalculateCost(
	ctx context.Context,
	costCtx strategy.CostContext,
	entries []strategy.StockEntry,
) (strategy.CostResult, error) {
	requested := costCtx.Quantity
	if requested.IsNegative() {
		return strategy.CostResult{}, shared.NewValidationError("quantity", "requested quantity must not be negative")
	}

	layers, deficit := replayLedger(entries)

	available := decimal.Zero
	for _, l := range layers {
		available = available.Add(l.remaining)
	}

	result := strategy.EmptyCostResult(strategy.CostMethodFIFO, requested)
	result.AvailableQuantity = available.Sub(deficit)
	if requested.IsZero() {
		return result, nil
	}

	remaining := requested
	totalCost := decimal.Zero
	for _, l := range layers {
		if !remaining.IsPositive() {
			break
		}
		if !l.remaining.IsPositive() {
			continue
		}

		take := decimal.Min(remaining, l.remaining)
		cost := l.entry.CostOf(take)
		result.Parts = append(result.Parts, strategy.CostPart{
			EntryID:      l.entry.ID,
			Sequence:     l.entry.Sequence,
			SourceNumber: l.entry.SourceNumber,
			BatchNumber:  l.entry.BatchNumber,
			Quantity:     take,
			UnitCost:     l.unitCost.Round(strategy.UnitPricePrecision),
			Cost:         cost,
		})
		totalCost = totalCost.Add(cost)
		remaining = remaining.Sub(take)
	}

	result.MatchedQuantity = requested.Sub(remaining)
	result.Shortfall = remaining
	result.TotalCost = totalCost.Round(strategy.CurrencyPrecision)
	result.NegativeInventory = remaining.IsPositive() || deficit.IsPositive()
	if result.MatchedQuantity.IsPositive() {
		result.UnitCost = totalCost.Div(result.MatchedQuantity).Round(strategy.UnitPricePrecision)
	}
	return result, nil
}

// replayLedger walks entries in sequence order and returns the cost layers
// still holding stock plus the unabsorbed oversold quantity.
func replayLedger(entries []strategy.StockEntry) ([]*costLayer, decimal.Decimal) {
	sorted := make([]strategy.StockEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Sequence < sorted[j].Sequence
	})

	layers := make([]*costLayer, 0, len(sorted))
	head := 0
	deficit := decimal.Zero

	for _, e := range sorted {
		qty := e.Quantity
		switch {
		case qty.IsPositive():
			if deficit.IsPositive() {
				absorbed := decimal.Min(deficit, qty)
				deficit = deficit.Sub(absorbed)
				qty = qty.Sub(absorbed)
			}
			if qty.IsPositive() {
				layers = append(layers, &costLayer{
					entry:     e,
					unitCost:  e.EffectiveUnitCost(),
					remaining: qty,
				})
			}
		case qty.IsNegative():
			need := qty.Neg()
			for need.IsPositive() && head < len(layers) {
				take := decimal.Min(need, layers[head].remaining)
				layers[head].remaining = layers[head].remaining.Sub(take)
				need = need.Sub(take)
				if layers[head].remaining.IsZero() {
					head++
				}
			}
			deficit = deficit.Add(need)
		}
	}

	return layers[head:], deficit
}
