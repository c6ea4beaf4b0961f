package strategy

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyPrecision is the number of decimal places costs are rounded to.
// Rounding happens once on the final total, never per part.
const CurrencyPrecision int32 = 2

// UnitPricePrecision is the number of decimal places derived unit prices keep.
const UnitPricePrecision int32 = 4

// CostMethod represents the inventory costing method
type CostMethod string

const (
	CostMethodFIFO          CostMethod = "fifo"
	CostMethodMovingAverage CostMethod = "moving_average"
)

// String returns the string representation of the cost method
func (m CostMethod) String() string {
	return string(m)
}

// IsValid reports whether m names a supported method.
func (m CostMethod) IsValid() bool {
	return m == CostMethodFIFO || m == CostMethodMovingAverage
}

// StockEntry is one ledger movement as seen by a cost strategy.
// Quantity is signed: positive for receipts, negative for consumption.
type StockEntry struct {
	ID           string
	Sequence     int64
	SourceNumber string
	BatchNumber  string
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
	TotalCost    decimal.Decimal
	EntryDate    time.Time
}

// EffectiveUnitCost returns the entry's unit cost at full precision. The
// total over the quantity wins; the stored UnitCost is rounded for display
// and only used when the entry carries no total. Entries with neither yield
// zero.
func (e StockEntry) EffectiveUnitCost() decimal.Decimal {
	if !e.Quantity.IsZero() && !e.TotalCost.IsZero() {
		return e.TotalCost.Div(e.Quantity).Abs()
	}
	return e.UnitCost.Abs()
}

// CostOf prices qty units of the entry. With a known total it multiplies
// before dividing, so consuming the whole entry costs exactly its total.
func (e StockEntry) CostOf(qty decimal.Decimal) decimal.Decimal {
	if !e.Quantity.IsZero() && !e.TotalCost.IsZero() {
		return qty.Mul(e.TotalCost.Abs()).Div(e.Quantity.Abs())
	}
	return qty.Mul(e.UnitCost.Abs())
}

// CostContext provides context for cost calculation
type CostContext struct {
	TenantID  string
	ProductID string
	Quantity  decimal.Decimal
}

// CostPart is the slice of one ledger entry consumed by a match.
type CostPart struct {
	EntryID      string          `json:"batch_id"`
	Sequence     int64           `json:"sequence"`
	SourceNumber string          `json:"source_number,omitempty"`
	BatchNumber  string          `json:"batch_number,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_price"`
	Cost         decimal.Decimal `json:"cost"`
}

// CostResult contains the result of cost calculation.
// MatchedQuantity + Shortfall always equals RequestedQuantity.
type CostResult struct {
	Method            CostMethod      `json:"method"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	MatchedQuantity   decimal.Decimal `json:"matched_quantity"`
	Shortfall         decimal.Decimal `json:"shortfall"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	NegativeInventory bool            `json:"negative_inventory"`
	Parts             []CostPart      `json:"parts"`
}

// EmptyCostResult returns a zero-cost result for quantity.
func EmptyCostResult(method CostMethod, quantity decimal.Decimal) CostResult {
	return CostResult{
		Method:            method,
		RequestedQuantity: quantity,
		MatchedQuantity:   decimal.Zero,
		Shortfall:         decimal.Zero,
		AvailableQuantity: decimal.Zero,
		TotalCost:         decimal.Zero,
		UnitCost:          decimal.Zero,
		Parts:             []CostPart{},
	}
}

// CostCalculationStrategy defines the interface for inventory cost calculation
type CostCalculationStrategy interface {
	Strategy
	// Method returns the costing method used by this strategy
	Method() CostMethod
	// CalculateCost prices costCtx.Quantity against entries given in ledger order.
	CalculateCost(ctx context.Context, costCtx CostContext, entries []StockEntry) (CostResult, error)
}
