package cost

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func receipt(id string, seq int64, qty, total string) strategy.StockEntry {
	return strategy.StockEntry{
		ID:        id,
		Sequence:  seq,
		Quantity:  d(qty),
		TotalCost: d(total),
	}
}

func consumption(id string, seq int64, qty string) strategy.StockEntry {
	return strategy.StockEntry{ID: id, Sequence: seq, Quantity: d(qty).Neg()}
}

func TestNewFIFOCostStrategy(t *testing.T) {
	s := NewFIFOCostStrategy()

	assert.NotNil(t, s)
	assert.Equal(t, "fifo", s.Name())
	assert.Equal(t, strategy.StrategyTypeCost, s.Type())
	assert.Equal(t, strategy.CostMethodFIFO, s.Method())
	assert.NotEmpty(t, s.Description())
}

func TestFIFOCostStrategy_CalculateCost(t *testing.T) {
	s := NewFIFOCostStrategy()
	ctx := context.Background()

	twoBatches := []strategy.StockEntry{
		receipt("b1", 1, "10", "100"),
		receipt("b2", 2, "5", "60"),
	}

	type part struct {
		id   string
		qty  string
		unit string
	}

	tests := []struct {
		name      string
		entries   []strategy.StockEntry
		quantity  string
		parts     []part
		total     string
		shortfall string
		available string
		negative  bool
	}{
		{
			name:      "spans two batches",
			entries:   twoBatches,
			quantity:  "12",
			parts:     []part{{"b1", "10", "10"}, {"b2", "2", "12"}},
			total:     "124",
			shortfall: "0",
			available: "15",
		},
		{
			name:      "exceeds supply",
			entries:   twoBatches,
			quantity:  "20",
			parts:     []part{{"b1", "10", "10"}, {"b2", "5", "12"}},
			total:     "160",
			shortfall: "5",
			available: "15",
			negative:  true,
		},
		{
			name:      "zero quantity",
			entries:   twoBatches,
			quantity:  "0",
			total:     "0",
			shortfall: "0",
			available: "15",
		},
		{
			name:      "no batches",
			entries:   nil,
			quantity:  "7",
			total:     "0",
			shortfall: "7",
			available: "0",
			negative:  true,
		},
		{
			name: "prior consumption drains oldest batch first",
			entries: []strategy.StockEntry{
				receipt("b1", 1, "10", "100"),
				consumption("s1", 2, "4"),
				receipt("b2", 3, "5", "60"),
			},
			quantity:  "8",
			parts:     []part{{"b1", "6", "10"}, {"b2", "2", "12"}},
			total:     "84",
			shortfall: "0",
			available: "11",
		},
		{
			name: "oversold deficit absorbed by later receipt",
			entries: []strategy.StockEntry{
				consumption("s1", 1, "3"),
				receipt("b1", 2, "10", "100"),
			},
			quantity:  "10",
			parts:     []part{{"b1", "7", "10"}},
			total:     "70",
			shortfall: "3",
			available: "7",
			negative:  true,
		},
		{
			name: "unabsorbed deficit flags negative inventory",
			entries: []strategy.StockEntry{
				receipt("b1", 1, "2", "20"),
				consumption("s1", 2, "5"),
			},
			quantity:  "1",
			total:     "0",
			shortfall: "1",
			available: "-3",
			negative:  true,
		},
		{
			name: "entries out of order are sorted by sequence",
			entries: []strategy.StockEntry{
				receipt("b2", 9, "5", "60"),
				receipt("b1", 3, "10", "100"),
			},
			quantity:  "11",
			parts:     []part{{"b1", "10", "10"}, {"b2", "1", "12"}},
			total:     "112",
			shortfall: "0",
			available: "15",
		},
		{
			name: "batch without price costs zero",
			entries: []strategy.StockEntry{
				receipt("b1", 1, "4", "0"),
			},
			quantity:  "2",
			parts:     []part{{"b1", "2", "0"}},
			total:     "0",
			shortfall: "0",
			available: "4",
		},
		{
			name: "unit cost used when the total is unknown",
			entries: []strategy.StockEntry{
				{ID: "b1", Sequence: 1, Quantity: d("3"), UnitCost: d("2.5")},
			},
			quantity:  "2",
			parts:     []part{{"b1", "2", "2.5"}},
			total:     "5",
			shortfall: "0",
			available: "3",
		},
		{
			name: "rounded unit cost does not reprice the batch",
			entries: []strategy.StockEntry{
				{ID: "b1", Sequence: 1, Quantity: d("300"), UnitCost: d("0.3333"), TotalCost: d("100")},
			},
			quantity:  "300",
			total:     "100",
			shortfall: "0",
			available: "300",
		},
		{
			name: "total rounded once at the end",
			entries: []strategy.StockEntry{
				receipt("b1", 1, "3", "10"),
				receipt("b2", 2, "3", "10"),
			},
			quantity:  "6",
			total:     "20",
			shortfall: "0",
			available: "6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.CalculateCost(ctx, strategy.CostContext{Quantity: d(tt.quantity)}, tt.entries)
			require.NoError(t, err)

			assert.Equal(t, strategy.CostMethodFIFO, result.Method)
			assert.True(t, d(tt.total).Equal(result.TotalCost), "total: got %s", result.TotalCost)
			assert.True(t, d(tt.shortfall).Equal(result.Shortfall), "shortfall: got %s", result.Shortfall)
			assert.True(t, d(tt.available).Equal(result.AvailableQuantity), "available: got %s", result.AvailableQuantity)
			assert.Equal(t, tt.negative, result.NegativeInventory)

			if tt.parts != nil {
				require.Len(t, result.Parts, len(tt.parts))
				for i, p := range tt.parts {
					assert.Equal(t, p.id, result.Parts[i].EntryID)
					assert.True(t, d(p.qty).Equal(result.Parts[i].Quantity), "part %d qty: got %s", i, result.Parts[i].Quantity)
					assert.True(t, d(p.unit).Equal(result.Parts[i].UnitCost), "part %d unit: got %s", i, result.Parts[i].UnitCost)
				}
			}

			consumed := decimal.Zero
			for _, p := range result.Parts {
				consumed = consumed.Add(p.Quantity)
			}
			assert.True(t, d(tt.quantity).Equal(consumed.Add(result.Shortfall)), "quantity must be conserved")
			assert.True(t, consumed.Equal(result.MatchedQuantity))
		})
	}
}

func TestFIFOCostStrategy_OlderBatchExhaustedFirst(t *testing.T) {
	s := NewFIFOCostStrategy()
	entries := []strategy.StockEntry{
		receipt("a", 1, "4", "4"),
		receipt("b", 2, "4", "8"),
		receipt("c", 3, "4", "12"),
	}

	for q := 1; q <= 14; q++ {
		result, err := s.CalculateCost(context.Background(), strategy.CostContext{Quantity: decimal.NewFromInt(int64(q))}, entries)
		require.NoError(t, err)

		for i := 1; i < len(result.Parts); i++ {
			prev := result.Parts[i-1]
			assert.Less(t, prev.Sequence, result.Parts[i].Sequence)
			assert.True(t, prev.Quantity.Equal(d("4")), "batch %s must be drained before %s is touched", prev.EntryID, result.Parts[i].EntryID)
		}
	}
}

func TestFIFOCostStrategy_NegativeQuantity(t *testing.T) {
	s := NewFIFOCostStrategy()

	_, err := s.CalculateCost(context.Background(), strategy.CostContext{Quantity: d("-1")}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestFIFOCostStrategy_PricesLedgerBatchesAtFullPrecision(t *testing.T) {
	s := NewFIFOCostStrategy()
	tenantID, productID := uuid.New(), uuid.New()
	source := inventory.BatchSource{Type: inventory.SourceTypePurchaseOrder, ID: uuid.New(), Number: "PO-1"}

	first, err := inventory.NewInventoryBatch(tenantID, productID, d("300"), d("100"), source)
	require.NoError(t, err)
	first.Sequence = 1
	second, err := inventory.NewInventoryBatch(tenantID, productID, d("3"), d("10"), source)
	require.NoError(t, err)
	second.Sequence = 2
	require.True(t, d("0.3333").Equal(first.UnitPrice), "stored unit price stays rounded for display")

	entries := []strategy.StockEntry{first.ToStockEntry(), second.ToStockEntry()}

	tests := []struct {
		quantity string
		total    string
	}{
		{"300", "100"},
		{"303", "110"},
		{"150", "50"},
	}
	for _, tt := range tests {
		t.Run(tt.quantity, func(t *testing.T) {
			result, err := s.CalculateCost(context.Background(), strategy.CostContext{Quantity: d(tt.quantity)}, entries)
			require.NoError(t, err)
			assert.True(t, d(tt.total).Equal(result.TotalCost), "total: got %s", result.TotalCost)
			assert.True(t, result.Shortfall.IsZero())
		})
	}
}
