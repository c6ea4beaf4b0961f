package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInventoryBatch(t *testing.T) {
	source := BatchSource{Type: SourceTypePurchaseOrder, ID: uuid.New(), Number: " PO-1 "}

	batch, err := NewInventoryBatch(uuid.New(), uuid.New(), decimal.NewFromInt(5), decimal.NewFromInt(60), source)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(12).Equal(batch.UnitPrice))
	assert.Equal(t, "PO-1", batch.SourceNumber)
	assert.True(t, batch.IsInbound())
	assert.Zero(t, batch.Sequence)
}

func TestNewInventoryBatch_Consumption(t *testing.T) {
	source := BatchSource{Type: SourceTypeConsumption, ID: uuid.New()}

	batch, err := NewInventoryBatch(uuid.New(), uuid.New(), decimal.NewFromInt(-4), decimal.NewFromInt(-40), source)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(10).Equal(batch.UnitPrice))
	assert.False(t, batch.IsInbound())

	entry := batch.ToStockEntry()
	assert.True(t, entry.Quantity.Equal(decimal.NewFromInt(-4)))
	assert.Equal(t, batch.ID.String(), entry.ID)
}

func TestNewInventoryBatch_ZeroQuantity(t *testing.T) {
	source := BatchSource{Type: SourceTypePurchaseOrder, ID: uuid.New()}

	batch, err := NewInventoryBatch(uuid.New(), uuid.New(), decimal.Zero, decimal.NewFromInt(10), source)
	require.NoError(t, err)
	assert.True(t, batch.UnitPrice.IsZero())
}

func TestNewInventoryBatch_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		productID uuid.UUID
		source    BatchSource
		field     string
	}{
		{"missing product", uuid.Nil, BatchSource{Type: SourceTypePurchaseOrder, ID: uuid.New()}, "product_id"},
		{"missing source", uuid.New(), BatchSource{Type: SourceTypePurchaseOrder}, "source_id"},
		{"unknown source type", uuid.New(), BatchSource{Type: "GIFT", ID: uuid.New()}, "source_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInventoryBatch(uuid.New(), tt.productID, decimal.NewFromInt(1), decimal.NewFromInt(1), tt.source)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, shared.CodeValidation, de.Code)
			assert.Equal(t, tt.field, de.Field)
		})
	}
}
