package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// SourceType identifies the kind of document a batch belongs to
type SourceType string

const (
	SourceTypePurchaseOrder SourceType = "PURCHASE_ORDER"
	SourceTypeConsumption   SourceType = "CONSUMPTION"
	SourceTypeAdjustment    SourceType = "ADJUSTMENT"
)

// IsValid returns true if the source type is known
func (t SourceType) IsValid() bool {
	switch t {
	case SourceTypePurchaseOrder, SourceTypeConsumption, SourceTypeAdjustment:
		return true
	}
	return false
}

// String returns the string representation of SourceType
func (t SourceType) String() string {
	return string(t)
}

// BatchSource attributes a batch to exactly one source document
type BatchSource struct {
	Type   SourceType
	ID     uuid.UUID
	Number string
}

// InventoryBatch is an append-only ledger row. Quantity is signed: positive
// for incoming stock, negative for consumption. Sequence is assigned by
// storage on insert and is the FIFO ordering key.
type InventoryBatch struct {
	ID           uuid.UUID
	Sequence     int64
	TenantID     uuid.UUID
	ProductID    uuid.UUID
	Quantity     decimal.Decimal
	TotalAmount  decimal.Decimal
	UnitPrice    decimal.Decimal
	SourceType   SourceType
	SourceID     uuid.UUID
	SourceNumber string
	BatchNumber  string
	ExpiryDate   *time.Time
	CreatedBy    *uuid.UUID
	CreatedAt    time.Time
}

// NewInventoryBatch creates a ledger row. The unit price is always derived
// from the amounts so FIFO matching never sees an unknown price.
func NewInventoryBatch(tenantID, productID uuid.UUID, quantity, totalAmount decimal.Decimal, source BatchSource) (*InventoryBatch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product_id", "product is required")
	}
	if source.ID == uuid.Nil {
		return nil, shared.NewValidationError("source_id", "source document is required")
	}
	if !source.Type.IsValid() {
		return nil, shared.NewValidationError("source_type", "unknown source type")
	}

	unitPrice := decimal.Zero
	if !quantity.IsZero() {
		unitPrice = totalAmount.Div(quantity).Abs().Round(strategy.UnitPricePrecision)
	}

	return &InventoryBatch{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ProductID:    productID,
		Quantity:     quantity,
		TotalAmount:  totalAmount,
		UnitPrice:    unitPrice,
		SourceType:   source.Type,
		SourceID:     source.ID,
		SourceNumber: strings.TrimSpace(source.Number),
		CreatedAt:    time.Now(),
	}, nil
}

// WithBatchNumber sets the supplier lot number and expiry
func (b *InventoryBatch) WithBatchNumber(number string, expiry *time.Time) *InventoryBatch {
	b.BatchNumber = strings.TrimSpace(number)
	b.ExpiryDate = expiry
	return b
}

// WithUnitPrice overrides the derived unit price
func (b *InventoryBatch) WithUnitPrice(price decimal.Decimal) *InventoryBatch {
	b.UnitPrice = price.Abs()
	return b
}

// WithCreator records the acting user
func (b *InventoryBatch) WithCreator(userID uuid.UUID) *InventoryBatch {
	if userID != uuid.Nil {
		b.CreatedBy = &userID
	}
	return b
}

// IsInbound reports whether the batch adds stock
func (b *InventoryBatch) IsInbound() bool {
	return b.Quantity.IsPositive()
}

// ToStockEntry converts the batch into the form cost strategies consume
func (b *InventoryBatch) ToStockEntry() strategy.StockEntry {
	return strategy.StockEntry{
		ID:           b.ID.String(),
		Sequence:     b.Sequence,
		SourceNumber: b.SourceNumber,
		BatchNumber:  b.BatchNumber,
		Quantity:     b.Quantity,
		UnitCost:     b.UnitPrice,
		TotalCost:    b.TotalAmount,
		EntryDate:    b.CreatedAt,
	}
}
