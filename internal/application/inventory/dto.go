package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// CostPreviewRequest asks what a quantity of a product would cost right now
type CostPreviewRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Method    string          `json:"method"`
}

// CostPreviewResponse is the priced match
type CostPreviewResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	strategy.CostResult
}

// RecordConsumptionRequest records stock leaving inventory
type RecordConsumptionRequest struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	SourceType   string          `json:"source_type" binding:"omitempty,oneof=CONSUMPTION ADJUSTMENT"`
	SourceID     *uuid.UUID      `json:"source_id"`
	SourceNumber string          `json:"source_number" binding:"max=50"`
}

// ConsumptionResponse returns the appended batch and how it was priced
type ConsumptionResponse struct {
	Batch BatchResponse       `json:"batch"`
	Cost  strategy.CostResult `json:"cost"`
}

// BatchResponse represents an inventory batch in API responses
type BatchResponse struct {
	ID           uuid.UUID       `json:"id"`
	Sequence     int64           `json:"sequence"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	SourceType   string          `json:"source_type"`
	SourceID     uuid.UUID       `json:"source_id"`
	SourceNumber string          `json:"source_number"`
	BatchNumber  string          `json:"batch_number,omitempty"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	CreatedBy    *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToBatchResponse converts a domain batch to a response
func ToBatchResponse(b *inventory.InventoryBatch) BatchResponse {
	return BatchResponse{
		ID:           b.ID,
		Sequence:     b.Sequence,
		ProductID:    b.ProductID,
		Quantity:     b.Quantity,
		TotalAmount:  b.TotalAmount,
		UnitPrice:    b.UnitPrice,
		SourceType:   b.SourceType.String(),
		SourceID:     b.SourceID,
		SourceNumber: b.SourceNumber,
		BatchNumber:  b.BatchNumber,
		ExpiryDate:   b.ExpiryDate,
		CreatedBy:    b.CreatedBy,
		CreatedAt:    b.CreatedAt,
	}
}

// ToBatchResponses converts a slice of domain batches
func ToBatchResponses(batches []inventory.InventoryBatch) []BatchResponse {
	out := make([]BatchResponse, len(batches))
	for i := range batches {
		out[i] = ToBatchResponse(&batches[i])
	}
	return out
}
