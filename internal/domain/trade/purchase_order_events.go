package trade

import (
	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated   = "PurchaseOrderCreated"
	EventTypePurchaseOrderCompleted = "PurchaseOrderCompleted"
	EventTypePurchaseOrderUnlocked  = "PurchaseOrderUnlocked"
	EventTypePurchaseOrderDeleted   = "PurchaseOrderDeleted"
)

// PurchaseOrderCreatedEvent is raised when a new purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	POID        string    `json:"poid"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		POID:            order.POID,
	}
}

// PurchaseOrderLineInfo represents line information for events
type PurchaseOrderLineInfo struct {
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// PurchaseOrderCompletedEvent is raised when an order enters completed
type PurchaseOrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID               `json:"order_id"`
	OrderNumber string                  `json:"order_number"`
	CompletedBy uuid.UUID               `json:"completed_by"`
	TotalAmount decimal.Decimal         `json:"total_amount"`
	Lines       []PurchaseOrderLineInfo `json:"lines"`
}

// NewPurchaseOrderCompletedEvent creates a new PurchaseOrderCompletedEvent
func NewPurchaseOrderCompletedEvent(order *PurchaseOrder, actor uuid.UUID) *PurchaseOrderCompletedEvent {
	lines := make([]PurchaseOrderLineInfo, len(order.Items))
	for i, item := range order.Items {
		lines[i] = PurchaseOrderLineInfo{
			ProductID:   item.ProductID,
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
			TotalCost:   item.TotalCost,
		}
	}
	return &PurchaseOrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCompleted, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		CompletedBy:     actor,
		TotalAmount:     order.TotalAmount,
		Lines:           lines,
	}
}

// PurchaseOrderUnlockedEvent is raised when an order leaves completed
type PurchaseOrderUnlockedEvent struct {
	shared.BaseDomainEvent
	OrderID            uuid.UUID           `json:"order_id"`
	OrderNumber        string              `json:"order_number"`
	NewStatus          PurchaseOrderStatus `json:"new_status"`
	TransactionGroupID *string             `json:"transaction_group_id,omitempty"`
}

// NewPurchaseOrderUnlockedEvent creates a new PurchaseOrderUnlockedEvent
func NewPurchaseOrderUnlockedEvent(order *PurchaseOrder, previousGroup *string) *PurchaseOrderUnlockedEvent {
	return &PurchaseOrderUnlockedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypePurchaseOrderUnlocked, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:            order.ID,
		OrderNumber:        order.OrderNumber,
		NewStatus:          order.Status,
		TransactionGroupID: previousGroup,
	}
}

// PurchaseOrderDeletedEvent is raised when a non-completed order is deleted
type PurchaseOrderDeletedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// NewPurchaseOrderDeletedEvent creates a new PurchaseOrderDeletedEvent
func NewPurchaseOrderDeletedEvent(order *PurchaseOrder) *PurchaseOrderDeletedEvent {
	return &PurchaseOrderDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderDeleted, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
	}
}
