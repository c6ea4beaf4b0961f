package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// LineItemInput is a line item as submitted. Numeric fields are raw
// strings and are parsed once by the validator.
type LineItemInput struct {
	ProductCode     string     `json:"product_code" validate:"required,max=50"`
	ProductName     string     `json:"product_name" validate:"required,max=200"`
	Quantity        string     `json:"quantity" validate:"required,decimal_nonneg"`
	TotalCost       string     `json:"total_cost" validate:"required,decimal_nonneg"`
	UnitPrice       string     `json:"unit_price" validate:"omitempty,decimal_nonneg"`
	BatchNumber     string     `json:"batch_number" validate:"max=50"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	PackageQuantity string     `json:"package_quantity" validate:"omitempty,decimal_nonneg"`
	BoxQuantity     string     `json:"box_quantity" validate:"omitempty,decimal_nonneg"`
}

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	POID            string          `json:"poid" validate:"max=50"`
	OrderNumber     string          `json:"order_number" validate:"max=40"`
	SupplierID      *uuid.UUID      `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name" validate:"max=200"`
	BillReference   string          `json:"bill_reference" validate:"max=100"`
	BillDate        *time.Time      `json:"bill_date"`
	Status          string          `json:"status" validate:"omitempty,po_status"`
	PaymentStatus   string          `json:"payment_status" validate:"omitempty,payment_status"`
	TransactionType string          `json:"transaction_type" validate:"max=50"`
	Remark          string          `json:"remark" validate:"max=2000"`
	Items           []LineItemInput `json:"items" validate:"dive"`
}

// UpdatePurchaseOrderRequest changes an existing order. Nil fields are left
// unchanged; a nil Items keeps the current lines and an empty one clears them.
type UpdatePurchaseOrderRequest struct {
	Version         *int            `json:"version"`
	SupplierID      *uuid.UUID      `json:"supplier_id"`
	SupplierName    *string         `json:"supplier_name" validate:"omitempty,max=200"`
	BillReference   *string         `json:"bill_reference" validate:"omitempty,max=100"`
	BillDate        *time.Time      `json:"bill_date"`
	Status          *string         `json:"status" validate:"omitempty,po_status"`
	PaymentStatus   *string         `json:"payment_status" validate:"omitempty,payment_status"`
	TransactionType *string         `json:"transaction_type" validate:"omitempty,max=50"`
	Remark          *string         `json:"remark" validate:"omitempty,max=2000"`
	Items           []LineItemInput `json:"items" validate:"omitempty,dive"`
}

// RenamePurchaseOrderRequest changes the display code and optionally the
// order number. Renumber with an empty OrderNumber generates a fresh one.
type RenamePurchaseOrderRequest struct {
	Version     *int   `json:"version"`
	POID        string `json:"poid" validate:"max=50"`
	Renumber    bool   `json:"renumber"`
	OrderNumber string `json:"order_number" validate:"max=40"`
}

// PurchaseOrderListFilter represents filter options for listing purchase orders
type PurchaseOrderListFilter struct {
	Search        string
	Status        string
	PaymentStatus string
	SupplierID    *uuid.UUID
	Page          int
	PageSize      int
	OrderBy       string
	OrderDir      string
}

// PurchaseOrderLineResponse represents a line item in API responses
type PurchaseOrderLineResponse struct {
	ID              uuid.UUID        `json:"id"`
	LineNo          int              `json:"line_no"`
	ProductID       *uuid.UUID       `json:"product_id,omitempty"`
	ProductCode     string           `json:"product_code"`
	ProductName     string           `json:"product_name"`
	Quantity        decimal.Decimal  `json:"quantity"`
	TotalCost       decimal.Decimal  `json:"total_cost"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	BatchNumber     string           `json:"batch_number,omitempty"`
	ExpiryDate      *time.Time       `json:"expiry_date,omitempty"`
	PackageQuantity *decimal.Decimal `json:"package_quantity,omitempty"`
	BoxQuantity     *decimal.Decimal `json:"box_quantity,omitempty"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID                 uuid.UUID                   `json:"id"`
	TenantID           uuid.UUID                   `json:"tenant_id"`
	OrderNumber        string                      `json:"order_number"`
	POID               string                      `json:"poid"`
	SupplierID         *uuid.UUID                  `json:"supplier_id,omitempty"`
	SupplierName       string                      `json:"supplier_name"`
	BillReference      string                      `json:"bill_reference,omitempty"`
	BillDate           *time.Time                  `json:"bill_date,omitempty"`
	Status             string                      `json:"status"`
	PaymentStatus      string                      `json:"payment_status"`
	TransactionType    string                      `json:"transaction_type"`
	TotalAmount        decimal.Decimal             `json:"total_amount"`
	TransactionGroupID *string                     `json:"transaction_group_id,omitempty"`
	Remark             string                      `json:"remark,omitempty"`
	Items              []PurchaseOrderLineResponse `json:"items"`
	CompletedAt        *time.Time                  `json:"completed_at,omitempty"`
	CompletedBy        *uuid.UUID                  `json:"completed_by,omitempty"`
	CreatedBy          *uuid.UUID                  `json:"created_by,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
	Version            int                         `json:"version"`
	Warnings           []string                    `json:"warnings,omitempty"`
}

// PurchaseOrderListItemResponse is the summary shown in listings
type PurchaseOrderListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	POID          string          `json:"poid"`
	SupplierName  string          `json:"supplier_name"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemCount     int             `json:"item_count"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to a response
func ToPurchaseOrderResponse(order *trade.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderLineResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = PurchaseOrderLineResponse{
			ID:              item.ID,
			LineNo:          item.LineNo,
			ProductID:       item.ProductID,
			ProductCode:     item.ProductCode,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			TotalCost:       item.TotalCost,
			UnitPrice:       item.UnitPrice,
			BatchNumber:     item.BatchNumber,
			ExpiryDate:      item.ExpiryDate,
			PackageQuantity: item.PackageQuantity,
			BoxQuantity:     item.BoxQuantity,
		}
	}

	return PurchaseOrderResponse{
		ID:                 order.ID,
		TenantID:           order.TenantID,
		OrderNumber:        order.OrderNumber,
		POID:               order.POID,
		SupplierID:         order.SupplierID,
		SupplierName:       order.SupplierName,
		BillReference:      order.BillReference,
		BillDate:           order.BillDate,
		Status:             string(order.Status),
		PaymentStatus:      string(order.PaymentStatus),
		TransactionType:    order.TransactionType,
		TotalAmount:        order.TotalAmount,
		TransactionGroupID: order.TransactionGroupID,
		Remark:             order.Remark,
		Items:              items,
		CompletedAt:        order.CompletedAt,
		CompletedBy:        order.CompletedBy,
		CreatedBy:          order.CreatedBy,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
		Version:            order.Version,
	}
}

// ToPurchaseOrderListItemResponses converts a slice of orders to summaries
func ToPurchaseOrderListItemResponses(orders []trade.PurchaseOrder) []PurchaseOrderListItemResponse {
	out := make([]PurchaseOrderListItemResponse, len(orders))
	for i, o := range orders {
		out[i] = PurchaseOrderListItemResponse{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			POID:          o.POID,
			SupplierName:  o.SupplierName,
			Status:        string(o.Status),
			PaymentStatus: string(o.PaymentStatus),
			TotalAmount:   o.TotalAmount,
			ItemCount:     len(o.Items),
			CreatedAt:     o.CreatedAt,
			UpdatedAt:     o.UpdatedAt,
		}
	}
	return out
}
