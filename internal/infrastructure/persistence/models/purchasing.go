package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
// Order numbers are unique across tenants; poids are unique per tenant.
type PurchaseOrderModel struct {
	AggregateModel
	TenantID           uuid.UUID                 `gorm:"type:uuid;not null;index;uniqueIndex:idx_purchase_orders_tenant_poid,priority:1"`
	CreatedBy          *uuid.UUID                `gorm:"type:uuid"`
	OrderNumber        string                    `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_orders_order_number"`
	POID               string                    `gorm:"column:poid;type:varchar(50);not null;uniqueIndex:idx_purchase_orders_tenant_poid,priority:2"`
	SupplierID         *uuid.UUID                `gorm:"type:uuid;index"`
	SupplierName       string                    `gorm:"type:varchar(200);not null;default:''"`
	BillReference      string                    `gorm:"type:varchar(100);not null;default:''"`
	BillDate           *time.Time                `gorm:"type:date"`
	Status             trade.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus      trade.PaymentStatus       `gorm:"type:varchar(20);not null;default:'unpaid'"`
	TransactionType    string                    `gorm:"type:varchar(50);not null;default:'purchase'"`
	TotalAmount        decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	TransactionGroupID *string                   `gorm:"type:varchar(64)"`
	Remark             string                    `gorm:"type:text"`
	CompletedAt        *time.Time
	CompletedBy        *uuid.UUID                `gorm:"type:uuid"`
	Items              []PurchaseOrderLineModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	order := &trade.PurchaseOrder{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		OrderNumber:        m.OrderNumber,
		POID:               m.POID,
		SupplierID:         m.SupplierID,
		SupplierName:       m.SupplierName,
		BillReference:      m.BillReference,
		BillDate:           m.BillDate,
		Status:             m.Status,
		PaymentStatus:      m.PaymentStatus,
		TransactionType:    m.TransactionType,
		TotalAmount:        m.TotalAmount,
		TransactionGroupID: m.TransactionGroupID,
		Remark:             m.Remark,
		CompletedAt:        m.CompletedAt,
		CompletedBy:        m.CompletedBy,
		Items:              make([]trade.PurchaseOrderLine, len(m.Items)),
	}
	for i := range m.Items {
		order.Items[i] = *m.Items[i].ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain PurchaseOrder entity.
// Lines are mapped separately.
func (m *PurchaseOrderModel) FromDomain(o *trade.PurchaseOrder) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.TenantID = o.TenantID
	m.CreatedBy = o.CreatedBy
	m.OrderNumber = o.OrderNumber
	m.POID = o.POID
	m.SupplierID = o.SupplierID
	m.SupplierName = o.SupplierName
	m.BillReference = o.BillReference
	m.BillDate = o.BillDate
	m.Status = o.Status
	m.PaymentStatus = o.PaymentStatus
	m.TransactionType = o.TransactionType
	m.TotalAmount = o.TotalAmount
	m.TransactionGroupID = o.TransactionGroupID
	m.Remark = o.Remark
	m.CompletedAt = o.CompletedAt
	m.CompletedBy = o.CompletedBy
}

// PurchaseOrderModelFromDomain creates a persistence model from a domain PurchaseOrder.
func PurchaseOrderModelFromDomain(o *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// PurchaseOrderLineModel is the persistence model for a purchase order line.
type PurchaseOrderLineModel struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key"`
	OrderID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	LineNo          int              `gorm:"not null"`
	ProductID       *uuid.UUID       `gorm:"type:uuid;index"`
	ProductCode     string           `gorm:"type:varchar(50);not null"`
	ProductName     string           `gorm:"type:varchar(200);not null"`
	Quantity        decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	TotalCost       decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	BatchNumber     string           `gorm:"type:varchar(50);not null;default:''"`
	ExpiryDate      *time.Time       `gorm:"type:date"`
	PackageQuantity *decimal.Decimal `gorm:"type:decimal(18,4)"`
	BoxQuantity     *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLineModel) TableName() string {
	return "purchase_order_lines"
}

// ToDomain converts the persistence model to a domain PurchaseOrderLine.
func (m *PurchaseOrderLineModel) ToDomain() *trade.PurchaseOrderLine {
	return &trade.PurchaseOrderLine{
		ID:              m.ID,
		OrderID:         m.OrderID,
		LineNo:          m.LineNo,
		ProductID:       m.ProductID,
		ProductCode:     m.ProductCode,
		ProductName:     m.ProductName,
		Quantity:        m.Quantity,
		TotalCost:       m.TotalCost,
		UnitPrice:       m.UnitPrice,
		BatchNumber:     m.BatchNumber,
		ExpiryDate:      m.ExpiryDate,
		PackageQuantity: m.PackageQuantity,
		BoxQuantity:     m.BoxQuantity,
	}
}

// PurchaseOrderLineModelFromDomain creates a persistence model from a domain line.
func PurchaseOrderLineModelFromDomain(l *trade.PurchaseOrderLine) *PurchaseOrderLineModel {
	return &PurchaseOrderLineModel{
		ID:              l.ID,
		OrderID:         l.OrderID,
		LineNo:          l.LineNo,
		ProductID:       l.ProductID,
		ProductCode:     l.ProductCode,
		ProductName:     l.ProductName,
		Quantity:        l.Quantity,
		TotalCost:       l.TotalCost,
		UnitPrice:       l.UnitPrice,
		BatchNumber:     l.BatchNumber,
		ExpiryDate:      l.ExpiryDate,
		PackageQuantity: l.PackageQuantity,
		BoxQuantity:     l.BoxQuantity,
	}
}
