package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// InventoryBatchModel is one ledger row. Sequence is the storage-assigned
// FIFO key; rows are inserted and deleted, never updated.
type InventoryBatchModel struct {
	Sequence     int64                `gorm:"primaryKey;autoIncrement"`
	ID           uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex"`
	TenantID     uuid.UUID            `gorm:"type:uuid;not null;index:idx_inventory_batches_product,priority:1;index:idx_inventory_batches_source,priority:1"`
	ProductID    uuid.UUID            `gorm:"type:uuid;not null;index:idx_inventory_batches_product,priority:2"`
	Quantity     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	TotalAmount  decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	SourceType   inventory.SourceType `gorm:"type:varchar(30);not null;index:idx_inventory_batches_source,priority:2"`
	SourceID     uuid.UUID            `gorm:"type:uuid;not null;index:idx_inventory_batches_source,priority:3"`
	SourceNumber string               `gorm:"type:varchar(50);not null;default:''"`
	BatchNumber  string               `gorm:"type:varchar(50);not null;default:''"`
	ExpiryDate   *time.Time           `gorm:"type:date"`
	CreatedBy    *uuid.UUID           `gorm:"type:uuid"`
	CreatedAt    time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InventoryBatchModel) TableName() string {
	return "inventory_batches"
}

// ToDomain converts the persistence model to a domain InventoryBatch.
func (m *InventoryBatchModel) ToDomain() *inventory.InventoryBatch {
	return &inventory.InventoryBatch{
		ID:           m.ID,
		Sequence:     m.Sequence,
		TenantID:     m.TenantID,
		ProductID:    m.ProductID,
		Quantity:     m.Quantity,
		TotalAmount:  m.TotalAmount,
		UnitPrice:    m.UnitPrice,
		SourceType:   m.SourceType,
		SourceID:     m.SourceID,
		SourceNumber: m.SourceNumber,
		BatchNumber:  m.BatchNumber,
		ExpiryDate:   m.ExpiryDate,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
	}
}

// InventoryBatchModelFromDomain creates a persistence model from a domain batch.
// Sequence is left for the database to assign.
func InventoryBatchModelFromDomain(b *inventory.InventoryBatch) *InventoryBatchModel {
	return &InventoryBatchModel{
		ID:           b.ID,
		TenantID:     b.TenantID,
		ProductID:    b.ProductID,
		Quantity:     b.Quantity,
		TotalAmount:  b.TotalAmount,
		UnitPrice:    b.UnitPrice,
		SourceType:   b.SourceType,
		SourceID:     b.SourceID,
		SourceNumber: b.SourceNumber,
		BatchNumber:  b.BatchNumber,
		ExpiryDate:   b.ExpiryDate,
		CreatedBy:    b.CreatedBy,
		CreatedAt:    b.CreatedAt,
	}
}
