package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/catalog"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the catalog product view.
type ProductModel struct {
	AggregateModel
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_products_tenant_code,priority:1"`
	CreatedBy         *uuid.UUID      `gorm:"type:uuid"`
	Code              string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_products_tenant_code,priority:2"`
	Name              string          `gorm:"type:varchar(200);not null"`
	LastPurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastPurchasedAt   *time.Time
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: m.BaseModel.ToDomain(),
				Version:    m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Code:              m.Code,
		Name:              m.Name,
		LastPurchasePrice: m.LastPurchasePrice,
		LastPurchasedAt:   m.LastPurchasedAt,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		TenantID:          p.TenantID,
		CreatedBy:         p.CreatedBy,
		Code:              p.Code,
		Name:              p.Name,
		LastPurchasePrice: p.LastPurchasePrice,
		LastPurchasedAt:   p.LastPurchasedAt,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
