package models

import (
	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/partner"
	"github.com/pharmapos/backend/internal/domain/shared"
)

// SupplierModel is the persistence model for suppliers.
type SupplierModel struct {
	AggregateModel
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_suppliers_tenant_name,priority:1"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	Code      string     `gorm:"type:varchar(50);not null;default:''"`
	Name      string     `gorm:"type:varchar(200);not null;index:idx_suppliers_tenant_name,priority:2"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: m.BaseModel.ToDomain(),
				Version:    m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Code: m.Code,
		Name: m.Name,
	}
}

// SupplierModelFromDomain creates a persistence model from a domain Supplier.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{
		TenantID:  s.TenantID,
		CreatedBy: s.CreatedBy,
		Code:      s.Code,
		Name:      s.Name,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}
