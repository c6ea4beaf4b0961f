package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/finance"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionGroupModel is the persistence model for a posted accounting group.
type TransactionGroupModel struct {
	AggregateModel
	TenantID     uuid.UUID                      `gorm:"type:uuid;not null;index:idx_transaction_groups_source,priority:1"`
	CreatedBy    *uuid.UUID                     `gorm:"type:uuid"`
	Reference    string                         `gorm:"type:varchar(50);not null"`
	SourceType   string                         `gorm:"type:varchar(30);not null;index:idx_transaction_groups_source,priority:2"`
	SourceID     uuid.UUID                      `gorm:"type:uuid;not null;index:idx_transaction_groups_source,priority:3"`
	SourceNumber string                         `gorm:"type:varchar(50);not null;default:''"`
	Amount       decimal.Decimal                `gorm:"type:decimal(18,4);not null"`
	Status       finance.TransactionGroupStatus `gorm:"type:varchar(20);not null"`
	PostedBy     uuid.UUID                      `gorm:"type:uuid;not null"`
	PostedAt     time.Time                      `gorm:"not null"`
	VoidedAt     *time.Time
	Entries      []JournalEntryModel `gorm:"foreignKey:GroupID;references:ID"`
}

// TableName returns the table name for GORM
func (TransactionGroupModel) TableName() string {
	return "transaction_groups"
}

// ToDomain converts the persistence model to a domain TransactionGroup.
func (m *TransactionGroupModel) ToDomain() *finance.TransactionGroup {
	g := &finance.TransactionGroup{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: m.BaseModel.ToDomain(),
				Version:    m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		Reference:    m.Reference,
		SourceType:   m.SourceType,
		SourceID:     m.SourceID,
		SourceNumber: m.SourceNumber,
		Amount:       m.Amount,
		Status:       m.Status,
		PostedBy:     m.PostedBy,
		PostedAt:     m.PostedAt,
		VoidedAt:     m.VoidedAt,
		Entries:      make([]finance.JournalEntry, len(m.Entries)),
	}
	for i, e := range m.Entries {
		g.Entries[i] = finance.JournalEntry{
			ID:      e.ID,
			GroupID: e.GroupID,
			LineNo:  e.LineNo,
			Account: e.Account,
			Debit:   e.Debit,
			Credit:  e.Credit,
			Memo:    e.Memo,
		}
	}
	return g
}

// TransactionGroupModelFromDomain creates a persistence model, entries included.
func TransactionGroupModelFromDomain(g *finance.TransactionGroup) *TransactionGroupModel {
	m := &TransactionGroupModel{
		TenantID:     g.TenantID,
		CreatedBy:    g.CreatedBy,
		Reference:    g.Reference,
		SourceType:   g.SourceType,
		SourceID:     g.SourceID,
		SourceNumber: g.SourceNumber,
		Amount:       g.Amount,
		Status:       g.Status,
		PostedBy:     g.PostedBy,
		PostedAt:     g.PostedAt,
		VoidedAt:     g.VoidedAt,
		Entries:      make([]JournalEntryModel, len(g.Entries)),
	}
	m.FromDomainAggregateRoot(g.BaseAggregateRoot)
	for i, e := range g.Entries {
		m.Entries[i] = JournalEntryModel{
			ID:      e.ID,
			GroupID: g.ID,
			LineNo:  e.LineNo,
			Account: e.Account,
			Debit:   e.Debit,
			Credit:  e.Credit,
			Memo:    e.Memo,
		}
	}
	return m
}

// JournalEntryModel is one debit or credit line of a transaction group.
type JournalEntryModel struct {
	ID      uuid.UUID       `gorm:"type:uuid;primary_key"`
	GroupID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo  int             `gorm:"not null"`
	Account string          `gorm:"type:varchar(20);not null"`
	Debit   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Credit  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Memo    string          `gorm:"type:varchar(500);not null;default:''"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}
