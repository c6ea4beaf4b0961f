package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Chart-of-accounts codes used by purchase postings
const (
	AccountInventory       = "1300"
	AccountAccountsPayable = "2100"
)

// TransactionGroupStatus represents the status of a posted group
type TransactionGroupStatus string

const (
	TransactionGroupStatusPosted TransactionGroupStatus = "posted"
	TransactionGroupStatusVoided TransactionGroupStatus = "voided"
)

// JournalEntry is one debit or credit line of a transaction group
type JournalEntry struct {
	ID      uuid.UUID
	GroupID uuid.UUID
	LineNo  int
	Account string
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Memo    string
}

// TransactionGroup is a balanced set of journal entries posted for one
// source document
type TransactionGroup struct {
	shared.TenantAggregateRoot
	Reference    string
	SourceType   string
	SourceID     uuid.UUID
	SourceNumber string
	Amount       decimal.Decimal
	Status       TransactionGroupStatus
	PostedBy     uuid.UUID
	PostedAt     time.Time
	VoidedAt     *time.Time
	Entries      []JournalEntry
}

// NewTransactionGroup creates a posted group. Entries are added afterwards.
func NewTransactionGroup(tenantID uuid.UUID, sourceType string, sourceID uuid.UUID, sourceNumber string, postedBy uuid.UUID) (*TransactionGroup, error) {
	if sourceID == uuid.Nil {
		return nil, shared.NewValidationError("source_id", "source document is required")
	}
	now := time.Now()
	g := &TransactionGroup{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SourceType:          sourceType,
		SourceID:            sourceID,
		SourceNumber:        strings.TrimSpace(sourceNumber),
		Amount:              decimal.Zero,
		Status:              TransactionGroupStatusPosted,
		PostedBy:            postedBy,
		PostedAt:            now,
		Entries:             make([]JournalEntry, 0, 2),
	}
	g.Reference = fmt.Sprintf("TG-%s-%s", now.Format("20060102"), strings.ToUpper(g.ID.String()[:8]))
	if postedBy != uuid.Nil {
		g.SetCreatedBy(postedBy)
	}
	return g, nil
}

// AddEntry appends a journal line; exactly one of debit and credit must be set.
func (g *TransactionGroup) AddEntry(account string, debit, credit decimal.Decimal, memo string) error {
	if account == "" {
		return shared.NewValidationError("account", "account is required")
	}
	if debit.IsNegative() || credit.IsNegative() || debit.IsPositive() == credit.IsPositive() {
		return shared.NewValidationError("amount", "entry must carry exactly one positive side")
	}
	g.Entries = append(g.Entries, JournalEntry{
		ID:      uuid.New(),
		GroupID: g.ID,
		LineNo:  len(g.Entries) + 1,
		Account: account,
		Debit:   debit,
		Credit:  credit,
		Memo:    memo,
	})
	g.Amount = g.Amount.Add(debit)
	return nil
}

// IsBalanced reports whether debits equal credits
func (g *TransactionGroup) IsBalanced() bool {
	debit, credit := decimal.Zero, decimal.Zero
	for _, e := range g.Entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit.Equal(credit)
}

// Void marks the group reversed. Voiding twice is a no-op.
func (g *TransactionGroup) Void() {
	if g.Status == TransactionGroupStatusVoided {
		return
	}
	now := time.Now()
	g.Status = TransactionGroupStatusVoided
	g.VoidedAt = &now
	g.Touch(now)
}
