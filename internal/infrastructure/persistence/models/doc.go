// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: shared columns (BaseModel, AggregateModel, TenantAggregateModel)
//   - purchasing.go: purchase orders and their lines
//   - inventory.go: the append-only inventory batch ledger
//   - catalog.go, partner.go: the product and supplier views purchasing resolves against
//   - finance.go: transaction groups and journal entries
//   - sequence.go: per-day order number counters
package models
