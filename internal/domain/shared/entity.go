package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is anything with an identity and audit timestamps. Tenant scoping
// lives one level up, on TenantAggregateRoot.
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity holds the identity and timestamps shared by orders, lines,
// batches, ledger groups and master data.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *BaseEntity) GetID() uuid.UUID { return e.ID }

func (e *BaseEntity) GetCreatedAt() time.Time { return e.CreatedAt }

func (e *BaseEntity) GetUpdatedAt() time.Time { return e.UpdatedAt }

// Touch records a mutation at the given instant. CreatedAt never moves.
func (e *BaseEntity) Touch(at time.Time) {
	if at.Before(e.CreatedAt) {
		at = e.CreatedAt
	}
	e.UpdatedAt = at
}

// NewBaseEntity returns an entity with a fresh random id, created and
// updated now.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}
