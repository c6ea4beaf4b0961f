package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEntity(t *testing.T) {
	e := NewBaseEntity()

	assert.NotEqual(t, uuid.Nil, e.GetID())
	assert.Equal(t, e.GetCreatedAt(), e.GetUpdatedAt())
}

func TestBaseEntity_Touch(t *testing.T) {
	e := NewBaseEntity()
	created := e.CreatedAt

	later := created.Add(time.Minute)
	e.Touch(later)
	assert.Equal(t, later, e.GetUpdatedAt())
	assert.Equal(t, created, e.GetCreatedAt())

	e.Touch(created.Add(-time.Hour))
	assert.Equal(t, created, e.GetUpdatedAt(), "updated never precedes created")
}

func TestTenantAggregateRoot_CarriesTenant(t *testing.T) {
	tenant := uuid.New()
	root := NewTenantAggregateRoot(tenant)

	assert.Equal(t, tenant, root.TenantID)
	assert.Equal(t, 1, root.GetVersion())
	assert.Nil(t, root.CreatedBy)
}
