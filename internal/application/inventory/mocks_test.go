package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockBatchRepository is a mock implementation of InventoryBatchRepository
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) Append(ctx context.Context, batch *inventory.InventoryBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) DeleteBySource(ctx context.Context, tenantID uuid.UUID, sourceType inventory.SourceType, sourceID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, sourceType, sourceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBatchRepository) ListForProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]inventory.InventoryBatch, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryBatch), args.Error(1)
}

func (m *MockBatchRepository) ListBySource(ctx context.Context, tenantID uuid.UUID, sourceType inventory.SourceType, sourceID uuid.UUID) ([]inventory.InventoryBatch, error) {
	args := m.Called(ctx, tenantID, sourceType, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryBatch), args.Error(1)
}

// MockPriceUpdater is a mock implementation of PriceUpdater
type MockPriceUpdater struct {
	mock.Mock
}

func (m *MockPriceUpdater) UpdateLastPurchasePrice(ctx context.Context, tenantID, productID uuid.UUID, price decimal.Decimal) error {
	args := m.Called(ctx, tenantID, productID, price)
	return args.Error(0)
}
