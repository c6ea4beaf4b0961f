package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReceipt(t *testing.T, tenantID, productID uuid.UUID, qty, total string) *inventory.InventoryBatch {
	b, err := inventory.NewInventoryBatch(tenantID, productID,
		decimal.RequireFromString(qty), decimal.RequireFromString(total),
		inventory.BatchSource{Type: inventory.SourceTypePurchaseOrder, ID: uuid.New(), Number: "PO-1"})
	require.NoError(t, err)
	return b
}

func TestLedger_AppendBatchUpdatesPrice(t *testing.T) {
	repo := new(MockBatchRepository)
	prices := new(MockPriceUpdater)
	ledger := NewLedger(repo, prices, zap.NewNop())

	batch := newReceipt(t, uuid.New(), uuid.New(), "4", "50")
	repo.On("Append", mock.Anything, batch).Return(nil)
	prices.On("UpdateLastPurchasePrice", mock.Anything, batch.TenantID, batch.ProductID,
		mock.MatchedBy(func(p decimal.Decimal) bool { return p.Equal(decimal.RequireFromString("12.5")) })).Return(nil)

	id, err := ledger.AppendBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, batch.ID, id)
	prices.AssertExpectations(t)
}

func TestLedger_PriceFailureDoesNotFailAppend(t *testing.T) {
	repo := new(MockBatchRepository)
	prices := new(MockPriceUpdater)
	ledger := NewLedger(repo, prices, nil)

	batch := newReceipt(t, uuid.New(), uuid.New(), "1", "1")
	repo.On("Append", mock.Anything, batch).Return(nil)
	prices.On("UpdateLastPurchasePrice", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("catalog down"))

	_, err := ledger.AppendBatch(context.Background(), batch)
	require.NoError(t, err)
}

func TestLedger_OutboundSkipsPrice(t *testing.T) {
	repo := new(MockBatchRepository)
	prices := new(MockPriceUpdater)
	ledger := NewLedger(repo, prices, nil)

	batch, err := inventory.NewInventoryBatch(uuid.New(), uuid.New(), decimal.NewFromInt(-2), decimal.NewFromInt(-20),
		inventory.BatchSource{Type: inventory.SourceTypeConsumption, ID: uuid.New()})
	require.NoError(t, err)
	repo.On("Append", mock.Anything, batch).Return(nil)

	_, err = ledger.AppendBatch(context.Background(), batch)
	require.NoError(t, err)
	prices.AssertNotCalled(t, "UpdateLastPurchasePrice", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLedger_AppendError(t *testing.T) {
	repo := new(MockBatchRepository)
	ledger := NewLedger(repo, nil, nil)

	batch := newReceipt(t, uuid.New(), uuid.New(), "1", "1")
	repo.On("Append", mock.Anything, batch).Return(errors.New("db down"))

	_, err := ledger.AppendBatch(context.Background(), batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append inventory batch")
}

func TestLedger_DeleteBySource(t *testing.T) {
	repo := new(MockBatchRepository)
	ledger := NewLedger(repo, nil, nil)
	tenantID, sourceID := uuid.New(), uuid.New()

	repo.On("DeleteBySource", mock.Anything, tenantID, inventory.SourceTypePurchaseOrder, sourceID).Return(int64(3), nil)

	n, err := ledger.DeleteBySource(context.Background(), tenantID, inventory.SourceTypePurchaseOrder, sourceID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestDeferredPriceUpdates_Flush(t *testing.T) {
	deferred := NewDeferredPriceUpdates()
	tenantID := uuid.New()
	p1, p2 := uuid.New(), uuid.New()

	require.NoError(t, deferred.UpdateLastPurchasePrice(context.Background(), tenantID, p1, decimal.NewFromInt(3)))
	require.NoError(t, deferred.UpdateLastPurchasePrice(context.Background(), tenantID, p2, decimal.NewFromInt(4)))
	assert.Equal(t, 2, deferred.Len())

	target := new(MockPriceUpdater)
	target.On("UpdateLastPurchasePrice", mock.Anything, tenantID, p1, mock.Anything).Return(errors.New("gone"))
	target.On("UpdateLastPurchasePrice", mock.Anything, tenantID, p2, mock.Anything).Return(nil)

	deferred.Flush(context.Background(), target, zap.NewNop())

	target.AssertNumberOfCalls(t, "UpdateLastPurchasePrice", 2)
	assert.Equal(t, 0, deferred.Len())
}
