package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_RecordConsumption(t *testing.T) {
	repo := new(MockBatchRepository)
	costing := newCostingService(t, repo)
	svc := NewLedgerService(NewLedger(repo, nil, nil), costing, nil)
	tenantID, productID, actor := uuid.New(), uuid.New(), uuid.New()

	repo.On("ListForProduct", mock.Anything, tenantID, productID).Return(twoReceipts(t, tenantID, productID), nil)

	var appended *inventory.InventoryBatch
	repo.On("Append", mock.Anything, mock.AnythingOfType("*inventory.InventoryBatch")).
		Run(func(args mock.Arguments) { appended = args.Get(1).(*inventory.InventoryBatch) }).
		Return(nil)

	resp, err := svc.RecordConsumption(context.Background(), tenantID, actor, RecordConsumptionRequest{
		ProductID:    productID,
		Quantity:     decimal.NewFromInt(12),
		SourceNumber: "RX-1",
	})
	require.NoError(t, err)

	require.NotNil(t, appended)
	assert.True(t, decimal.NewFromInt(-12).Equal(appended.Quantity))
	assert.True(t, decimal.NewFromInt(-124).Equal(appended.TotalAmount))
	assert.True(t, decimal.RequireFromString("10.3333").Equal(appended.UnitPrice), "got %s", appended.UnitPrice)
	assert.Equal(t, inventory.SourceTypeConsumption, appended.SourceType)
	assert.NotEqual(t, uuid.Nil, appended.SourceID)
	assert.Equal(t, actor, *appended.CreatedBy)

	assert.Equal(t, "RX-1", resp.Batch.SourceNumber)
	assert.True(t, resp.Cost.Shortfall.IsZero())
}

func TestLedgerService_RecordConsumptionOversell(t *testing.T) {
	repo := new(MockBatchRepository)
	svc := NewLedgerService(NewLedger(repo, nil, nil), newCostingService(t, repo), nil)
	tenantID, productID := uuid.New(), uuid.New()
	sourceID := uuid.New()

	repo.On("ListForProduct", mock.Anything, tenantID, productID).Return([]inventory.InventoryBatch{}, nil)
	repo.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.RecordConsumption(context.Background(), tenantID, uuid.New(), RecordConsumptionRequest{
		ProductID:  productID,
		Quantity:   decimal.NewFromInt(3),
		SourceType: string(inventory.SourceTypeAdjustment),
		SourceID:   &sourceID,
	})
	require.NoError(t, err)

	assert.True(t, resp.Cost.NegativeInventory)
	assert.True(t, decimal.NewFromInt(3).Equal(resp.Cost.Shortfall))
	assert.Equal(t, string(inventory.SourceTypeAdjustment), resp.Batch.SourceType)
	assert.Equal(t, sourceID, resp.Batch.SourceID)
	assert.True(t, resp.Batch.TotalAmount.IsZero())
}

func TestLedgerService_RecordConsumptionRejectsZero(t *testing.T) {
	repo := new(MockBatchRepository)
	svc := NewLedgerService(NewLedger(repo, nil, nil), newCostingService(t, repo), nil)

	_, err := svc.RecordConsumption(context.Background(), uuid.New(), uuid.New(), RecordConsumptionRequest{
		ProductID: uuid.New(),
		Quantity:  decimal.Zero,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
