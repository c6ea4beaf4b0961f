package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewPurchasingMetrics(t *testing.T) {
	pm, err := telemetry.NewPurchasingMetrics(telemetry.PurchasingMetricsConfig{
		Meter:  noop.NewMeterProvider().Meter("test"),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	require.NotNil(t, pm)
}

func TestNewPurchasingMetrics_NilMeter(t *testing.T) {
	pm, err := telemetry.NewPurchasingMetrics(telemetry.PurchasingMetricsConfig{})
	require.Error(t, err)
	assert.Nil(t, pm)
	assert.Equal(t, "NewPurchasingMetrics: meter cannot be nil", err.Error())
}

func TestPurchasingMetrics_Record(t *testing.T) {
	pm, err := telemetry.NewPurchasingMetrics(telemetry.PurchasingMetricsConfig{
		Meter: noop.NewMeterProvider().Meter("test"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()

	assert.NotPanics(t, func() {
		pm.RecordOrderCreated(ctx, tenantID)
		pm.RecordOrderCompleted(ctx, tenantID, decimal.RequireFromString("199.99"))
		pm.RecordOrderUnlocked(ctx, tenantID)
		pm.RecordOrderDeleted(ctx, tenantID)
		pm.RecordBatchesAppended(ctx, tenantID, 3)
		pm.RecordBatchesRemoved(ctx, tenantID, 3)
		pm.RecordCostMatch(ctx, tenantID, "fifo", true)
		pm.RecordAllocatorCollision(ctx, "PO")
		pm.RecordAllocatorExhausted(ctx, "PO")
		pm.RecordEffectFailure(ctx, "accounting")
		pm.RecordNegativeStockCount(ctx, tenantID, 2)
	})
}

func TestPurchasingMetrics_NilReceiver(t *testing.T) {
	var pm *telemetry.PurchasingMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		pm.RecordOrderCreated(ctx, uuid.New())
		pm.RecordOrderCompleted(ctx, uuid.New(), decimal.NewFromInt(1))
		pm.RecordCostMatch(ctx, uuid.New(), "fifo", false)
		pm.RecordAllocatorExhausted(ctx, "PO")
		pm.StartPeriodicCollection(ctx, nil, time.Second)
		pm.Stop()
	})
}

type stubStockProvider struct {
	calls chan uuid.UUID
	err   error
}

func (s *stubStockProvider) GetNegativeStockCount(_ context.Context, tenantID uuid.UUID) (int64, error) {
	s.calls <- tenantID
	return 1, s.err
}

type stubTenantProvider struct {
	ids []uuid.UUID
}

func (s *stubTenantProvider) GetActiveTenantIDs(context.Context) ([]uuid.UUID, error) {
	return s.ids, nil
}

func TestPurchasingMetrics_PeriodicCollection(t *testing.T) {
	stock := &stubStockProvider{calls: make(chan uuid.UUID, 10), err: errors.New("ignored after first")}
	pm, err := telemetry.NewPurchasingMetrics(telemetry.PurchasingMetricsConfig{
		Meter:         noop.NewMeterProvider().Meter("test"),
		StockProvider: stock,
	})
	require.NoError(t, err)

	tenantID := uuid.New()
	pm.StartPeriodicCollection(context.Background(), &stubTenantProvider{ids: []uuid.UUID{tenantID}}, time.Hour)
	defer pm.Stop()

	select {
	case got := <-stock.calls:
		assert.Equal(t, tenantID, got)
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not run")
	}

	pm.Stop()
	pm.Stop()
}
