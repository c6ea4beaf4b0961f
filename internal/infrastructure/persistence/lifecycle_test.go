package persistence

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	financeapp "github.com/pharmapos/backend/internal/application/finance"
	apptrade "github.com/pharmapos/backend/internal/application/trade"
	"github.com/pharmapos/backend/internal/domain/catalog"
	"github.com/pharmapos/backend/internal/domain/finance"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/partner"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// purchasingStack is the purchase order service wired to GORM repositories
// the same way the server wires it.
type purchasingStack struct {
	service   *apptrade.PurchaseOrderService
	orders    *GormPurchaseOrderRepository
	batches   *GormInventoryBatchRepository
	products  *GormProductRepository
	suppliers *GormSupplierRepository
	groups    *GormTransactionGroupRepository
}

func newPurchasingStack(db *gorm.DB) *purchasingStack {
	st := &purchasingStack{
		orders:    NewGormPurchaseOrderRepository(db),
		batches:   NewGormInventoryBatchRepository(db),
		products:  NewGormProductRepository(db),
		suppliers: NewGormSupplierRepository(db),
		groups:    NewGormTransactionGroupRepository(db),
	}

	allocator := apptrade.NewOrderNumberAllocator(NewGormSequenceCounter(db), 20, zap.NewNop())
	allocator.RegisterKind("PO", "PO", st.orders.ExistsByOrderNumber)

	st.service = apptrade.NewPurchaseOrderService(
		st.orders,
		NewGormPurchaseTransactionScope(db),
		allocator,
		apptrade.NewPurchaseOrderValidator(st.products, st.suppliers),
		zap.NewNop(),
	)
	st.service.SetPriceUpdater(st.products)
	st.service.AddEffect(apptrade.NewInventoryEffect(zap.NewNop()))
	st.service.AddEffect(apptrade.NewAccountingEffect(financeapp.NewPurchaseAccountingService(st.groups, zap.NewNop())))
	return st
}

// exercisePurchaseLifecycle drives one order through create-completed,
// unlock and delete, checking the ledger, pricing and posting side effects
// against the database after each step.
func exercisePurchaseLifecycle(t *testing.T, db *gorm.DB) {
	t.Helper()
	st := newPurchasingStack(db)
	ctx := context.Background()
	tenantID := uuid.New()
	actorID := uuid.New()

	product, err := catalog.NewProduct(tenantID, "AMOX500", "Amoxicillin 500mg")
	require.NoError(t, err)
	require.NoError(t, st.products.Save(ctx, product))
	supplier, err := partner.NewSupplier(tenantID, "SUP-1", "Pharma Distrib")
	require.NoError(t, err)
	require.NoError(t, st.suppliers.Save(ctx, supplier))

	created, err := st.service.Create(ctx, tenantID, actorID, apptrade.CreatePurchaseOrderRequest{
		SupplierName: "  Pharma Distrib ",
		Status:       "completed",
		Items: []apptrade.LineItemInput{
			{ProductCode: "AMOX500", ProductName: "Amoxicillin 500mg", Quantity: "10", TotalCost: "125"},
			{ProductCode: "UNLISTED", ProductName: "Loose item", Quantity: "1", TotalCost: "5"},
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.OrderNumber, "PO-"), created.OrderNumber)
	assert.Equal(t, created.OrderNumber, created.POID)
	assert.Equal(t, "completed", created.Status)
	assert.NotEmpty(t, created.Warnings, "unlisted product should be reported")
	require.NotNil(t, created.SupplierID)
	assert.Equal(t, supplier.ID, *created.SupplierID)

	// one batch per resolved line
	batches, err := st.batches.ListBySource(ctx, tenantID, inventory.SourceTypePurchaseOrder, created.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, product.ID, batches[0].ProductID)
	assert.True(t, decimal.RequireFromString("12.5").Equal(batches[0].UnitPrice))
	assert.Equal(t, created.OrderNumber, batches[0].SourceNumber)

	priced, err := st.products.FindByIDForTenant(ctx, tenantID, product.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(priced.LastPurchasePrice))
	assert.NotNil(t, priced.LastPurchasedAt)

	group, err := st.groups.FindActiveBySource(ctx, tenantID, financeapp.SourceTypePurchaseOrder, created.ID)
	require.NoError(t, err)
	assert.True(t, group.IsBalanced())
	assert.True(t, decimal.NewFromInt(130).Equal(group.Amount))
	assert.Equal(t, finance.TransactionGroupStatusPosted, group.Status)

	stored, err := st.service.GetByID(ctx, tenantID, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TransactionGroupID)
	assert.Equal(t, group.ID.String(), *stored.TransactionGroupID)

	byNumber, err := st.service.GetByOrderNumber(ctx, tenantID, created.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byNumber.ID)

	// a stale version is rejected and changes nothing
	stale := stored.Version - 1
	pending := "pending"
	_, err = st.service.Update(ctx, tenantID, actorID, created.ID, apptrade.UpdatePurchaseOrderRequest{
		Version: &stale,
		Status:  &pending,
	})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	unlocked, err := st.service.Update(ctx, tenantID, actorID, created.ID, apptrade.UpdatePurchaseOrderRequest{
		Version: &stored.Version,
		Status:  &pending,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", unlocked.Status)
	assert.Greater(t, unlocked.Version, stored.Version)

	batches, err = st.batches.ListBySource(ctx, tenantID, inventory.SourceTypePurchaseOrder, created.ID)
	require.NoError(t, err)
	assert.Empty(t, batches)

	_, err = st.groups.FindActiveBySource(ctx, tenantID, financeapp.SourceTypePurchaseOrder, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	items, total, err := st.service.List(ctx, tenantID, apptrade.PurchaseOrderListFilter{Search: "distrib"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].ItemCount)

	require.NoError(t, st.service.Delete(ctx, tenantID, created.ID))
	_, err = st.service.GetByID(ctx, tenantID, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPurchaseLifecycle_SQLite(t *testing.T) {
	exercisePurchaseLifecycle(t, newTestDB(t))
}

func createRequestFor(supplierName string) apptrade.CreatePurchaseOrderRequest {
	return apptrade.CreatePurchaseOrderRequest{
		SupplierName: supplierName,
		Items: []apptrade.LineItemInput{
			{ProductCode: "GEN-1", ProductName: "Generic", Quantity: "3", TotalCost: "9"},
		},
	}
}

func updateRemark(version *int, remark *string) apptrade.UpdatePurchaseOrderRequest {
	return apptrade.UpdatePurchaseOrderRequest{Version: version, Remark: remark}
}

func TestSequentialCreates_SQLite(t *testing.T) {
	st := newPurchasingStack(newTestDB(t))
	ctx := context.Background()
	tenantID := uuid.New()

	first, err := st.service.Create(ctx, tenantID, uuid.New(), createRequestFor(""))
	require.NoError(t, err)
	second, err := st.service.Create(ctx, tenantID, uuid.New(), createRequestFor(""))
	require.NoError(t, err)
	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)
	assert.True(t, strings.HasSuffix(first.OrderNumber, "-0001"), first.OrderNumber)
	assert.True(t, strings.HasSuffix(second.OrderNumber, "-0002"), second.OrderNumber)

	// a requested number that is taken gets the first free suffix
	req := createRequestFor("")
	req.OrderNumber = first.OrderNumber
	third, err := st.service.Create(ctx, tenantID, uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, first.OrderNumber+"-1", third.OrderNumber)

	version := third.Version
	remark := "checked"
	updated, err := st.service.Update(ctx, tenantID, uuid.New(), third.ID, updateRemark(&version, &remark))
	require.NoError(t, err)
	assert.Equal(t, "checked", updated.Remark)
	assert.Equal(t, version+1, updated.Version)
}

// completingOrderRepo completes the order right after the first load, so the
// caller works on a copy that was pending when read.
type completingOrderRepo struct {
	*GormPurchaseOrderRepository
	complete func(id uuid.UUID)
	done     bool
}

func (r *completingOrderRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	order, err := r.GormPurchaseOrderRepository.FindByIDForTenant(ctx, tenantID, id)
	if err == nil && !r.done {
		r.done = true
		r.complete(id)
	}
	return order, err
}

func TestDeleteRacingCompletion_SQLite(t *testing.T) {
	db := newTestDB(t)
	st := newPurchasingStack(db)
	ctx := context.Background()
	tenantID, actorID := uuid.New(), uuid.New()

	product, err := catalog.NewProduct(tenantID, "GEN-1", "Generic")
	require.NoError(t, err)
	require.NoError(t, st.products.Save(ctx, product))

	created, err := st.service.Create(ctx, tenantID, actorID, createRequestFor(""))
	require.NoError(t, err)

	completed := "completed"
	racing := &completingOrderRepo{
		GormPurchaseOrderRepository: st.orders,
		complete: func(id uuid.UUID) {
			_, err := st.service.Update(ctx, tenantID, actorID, id, apptrade.UpdatePurchaseOrderRequest{Status: &completed})
			require.NoError(t, err)
		},
	}
	allocator := apptrade.NewOrderNumberAllocator(NewGormSequenceCounter(db), 20, zap.NewNop())
	allocator.RegisterKind("PO", "PO", st.orders.ExistsByOrderNumber)
	deleter := apptrade.NewPurchaseOrderService(racing, NewGormPurchaseTransactionScope(db), allocator,
		apptrade.NewPurchaseOrderValidator(st.products, st.suppliers), zap.NewNop())

	err = deleter.Delete(ctx, tenantID, created.ID)
	assert.ErrorIs(t, err, shared.ErrConflict)

	stored, err := st.service.GetByID(ctx, tenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", stored.Status)
	assert.Len(t, stored.Items, 1)

	batches, err := st.batches.ListBySource(ctx, tenantID, inventory.SourceTypePurchaseOrder, created.ID)
	require.NoError(t, err)
	assert.Len(t, batches, 1)
}
