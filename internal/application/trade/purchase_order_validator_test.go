package trade

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/partner"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(code, qty, total string) LineItemInput {
	return LineItemInput{ProductCode: code, ProductName: "Product " + code, Quantity: qty, TotalCost: total}
}

func TestPurchaseOrderValidator_FieldErrors(t *testing.T) {
	tenantID := uuid.New()
	v := NewPurchaseOrderValidator(newFakeCatalog(), &fakeSuppliers{})

	tests := []struct {
		name      string
		req       CreatePurchaseOrderRequest
		wantField string
	}{
		{
			name:      "missing product code",
			req:       CreatePurchaseOrderRequest{Items: []LineItemInput{item("A", "1", "1"), {ProductName: "x", Quantity: "1", TotalCost: "1"}}},
			wantField: "items[1].product_code",
		},
		{
			name:      "negative quantity",
			req:       CreatePurchaseOrderRequest{Items: []LineItemInput{item("A", "-2", "1")}},
			wantField: "items[0].quantity",
		},
		{
			name:      "non numeric total",
			req:       CreatePurchaseOrderRequest{Items: []LineItemInput{item("A", "1", "abc")}},
			wantField: "items[0].total_cost",
		},
		{
			name:      "negative unit price",
			req:       CreatePurchaseOrderRequest{Items: []LineItemInput{{ProductCode: "A", ProductName: "A", Quantity: "1", TotalCost: "1", UnitPrice: "-1"}}},
			wantField: "items[0].unit_price",
		},
		{
			name:      "unknown status",
			req:       CreatePurchaseOrderRequest{Status: "shipped"},
			wantField: "status",
		},
		{
			name:      "unknown payment status",
			req:       CreatePurchaseOrderRequest{PaymentStatus: "maybe"},
			wantField: "payment_status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateCreate(context.Background(), tenantID, tt.req)
			require.Error(t, err)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, shared.CodeValidation, de.Code)
			assert.Equal(t, tt.wantField, de.Field)
		})
	}
}

func TestPurchaseOrderValidator_ResolvesProducts(t *testing.T) {
	tenantID := uuid.New()
	products := newFakeCatalog()
	amox := products.add(tenantID, "AMOX", "Amoxicillin")
	v := NewPurchaseOrderValidator(products, &fakeSuppliers{})

	out, err := v.ValidateCreate(context.Background(), tenantID, CreatePurchaseOrderRequest{
		Status: "completed",
		Items: []LineItemInput{
			item("AMOX", "10", "125.50"),
			item("MISSING", "2", "4"),
		},
	})
	require.NoError(t, err)

	require.NotNil(t, out.Status)
	assert.Equal(t, trade.PurchaseOrderStatusCompleted, *out.Status)
	require.Len(t, out.Lines, 2)
	require.NotNil(t, out.Lines[0].ProductID)
	assert.Equal(t, amox.ID, *out.Lines[0].ProductID)
	assert.True(t, decimal.RequireFromString("12.55").Equal(out.Lines[0].UnitPrice))
	assert.Nil(t, out.Lines[1].ProductID)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "items[1]")
	assert.Contains(t, out.Warnings[0], "MISSING")
}

func TestPurchaseOrderValidator_Supplier(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	supplier, err := partner.NewSupplier(tenantID, "S1", "Pharmacie L\u00e9")
	require.NoError(t, err)
	v := NewPurchaseOrderValidator(newFakeCatalog(), &fakeSuppliers{suppliers: []*partner.Supplier{supplier}})

	t.Run("matches decomposed name", func(t *testing.T) {
		out, err := v.ValidateCreate(ctx, tenantID, CreatePurchaseOrderRequest{SupplierName: "  Pharmacie Le\u0301 "})
		require.NoError(t, err)
		require.NotNil(t, out.Supplier)
		require.NotNil(t, out.Supplier.ID)
		assert.Equal(t, supplier.ID, *out.Supplier.ID)
		assert.Empty(t, out.Warnings)
	})

	t.Run("unknown id falls back to name", func(t *testing.T) {
		missing := uuid.New()
		out, err := v.ValidateCreate(ctx, tenantID, CreatePurchaseOrderRequest{SupplierID: &missing, SupplierName: "Pharmacie L\u00e9"})
		require.NoError(t, err)
		require.NotNil(t, out.Supplier.ID)
		assert.Equal(t, supplier.ID, *out.Supplier.ID)
		assert.Len(t, out.Warnings, 1)
	})

	t.Run("unknown name keeps text", func(t *testing.T) {
		out, err := v.ValidateCreate(ctx, tenantID, CreatePurchaseOrderRequest{SupplierName: "Nobody"})
		require.NoError(t, err)
		assert.Nil(t, out.Supplier.ID)
		assert.Equal(t, "Nobody", out.Supplier.Name)
		assert.Len(t, out.Warnings, 1)
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		failing := NewPurchaseOrderValidator(newFakeCatalog(), &fakeSuppliers{err: errStorage})
		_, err := failing.ValidateCreate(ctx, tenantID, CreatePurchaseOrderRequest{SupplierName: "Any"})
		assert.ErrorIs(t, err, errStorage)
	})
}

func TestPurchaseOrderValidator_Update(t *testing.T) {
	v := NewPurchaseOrderValidator(newFakeCatalog(), &fakeSuppliers{})

	out, err := v.ValidateUpdate(context.Background(), uuid.New(), UpdatePurchaseOrderRequest{})
	require.NoError(t, err)
	assert.Nil(t, out.Lines)
	assert.Nil(t, out.Status)
	assert.Nil(t, out.Supplier)

	out, err = v.ValidateUpdate(context.Background(), uuid.New(), UpdatePurchaseOrderRequest{Items: []LineItemInput{}})
	require.NoError(t, err)
	assert.NotNil(t, out.Lines)
	assert.Empty(t, out.Lines)

	bad := "nope"
	_, err = v.ValidateUpdate(context.Background(), uuid.New(), UpdatePurchaseOrderRequest{Status: &bad})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestPurchaseOrderValidator_Rename(t *testing.T) {
	v := NewPurchaseOrderValidator(newFakeCatalog(), &fakeSuppliers{})

	tests := []struct {
		name      string
		req       RenamePurchaseOrderRequest
		wantField string
	}{
		{name: "empty request passes limits", req: RenamePurchaseOrderRequest{}},
		{name: "within limits", req: RenamePurchaseOrderRequest{POID: "PO-7", OrderNumber: "PUR-20240101-0001"}},
		{name: "poid too long", req: RenamePurchaseOrderRequest{POID: strings.Repeat("p", 51)}, wantField: "poid"},
		{name: "order number too long", req: RenamePurchaseOrderRequest{OrderNumber: strings.Repeat("9", 41)}, wantField: "order_number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRename(tt.req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, shared.CodeValidation, de.Code)
			assert.Equal(t, tt.wantField, de.Field)
		})
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Caf\u00e9", NormalizeName(" Cafe\u0301\t"))
}
