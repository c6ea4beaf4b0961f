package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPurchaseOrder(t *testing.T) *PurchaseOrder {
	order, err := NewPurchaseOrder(uuid.New(), "PO-20260101-0001", "")
	require.NoError(t, err)
	return order
}

func testLine(t *testing.T, code string, qty, total string, withProduct bool) PurchaseOrderLine {
	in := LineInput{
		ProductCode: code,
		ProductName: "Product " + code,
		Quantity:    decimal.RequireFromString(qty),
		TotalCost:   decimal.RequireFromString(total),
	}
	if withProduct {
		id := uuid.New()
		in.ProductID = &id
	}
	line, err := NewPurchaseOrderLine(in)
	require.NoError(t, err)
	return *line
}

func TestPurchaseOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  PurchaseOrderStatus
		isValid bool
	}{
		{PurchaseOrderStatusPending, true},
		{PurchaseOrderStatusOrdered, true},
		{PurchaseOrderStatusCompleted, true},
		{PurchaseOrderStatusCancelled, true},
		{PurchaseOrderStatus("INVALID"), false},
		{PurchaseOrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestParsePurchaseOrderStatus(t *testing.T) {
	s, err := ParsePurchaseOrderStatus(" Completed ")
	require.NoError(t, err)
	assert.Equal(t, PurchaseOrderStatusCompleted, s)

	_, err = ParsePurchaseOrderStatus("shipped")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestNewPurchaseOrder(t *testing.T) {
	t.Run("defaults poid to order number", func(t *testing.T) {
		order := createTestPurchaseOrder(t)
		assert.Equal(t, "PO-20260101-0001", order.POID)
		assert.Equal(t, PurchaseOrderStatusPending, order.Status)
		assert.Equal(t, PaymentStatusUnpaid, order.PaymentStatus)
		assert.Equal(t, DefaultTransactionType, order.TransactionType)
		assert.Equal(t, 1, order.Version)
		require.Len(t, order.GetDomainEvents(), 1)
		assert.Equal(t, EventTypePurchaseOrderCreated, order.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects empty order number", func(t *testing.T) {
		_, err := NewPurchaseOrder(uuid.New(), " ", "X")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestNewPurchaseOrderLine(t *testing.T) {
	explicit := decimal.RequireFromString("2.5")

	tests := []struct {
		name      string
		in        LineInput
		wantErr   string
		wantPrice string
	}{
		{
			name:      "derives unit price",
			in:        LineInput{ProductCode: "A", ProductName: "A", Quantity: decimal.NewFromInt(3), TotalCost: decimal.NewFromInt(10)},
			wantPrice: "3.3333",
		},
		{
			name:      "explicit unit price kept",
			in:        LineInput{ProductCode: "A", ProductName: "A", Quantity: decimal.NewFromInt(3), TotalCost: decimal.NewFromInt(10), UnitPrice: &explicit},
			wantPrice: "2.5",
		},
		{
			name:      "zero quantity yields zero price",
			in:        LineInput{ProductCode: "A", ProductName: "A", Quantity: decimal.Zero, TotalCost: decimal.NewFromInt(10)},
			wantPrice: "0",
		},
		{
			name:    "missing code",
			in:      LineInput{ProductName: "A", Quantity: decimal.NewFromInt(1), TotalCost: decimal.NewFromInt(1)},
			wantErr: "product_code",
		},
		{
			name:    "missing name",
			in:      LineInput{ProductCode: "A", Quantity: decimal.NewFromInt(1), TotalCost: decimal.NewFromInt(1)},
			wantErr: "product_name",
		},
		{
			name:    "negative quantity",
			in:      LineInput{ProductCode: "A", ProductName: "A", Quantity: decimal.NewFromInt(-1), TotalCost: decimal.NewFromInt(1)},
			wantErr: "quantity",
		},
		{
			name:    "negative total",
			in:      LineInput{ProductCode: "A", ProductName: "A", Quantity: decimal.NewFromInt(1), TotalCost: decimal.NewFromInt(-1)},
			wantErr: "total_cost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := NewPurchaseOrderLine(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				var de *shared.DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, tt.wantErr, de.Field)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.wantPrice).Equal(line.UnitPrice), "got %s", line.UnitPrice)
		})
	}
}

func TestPurchaseOrder_ReplaceItemsRecomputesTotal(t *testing.T) {
	order := createTestPurchaseOrder(t)

	require.NoError(t, order.ReplaceItems([]PurchaseOrderLine{
		testLine(t, "A", "10", "100", true),
		testLine(t, "B", "5", "60.5", false),
	}))

	assert.True(t, decimal.RequireFromString("160.5").Equal(order.TotalAmount))
	assert.Equal(t, 1, order.Items[0].LineNo)
	assert.Equal(t, 2, order.Items[1].LineNo)
	assert.Equal(t, order.ID, order.Items[1].OrderID)
	assert.Len(t, order.ResolvedLines(), 1)

	require.NoError(t, order.ReplaceItems(nil))
	assert.True(t, order.TotalAmount.IsZero())
}

func TestPurchaseOrder_CompleteAndUnlock(t *testing.T) {
	order := createTestPurchaseOrder(t)
	require.NoError(t, order.ReplaceItems([]PurchaseOrderLine{testLine(t, "A", "1", "1", true)}))

	err := order.Complete(uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	assert.Equal(t, PurchaseOrderStatusPending, order.Status)

	actor := uuid.New()
	require.NoError(t, order.Complete(actor))
	assert.True(t, order.IsCompleted())
	assert.Equal(t, actor, *order.CompletedBy)
	assert.NotNil(t, order.CompletedAt)
	assert.False(t, order.CanDelete())

	order.LinkTransactionGroup("group-1")
	require.NotNil(t, order.TransactionGroupID)

	err = order.Unlock(PurchaseOrderStatusCompleted)
	assert.ErrorIs(t, err, shared.ErrValidation)

	require.NoError(t, order.Unlock(PurchaseOrderStatusPending))
	assert.Nil(t, order.TransactionGroupID)
	assert.Nil(t, order.CompletedBy)
	assert.True(t, order.CanDelete())

	events := order.GetDomainEvents()
	last := events[len(events)-1].(*PurchaseOrderUnlockedEvent)
	require.NotNil(t, last.TransactionGroupID)
	assert.Equal(t, "group-1", *last.TransactionGroupID)
}

func TestPurchaseOrder_CompletedLinesAreFrozen(t *testing.T) {
	order := createTestPurchaseOrder(t)
	lines := []PurchaseOrderLine{testLine(t, "A", "2", "20", true)}
	require.NoError(t, order.ReplaceItems(lines))
	require.NoError(t, order.Complete(uuid.New()))

	// resubmitting the same content is allowed
	same := lines[0]
	same.ID = uuid.New()
	require.NoError(t, order.ReplaceItems([]PurchaseOrderLine{same}))

	changed := same
	changed.Quantity = decimal.NewFromInt(3)
	err := order.ReplaceItems([]PurchaseOrderLine{changed})
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestPurchaseOrder_ChangeStatusBoundary(t *testing.T) {
	order := createTestPurchaseOrder(t)

	require.NoError(t, order.ChangeStatus(PurchaseOrderStatusOrdered))
	assert.Equal(t, PurchaseOrderStatusOrdered, order.Status)

	err := order.ChangeStatus(PurchaseOrderStatusCompleted)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestPurchaseOrder_RenameAndRenumber(t *testing.T) {
	order := createTestPurchaseOrder(t)

	require.NoError(t, order.Rename("INV-7"))
	assert.Equal(t, "INV-7", order.POID)
	assert.ErrorIs(t, order.Rename(""), shared.ErrValidation)

	require.NoError(t, order.Renumber("PO-20260101-0002"))
	assert.Equal(t, "PO-20260101-0002", order.OrderNumber)

	require.NoError(t, order.Complete(uuid.New()))
	assert.ErrorIs(t, order.Renumber("PO-X"), shared.ErrConflict)
}

func TestPurchaseOrder_MarkDeleted(t *testing.T) {
	order := createTestPurchaseOrder(t)
	require.NoError(t, order.MarkDeleted())

	require.NoError(t, order.Complete(uuid.New()))
	assert.ErrorIs(t, order.MarkDeleted(), shared.ErrConflict)
}
