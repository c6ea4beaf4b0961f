package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// OrderKindPurchase is the order-number kind for purchase orders.
const OrderKindPurchase = "PO"

// PurchaseOrderStatus represents the status of a purchase order.
// Only the completed boundary carries ledger and accounting effects;
// every other status is opaque to them.
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusOrdered   PurchaseOrderStatus = "ordered"
	PurchaseOrderStatusCompleted PurchaseOrderStatus = "completed"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusOrdered,
		PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// ParsePurchaseOrderStatus validates a raw status value.
func ParsePurchaseOrderStatus(raw string) (PurchaseOrderStatus, error) {
	s := PurchaseOrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.NewValidationError("status", fmt.Sprintf("unknown status %q", raw))
	}
	return s, nil
}

// PaymentStatus tracks settlement of the supplier bill
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// IsValid checks if the payment status is known
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// ParsePaymentStatus validates a raw payment status value.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	s := PaymentStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.NewValidationError("payment_status", fmt.Sprintf("unknown payment status %q", raw))
	}
	return s, nil
}

// DefaultTransactionType is used when the caller does not name one.
const DefaultTransactionType = "purchase"

// LineInput carries already-parsed line values into the aggregate.
type LineInput struct {
	ProductID       *uuid.UUID
	ProductCode     string
	ProductName     string
	Quantity        decimal.Decimal
	TotalCost       decimal.Decimal
	UnitPrice       *decimal.Decimal
	BatchNumber     string
	ExpiryDate      *time.Time
	PackageQuantity *decimal.Decimal
	BoxQuantity     *decimal.Decimal
}

// PurchaseOrderLine is a line item owned by its purchase order
type PurchaseOrderLine struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	LineNo          int
	ProductID       *uuid.UUID
	ProductCode     string
	ProductName     string
	Quantity        decimal.Decimal
	TotalCost       decimal.Decimal
	UnitPrice       decimal.Decimal
	BatchNumber     string
	ExpiryDate      *time.Time
	PackageQuantity *decimal.Decimal
	BoxQuantity     *decimal.Decimal
}

// NewPurchaseOrderLine builds a line and derives its unit price when absent.
func NewPurchaseOrderLine(in LineInput) (*PurchaseOrderLine, error) {
	if strings.TrimSpace(in.ProductCode) == "" {
		return nil, shared.NewValidationError("product_code", "product code is required")
	}
	if strings.TrimSpace(in.ProductName) == "" {
		return nil, shared.NewValidationError("product_name", "product name is required")
	}
	if in.Quantity.IsNegative() {
		return nil, shared.NewValidationError("quantity", "quantity must not be negative")
	}
	if in.TotalCost.IsNegative() {
		return nil, shared.NewValidationError("total_cost", "total cost must not be negative")
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, shared.NewValidationError("unit_price", "unit price must not be negative")
	}

	return &PurchaseOrderLine{
		ID:              uuid.New(),
		ProductID:       in.ProductID,
		ProductCode:     strings.TrimSpace(in.ProductCode),
		ProductName:     strings.TrimSpace(in.ProductName),
		Quantity:        in.Quantity,
		TotalCost:       in.TotalCost,
		UnitPrice:       DeriveUnitPrice(in.Quantity, in.TotalCost, in.UnitPrice),
		BatchNumber:     strings.TrimSpace(in.BatchNumber),
		ExpiryDate:      in.ExpiryDate,
		PackageQuantity: in.PackageQuantity,
		BoxQuantity:     in.BoxQuantity,
	}, nil
}

// DeriveUnitPrice returns explicit when set, otherwise totalCost/quantity,
// otherwise zero.
func DeriveUnitPrice(quantity, totalCost decimal.Decimal, explicit *decimal.Decimal) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	if quantity.IsPositive() {
		return totalCost.Div(quantity).Round(strategy.UnitPricePrecision)
	}
	return decimal.Zero
}

// HasProduct reports whether the line resolved to a catalog product.
func (l *PurchaseOrderLine) HasProduct() bool {
	return l.ProductID != nil && *l.ProductID != uuid.Nil
}

// sameContent compares the values that drive ledger effects.
func (l PurchaseOrderLine) sameContent(o PurchaseOrderLine) bool {
	return l.ProductCode == o.ProductCode &&
		l.ProductName == o.ProductName &&
		l.Quantity.Equal(o.Quantity) &&
		l.TotalCost.Equal(o.TotalCost) &&
		l.UnitPrice.Equal(o.UnitPrice) &&
		l.BatchNumber == o.BatchNumber &&
		uuidPtrEqual(l.ProductID, o.ProductID)
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// PurchaseOrder represents a purchase order aggregate root
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	OrderNumber        string
	POID               string
	SupplierID         *uuid.UUID
	SupplierName       string
	BillReference      string
	BillDate           *time.Time
	Status             PurchaseOrderStatus
	PaymentStatus      PaymentStatus
	TransactionType    string
	Items              []PurchaseOrderLine
	TotalAmount        decimal.Decimal
	TransactionGroupID *string
	Remark             string
	CompletedAt        *time.Time
	CompletedBy        *uuid.UUID
}

// NewPurchaseOrder creates a pending purchase order. An empty poid defaults
// to the order number.
func NewPurchaseOrder(tenantID uuid.UUID, orderNumber, poid string) (*PurchaseOrder, error) {
	if err := validateOrderNumber(orderNumber); err != nil {
		return nil, err
	}
	poid = strings.TrimSpace(poid)
	if poid == "" {
		poid = orderNumber
	}

	order := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		POID:                poid,
		Status:              PurchaseOrderStatusPending,
		PaymentStatus:       PaymentStatusUnpaid,
		TransactionType:     DefaultTransactionType,
		Items:               make([]PurchaseOrderLine, 0),
		TotalAmount:         decimal.Zero,
	}
	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

func validateOrderNumber(orderNumber string) error {
	if strings.TrimSpace(orderNumber) == "" {
		return shared.NewValidationError("order_number", "order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return shared.NewValidationError("order_number", "order number cannot exceed 50 characters")
	}
	return nil
}

// IsCompleted reports whether the order sits on the completed side of the
// effect boundary.
func (o *PurchaseOrder) IsCompleted() bool {
	return o.Status == PurchaseOrderStatusCompleted
}

// CanDelete reports whether the order may be deleted.
func (o *PurchaseOrder) CanDelete() bool {
	return !o.IsCompleted()
}

// SetSupplier links the order to a supplier. A nil id keeps only the name.
func (o *PurchaseOrder) SetSupplier(supplierID *uuid.UUID, name string) {
	o.SupplierID = supplierID
	o.SupplierName = strings.TrimSpace(name)
	o.touch()
}

// SetBill records the supplier bill reference and date.
func (o *PurchaseOrder) SetBill(reference string, date *time.Time) {
	o.BillReference = strings.TrimSpace(reference)
	o.BillDate = date
	o.touch()
}

// SetPaymentStatus updates the payment status
func (o *PurchaseOrder) SetPaymentStatus(status PaymentStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("payment_status", fmt.Sprintf("unknown payment status %q", status))
	}
	o.PaymentStatus = status
	o.touch()
	return nil
}

// SetTransactionType updates the transaction type; empty means purchase.
func (o *PurchaseOrder) SetTransactionType(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		t = DefaultTransactionType
	}
	o.TransactionType = t
	o.touch()
}

// SetRemark updates the free-text remark
func (o *PurchaseOrder) SetRemark(remark string) {
	o.Remark = remark
	o.touch()
}

// ReplaceItems swaps the full line list and recomputes the total.
// Lines of a completed order are frozen while it stays completed.
func (o *PurchaseOrder) ReplaceItems(lines []PurchaseOrderLine) error {
	if o.IsCompleted() && !o.sameLines(lines) {
		return shared.NewConflictError("line items of a completed order cannot change; unlock it first")
	}
	items := make([]PurchaseOrderLine, len(lines))
	for i, line := range lines {
		line.OrderID = o.ID
		line.LineNo = i + 1
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		items[i] = line
	}
	o.Items = items
	o.recalculateTotals()
	o.touch()
	return nil
}

func (o *PurchaseOrder) sameLines(lines []PurchaseOrderLine) bool {
	if len(lines) != len(o.Items) {
		return false
	}
	for i := range lines {
		if !lines[i].sameContent(o.Items[i]) {
			return false
		}
	}
	return true
}

// recalculateTotals recomputes TotalAmount from the line items; client
// supplied totals are never trusted.
func (o *PurchaseOrder) recalculateTotals() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalCost)
	}
	o.TotalAmount = total
}

// ResolvedLines returns the lines linked to a catalog product.
func (o *PurchaseOrder) ResolvedLines() []PurchaseOrderLine {
	resolved := make([]PurchaseOrderLine, 0, len(o.Items))
	for _, item := range o.Items {
		if item.HasProduct() {
			resolved = append(resolved, item)
		}
	}
	return resolved
}

// Rename changes the user-facing display code.
func (o *PurchaseOrder) Rename(poid string) error {
	poid = strings.TrimSpace(poid)
	if poid == "" {
		return shared.NewValidationError("poid", "poid cannot be empty")
	}
	o.POID = poid
	o.touch()
	return nil
}

// Renumber replaces the order number. Completed orders keep theirs because
// their ledger batches reference it.
func (o *PurchaseOrder) Renumber(orderNumber string) error {
	if o.IsCompleted() {
		return shared.NewConflictError("completed orders cannot be renumbered")
	}
	if err := validateOrderNumber(orderNumber); err != nil {
		return err
	}
	o.OrderNumber = orderNumber
	o.touch()
	return nil
}

// Complete moves the order into completed on behalf of actor.
func (o *PurchaseOrder) Complete(actor uuid.UUID) error {
	if actor == uuid.Nil {
		return shared.NewAuthorizationError("completing a purchase order requires an acting user")
	}
	if o.IsCompleted() {
		return shared.NewDomainError(shared.CodeInvalidState, "purchase order is already completed")
	}
	now := time.Now()
	o.Status = PurchaseOrderStatusCompleted
	o.CompletedAt = &now
	o.CompletedBy = &actor
	o.touch()
	o.AddDomainEvent(NewPurchaseOrderCompletedEvent(o, actor))
	return nil
}

// Unlock moves a completed order back to target and drops its accounting link.
func (o *PurchaseOrder) Unlock(target PurchaseOrderStatus) error {
	if !o.IsCompleted() {
		return shared.NewDomainError(shared.CodeInvalidState, "only completed purchase orders can be unlocked")
	}
	if !target.IsValid() || target == PurchaseOrderStatusCompleted {
		return shared.NewValidationError("status", fmt.Sprintf("cannot unlock into status %q", target))
	}
	previousGroup := o.TransactionGroupID
	o.Status = target
	o.CompletedAt = nil
	o.CompletedBy = nil
	o.TransactionGroupID = nil
	o.touch()
	o.AddDomainEvent(NewPurchaseOrderUnlockedEvent(o, previousGroup))
	return nil
}

// ChangeStatus moves between non-completed statuses.
func (o *PurchaseOrder) ChangeStatus(target PurchaseOrderStatus) error {
	if !target.IsValid() {
		return shared.NewValidationError("status", fmt.Sprintf("unknown status %q", target))
	}
	if target == PurchaseOrderStatusCompleted || o.IsCompleted() {
		return shared.NewDomainError(shared.CodeInvalidState, "use Complete or Unlock to cross the completed boundary")
	}
	o.Status = target
	o.touch()
	return nil
}

// LinkTransactionGroup stores the accounting group created for this order.
func (o *PurchaseOrder) LinkTransactionGroup(groupID string) {
	if groupID == "" {
		return
	}
	o.TransactionGroupID = &groupID
	o.touch()
}

// MarkDeleted records the deletion event.
func (o *PurchaseOrder) MarkDeleted() error {
	if !o.CanDelete() {
		return shared.NewConflictError("completed orders cannot be deleted")
	}
	o.AddDomainEvent(NewPurchaseOrderDeletedEvent(o))
	return nil
}

func (o *PurchaseOrder) touch() {
	o.Touch(time.Now())
}
