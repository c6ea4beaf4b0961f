package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/finance"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/pharmapos/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SourceTypePurchaseOrder tags groups posted for purchase orders
const SourceTypePurchaseOrder = "PURCHASE_ORDER"

// PurchaseAccountingService books completed purchase orders as
// Dr Inventory / Cr Accounts Payable and voids the booking on unlock.
type PurchaseAccountingService struct {
	groups finance.TransactionGroupRepository
	logger *zap.Logger
}

// NewPurchaseAccountingService creates a new PurchaseAccountingService
func NewPurchaseAccountingService(groups finance.TransactionGroupRepository, logger *zap.Logger) *PurchaseAccountingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseAccountingService{groups: groups, logger: logger}
}

// OnPurchaseOrderCompleted posts the order once. A posted group that already
// exists for the order is returned as is.
func (s *PurchaseAccountingService) OnPurchaseOrderCompleted(ctx context.Context, order *trade.PurchaseOrder, userID uuid.UUID) (string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "finance", "post_purchase_order",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, order.ID.String()))
	defer span.End()

	existing, err := s.groups.FindActiveBySource(ctx, order.TenantID, SourceTypePurchaseOrder, order.ID)
	switch {
	case err == nil:
		return existing.ID.String(), nil
	case !errors.Is(err, shared.ErrNotFound):
		telemetry.RecordError(span, err)
		return "", fmt.Errorf("find transaction group: %w", err)
	}

	if !order.TotalAmount.IsPositive() {
		s.logger.Info("skipping posting of zero-value purchase order",
			zap.String("order_id", order.ID.String()),
			zap.String("order_number", order.OrderNumber),
		)
		return "", nil
	}

	group, err := finance.NewTransactionGroup(order.TenantID, SourceTypePurchaseOrder, order.ID, order.OrderNumber, userID)
	if err != nil {
		return "", err
	}
	memo := "Purchase order " + order.OrderNumber
	if order.SupplierName != "" {
		memo += " from " + order.SupplierName
	}
	if err := group.AddEntry(finance.AccountInventory, order.TotalAmount, decimal.Zero, memo); err != nil {
		return "", err
	}
	if err := group.AddEntry(finance.AccountAccountsPayable, decimal.Zero, order.TotalAmount, memo); err != nil {
		return "", err
	}

	if err := s.groups.Create(ctx, group); err != nil {
		telemetry.RecordError(span, err)
		return "", fmt.Errorf("create transaction group: %w", err)
	}

	s.logger.Info("purchase order posted",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("group_id", group.ID.String()),
		zap.String("reference", group.Reference),
		zap.String("amount", order.TotalAmount.String()),
	)
	return group.ID.String(), nil
}

// OnPurchaseOrderUnlocked voids the order's posted group, if any.
func (s *PurchaseAccountingService) OnPurchaseOrderUnlocked(ctx context.Context, order *trade.PurchaseOrder) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "finance", "void_purchase_order",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, order.ID.String()))
	defer span.End()

	group, err := s.groups.FindActiveBySource(ctx, order.TenantID, SourceTypePurchaseOrder, order.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		telemetry.RecordError(span, err)
		return fmt.Errorf("find transaction group: %w", err)
	}

	group.Void()
	if err := s.groups.MarkVoided(ctx, group); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("void transaction group: %w", err)
	}

	s.logger.Info("purchase order posting voided",
		zap.String("order_id", order.ID.String()),
		zap.String("group_id", group.ID.String()),
	)
	return nil
}
