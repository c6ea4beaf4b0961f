package trade

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	inventoryapp "github.com/pharmapos/backend/internal/application/inventory"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/pharmapos/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

type transition int

const (
	transitionNone transition = iota
	transitionEnterCompleted
	transitionExitCompleted
)

func (t transition) String() string {
	switch t {
	case transitionEnterCompleted:
		return "enter_completed"
	case transitionExitCompleted:
		return "exit_completed"
	}
	return "none"
}

func classifyTransition(wasCompleted, willBeCompleted bool) transition {
	switch {
	case !wasCompleted && willBeCompleted:
		return transitionEnterCompleted
	case wasCompleted && !willBeCompleted:
		return transitionExitCompleted
	}
	return transitionNone
}

// PurchaseOrderService runs the purchase order lifecycle: create, update
// with status transitions, rename and delete. Crossing the completed
// boundary triggers the registered completion effects.
type PurchaseOrderService struct {
	orderRepo      trade.PurchaseOrderRepository
	txScope        TransactionScope
	allocator      *OrderNumberAllocator
	validator      *PurchaseOrderValidator
	effects        []CompletionEffect
	prices         inventoryapp.PriceUpdater
	eventPublisher shared.EventPublisher
	metrics        *telemetry.PurchasingMetrics
	logger         *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo trade.PurchaseOrderRepository,
	txScope TransactionScope,
	allocator *OrderNumberAllocator,
	validator *PurchaseOrderValidator,
	logger *zap.Logger,
) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		orderRepo: orderRepo,
		txScope:   txScope,
		allocator: allocator,
		validator: validator,
		logger:    logger,
	}
}

// AddEffect appends a completion effect. Effects run in registration order.
func (s *PurchaseOrderService) AddEffect(effect CompletionEffect) {
	s.effects = append(s.effects, effect)
}

// SetPriceUpdater sets where last-purchase-price updates go after commit
func (s *PurchaseOrderService) SetPriceUpdater(prices inventoryapp.PriceUpdater) {
	s.prices = prices
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the purchasing metrics collector
func (s *PurchaseOrderService) SetMetrics(m *telemetry.PurchasingMetrics) {
	s.metrics = m
}

// Create validates and persists a new order. When the initial status is
// completed the entry effects run in the same transaction as the insert.
func (s *PurchaseOrderService) Create(ctx context.Context, tenantID, actorID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "create")
	defer span.End()

	validated, err := s.validator.ValidateCreate(ctx, tenantID, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	status := trade.PurchaseOrderStatusPending
	if validated.Status != nil {
		status = *validated.Status
	}
	tr := classifyTransition(false, status == trade.PurchaseOrderStatusCompleted)
	if tr == transitionEnterCompleted && actorID == uuid.Nil {
		return nil, shared.NewAuthorizationError("creating a completed purchase order requires an acting user")
	}

	poid := strings.TrimSpace(req.POID)
	if poid != "" {
		if err := s.ensurePOIDFree(ctx, tenantID, poid, nil); err != nil {
			return nil, err
		}
	}

	var (
		order   *trade.PurchaseOrder
		ec      *EffectContext
		lastErr error
	)
	for attempt := 0; attempt < s.allocator.MaxAttempts(); attempt++ {
		number, err := s.allocator.Allocate(ctx, trade.OrderKindPurchase, req.OrderNumber)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		candidate, err := s.buildOrder(tenantID, actorID, number, poid, status, validated, req)
		if err != nil {
			return nil, err
		}
		candidateEC := &EffectContext{
			Order:   candidate,
			ActorID: actorID,
			Prices:  inventoryapp.NewDeferredPriceUpdates(),
		}

		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			if err := repos.PurchaseOrderRepo().Create(ctx, candidate); err != nil {
				return err
			}
			candidateEC.Repos = repos
			return s.runInTransaction(ctx, tr, candidateEC)
		})
		if err == nil {
			order, ec = candidate, candidateEC
			break
		}
		if !shared.IsDuplicateKey(err) {
			telemetry.RecordError(span, err)
			return nil, err
		}

		lastErr = err
		if poid != "" {
			if err := s.ensurePOIDFree(ctx, tenantID, poid, nil); err != nil {
				return nil, err
			}
		}
		s.logger.Debug("order number taken at insert, allocating again",
			zap.String("order_number", number),
			zap.Int("attempt", attempt+1),
		)
	}
	if order == nil {
		s.logger.Error("could not persist purchase order with a unique order number",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(lastErr),
		)
		return nil, shared.NewExhaustedError("could not persist purchase order with a unique order number", lastErr)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, order.ID.String(),
		telemetry.SpanAttrOrderNumber, order.OrderNumber,
		telemetry.SpanAttrTransition, tr.String(),
	)
	s.afterCommit(ctx, tr, ec)

	resp := ToPurchaseOrderResponse(order)
	resp.Warnings = validated.Warnings
	return &resp, nil
}

func (s *PurchaseOrderService) buildOrder(
	tenantID, actorID uuid.UUID,
	number, poid string,
	status trade.PurchaseOrderStatus,
	validated *ValidatedPurchaseOrder,
	req CreatePurchaseOrderRequest,
) (*trade.PurchaseOrder, error) {
	order, err := trade.NewPurchaseOrder(tenantID, number, poid)
	if err != nil {
		return nil, err
	}
	if actorID != uuid.Nil {
		order.SetCreatedBy(actorID)
	}
	if validated.Supplier != nil {
		order.SetSupplier(validated.Supplier.ID, validated.Supplier.Name)
	}
	order.SetBill(req.BillReference, req.BillDate)
	if validated.PaymentStatus != nil {
		if err := order.SetPaymentStatus(*validated.PaymentStatus); err != nil {
			return nil, err
		}
	}
	order.SetTransactionType(req.TransactionType)
	order.SetRemark(req.Remark)

	if err := order.ReplaceItems(validated.Lines); err != nil {
		return nil, err
	}

	switch {
	case status == trade.PurchaseOrderStatusCompleted:
		if err := order.Complete(actorID); err != nil {
			return nil, err
		}
	case status != order.Status:
		if err := order.ChangeStatus(status); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Update applies changes to an order. Entering completed appends ledger
// batches and books the order; leaving it removes the batches and reverses
// the booking.
func (s *PurchaseOrderService) Update(ctx context.Context, tenantID, actorID, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "update",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()

	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != order.Version {
		return nil, shared.NewConcurrencyError(fmt.Sprintf("purchase order was modified (version %d, expected %d)", order.Version, *req.Version))
	}

	validated, err := s.validator.ValidateUpdate(ctx, tenantID, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	target := order.Status
	if validated.Status != nil {
		target = *validated.Status
	}
	tr := classifyTransition(order.IsCompleted(), target == trade.PurchaseOrderStatusCompleted)
	if tr == transitionEnterCompleted && actorID == uuid.Nil {
		return nil, shared.NewAuthorizationError("completing a purchase order requires an acting user")
	}

	previousGroup := order.TransactionGroupID
	if err := s.applyChanges(order, actorID, target, tr, validated, req); err != nil {
		return nil, err
	}

	ec := &EffectContext{
		Order:                      order,
		ActorID:                    actorID,
		Prices:                     inventoryapp.NewDeferredPriceUpdates(),
		PreviousTransactionGroupID: previousGroup,
	}
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.PurchaseOrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}
		ec.Repos = repos
		return s.runInTransaction(ctx, tr, ec)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrTransition, tr.String())
	s.afterCommit(ctx, tr, ec)

	resp := ToPurchaseOrderResponse(order)
	resp.Warnings = validated.Warnings
	return &resp, nil
}

func (s *PurchaseOrderService) applyChanges(
	order *trade.PurchaseOrder,
	actorID uuid.UUID,
	target trade.PurchaseOrderStatus,
	tr transition,
	validated *ValidatedPurchaseOrder,
	req UpdatePurchaseOrderRequest,
) error {
	if validated.Supplier != nil {
		order.SetSupplier(validated.Supplier.ID, validated.Supplier.Name)
	}
	if req.BillReference != nil || req.BillDate != nil {
		ref, date := order.BillReference, order.BillDate
		if req.BillReference != nil {
			ref = *req.BillReference
		}
		if req.BillDate != nil {
			date = req.BillDate
		}
		order.SetBill(ref, date)
	}
	if validated.PaymentStatus != nil {
		if err := order.SetPaymentStatus(*validated.PaymentStatus); err != nil {
			return err
		}
	}
	if req.TransactionType != nil {
		order.SetTransactionType(*req.TransactionType)
	}
	if req.Remark != nil {
		order.SetRemark(*req.Remark)
	}

	replaceLines := func() error {
		if validated.Lines == nil {
			return nil
		}
		return order.ReplaceItems(validated.Lines)
	}

	switch tr {
	case transitionExitCompleted:
		if err := order.Unlock(target); err != nil {
			return err
		}
		return replaceLines()
	case transitionEnterCompleted:
		if err := replaceLines(); err != nil {
			return err
		}
		return order.Complete(actorID)
	default:
		if err := replaceLines(); err != nil {
			return err
		}
		if target != order.Status {
			return order.ChangeStatus(target)
		}
		return nil
	}
}

// Delete removes an order that is not completed. No ledger rows exist for
// such an order, so the ledger is not touched.
func (s *PurchaseOrderService) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "delete",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()

	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if err := order.MarkDeleted(); err != nil {
		return err
	}
	if err := s.orderRepo.DeleteForTenant(ctx, tenantID, orderID, order.Version); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.publishEvents(ctx, order)
	return nil
}

// Rename changes the display code, and on request the order number.
func (s *PurchaseOrderService) Rename(ctx context.Context, tenantID, orderID uuid.UUID, req RenamePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "rename",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, orderID.String()))
	defer span.End()

	if err := s.validator.ValidateRename(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	poid := strings.TrimSpace(req.POID)
	renumber := req.Renumber || strings.TrimSpace(req.OrderNumber) != ""
	if poid == "" && !renumber {
		return nil, shared.NewValidationError("poid", "poid or a new order number is required")
	}

	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != order.Version {
		return nil, shared.NewConcurrencyError(fmt.Sprintf("purchase order was modified (version %d, expected %d)", order.Version, *req.Version))
	}

	if poid != "" && poid != order.POID {
		if err := s.ensurePOIDFree(ctx, tenantID, poid, &order.ID); err != nil {
			return nil, err
		}
		if err := order.Rename(poid); err != nil {
			return nil, err
		}
	}

	if renumber {
		if order.IsCompleted() {
			return nil, shared.NewConflictError("completed orders cannot be renumbered")
		}
		number, err := s.allocator.Allocate(ctx, trade.OrderKindPurchase, req.OrderNumber)
		if err != nil {
			return nil, err
		}
		if err := order.Renumber(number); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		if shared.IsDuplicateKey(err) {
			return nil, shared.NewConflictError("poid or order number is already in use")
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// GetByOrderNumber retrieves a purchase order by order number
func (s *PurchaseOrderService) GetByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, tenantID, orderNumber)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// List retrieves purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, tenantID uuid.UUID, filter PurchaseOrderListFilter) ([]PurchaseOrderListItemResponse, int64, error) {
	domainFilter := trade.PurchaseOrderFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		}.Normalize(),
		SupplierID: filter.SupplierID,
	}
	if filter.Status != "" {
		status, err := trade.ParsePurchaseOrderStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Status = &status
	}
	if filter.PaymentStatus != "" {
		ps, err := trade.ParsePaymentStatus(filter.PaymentStatus)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.PaymentStatus = &ps
	}

	orders, err := s.orderRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPurchaseOrderListItemResponses(orders), total, nil
}

func (s *PurchaseOrderService) ensurePOIDFree(ctx context.Context, tenantID uuid.UUID, poid string, excludeID *uuid.UUID) error {
	taken, err := s.orderRepo.ExistsByPOID(ctx, tenantID, poid, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return shared.NewConflictError(fmt.Sprintf("poid %q is already in use", poid))
	}
	return nil
}

func (s *PurchaseOrderService) runInTransaction(ctx context.Context, tr transition, ec *EffectContext) error {
	if tr == transitionNone {
		return nil
	}
	for _, effect := range s.effects {
		if !effect.InTransaction() {
			continue
		}
		if err := runEffect(ctx, effect, tr, ec); err != nil {
			return fmt.Errorf("%s effect: %w", effect.Name(), err)
		}
	}
	return nil
}

// afterCommit applies deferred price updates, runs the best-effort effects,
// saves any link they produced and publishes the order's events.
func (s *PurchaseOrderService) afterCommit(ctx context.Context, tr transition, ec *EffectContext) {
	order := ec.Order
	ec.Repos = nil

	if ec.Prices != nil {
		ec.Prices.Flush(ctx, s.prices, s.logger)
	}

	if tr != transitionNone {
		for _, effect := range s.effects {
			if effect.InTransaction() {
				continue
			}
			if err := runEffect(ctx, effect, tr, ec); err != nil {
				s.logger.Error("completion effect failed",
					zap.String("effect", effect.Name()),
					zap.String("transition", tr.String()),
					zap.String("order_id", order.ID.String()),
					zap.String("order_number", order.OrderNumber),
					zap.Error(err),
				)
				s.metrics.RecordEffectFailure(ctx, effect.Name())
			}
		}
	}

	if ec.OrderChanged {
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			s.logger.Error("failed to save purchase order after effects",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.publishEvents(ctx, order)
}

func runEffect(ctx context.Context, effect CompletionEffect, tr transition, ec *EffectContext) error {
	switch tr {
	case transitionEnterCompleted:
		return effect.OnEnterCompleted(ctx, ec)
	case transitionExitCompleted:
		return effect.OnExitCompleted(ctx, ec)
	}
	return nil
}

func (s *PurchaseOrderService) publishEvents(ctx context.Context, order *trade.PurchaseOrder) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish purchase order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}
