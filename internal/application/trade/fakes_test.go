package trade

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/catalog"
	"github.com/pharmapos/backend/internal/domain/inventory"
	"github.com/pharmapos/backend/internal/domain/partner"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// fakeOrderRepo enforces the same unique keys as the database schema.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*trade.PurchaseOrder
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*trade.PurchaseOrder)}
}

func cloneOrder(o *trade.PurchaseOrder) *trade.PurchaseOrder {
	c := *o
	c.Items = append([]trade.PurchaseOrderLine(nil), o.Items...)
	c.ClearDomainEvents()
	return &c
}

func (r *fakeOrderRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, shared.NewNotFoundError("purchase order")
	}
	return cloneOrder(o), nil
}

func (r *fakeOrderRepo) FindByOrderNumber(_ context.Context, tenantID uuid.UUID, orderNumber string) (*trade.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.TenantID == tenantID && o.OrderNumber == orderNumber {
			return cloneOrder(o), nil
		}
	}
	return nil, shared.NewNotFoundError("purchase order")
}

func (r *fakeOrderRepo) matching(tenantID uuid.UUID, filter trade.PurchaseOrderFilter) []trade.PurchaseOrder {
	out := make([]trade.PurchaseOrder, 0)
	for _, o := range r.orders {
		if o.TenantID != tenantID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(o.OrderNumber+" "+o.POID+" "+o.SupplierName, filter.Search) {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out
}

func (r *fakeOrderRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, filter trade.PurchaseOrderFilter) ([]trade.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.matching(tenantID, filter)
	start := filter.Offset()
	if start > len(all) {
		return []trade.PurchaseOrder{}, nil
	}
	end := start + filter.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (r *fakeOrderRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, filter trade.PurchaseOrderFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matching(tenantID, filter))), nil
}

func (r *fakeOrderRepo) conflicts(order *trade.PurchaseOrder) bool {
	for id, o := range r.orders {
		if id == order.ID {
			continue
		}
		if o.OrderNumber == order.OrderNumber {
			return true
		}
		if o.TenantID == order.TenantID && o.POID == order.POID {
			return true
		}
	}
	return false
}

func (r *fakeOrderRepo) Create(_ context.Context, order *trade.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts(order) {
		return shared.NewDuplicateKeyError("purchase order already exists")
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *fakeOrderRepo) SaveWithLock(_ context.Context, order *trade.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return shared.NewNotFoundError("purchase order")
	}
	if stored.Version != order.Version {
		return shared.NewConcurrencyError("stale purchase order")
	}
	if r.conflicts(order) {
		return shared.NewDuplicateKeyError("purchase order already exists")
	}
	order.Version++
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *fakeOrderRepo) DeleteForTenant(_ context.Context, tenantID, id uuid.UUID, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.TenantID != tenantID {
		return shared.NewNotFoundError("purchase order")
	}
	if o.IsCompleted() {
		return shared.NewConflictError("completed orders cannot be deleted")
	}
	if o.Version != expectedVersion {
		return shared.NewConcurrencyError("stale purchase order")
	}
	delete(r.orders, id)
	return nil
}

func (r *fakeOrderRepo) ExistsByOrderNumber(_ context.Context, orderNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == orderNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrderRepo) ExistsByPOID(_ context.Context, tenantID uuid.UUID, poid string, excludeID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, o := range r.orders {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if o.TenantID == tenantID && o.POID == poid {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrderRepo) stored(id uuid.UUID) *trade.PurchaseOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id]
}

func (r *fakeOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

// fakeBatchRepo is an in-memory append-only ledger.
type fakeBatchRepo struct {
	mu         sync.Mutex
	seq        int64
	batches    []inventory.InventoryBatch
	failDelete error
}

func (r *fakeBatchRepo) Append(_ context.Context, batch *inventory.InventoryBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	batch.Sequence = r.seq
	r.batches = append(r.batches, *batch)
	return nil
}

func (r *fakeBatchRepo) DeleteBySource(_ context.Context, tenantID uuid.UUID, sourceType inventory.SourceType, sourceID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDelete != nil {
		return 0, r.failDelete
	}
	kept := r.batches[:0]
	var removed int64
	for _, b := range r.batches {
		if b.TenantID == tenantID && b.SourceType == sourceType && b.SourceID == sourceID {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	r.batches = kept
	return removed, nil
}

func (r *fakeBatchRepo) ListForProduct(_ context.Context, tenantID, productID uuid.UUID) ([]inventory.InventoryBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.InventoryBatch, 0)
	for _, b := range r.batches {
		if b.TenantID == tenantID && b.ProductID == productID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) ListBySource(_ context.Context, tenantID uuid.UUID, sourceType inventory.SourceType, sourceID uuid.UUID) ([]inventory.InventoryBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.InventoryBatch, 0)
	for _, b := range r.batches {
		if b.TenantID == tenantID && b.SourceType == sourceType && b.SourceID == sourceID {
			out = append(out, b)
		}
	}
	return out, nil
}

// fakeCatalog resolves products by code and records price updates.
type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]*catalog.Product
	prices   map[uuid.UUID]decimal.Decimal
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: make(map[string]*catalog.Product),
		prices:   make(map[uuid.UUID]decimal.Decimal),
	}
}

func (c *fakeCatalog) add(tenantID uuid.UUID, code, name string) *catalog.Product {
	p, err := catalog.NewProduct(tenantID, code, name)
	if err != nil {
		panic(err)
	}
	c.products[code] = p
	return p
}

func (c *fakeCatalog) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[code]
	if !ok || p.TenantID != tenantID {
		return nil, shared.NewNotFoundError("product")
	}
	return p, nil
}

func (c *fakeCatalog) UpdateLastPurchasePrice(_ context.Context, _, productID uuid.UUID, price decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[productID] = price
	return nil
}

func (c *fakeCatalog) price(productID uuid.UUID) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.prices[productID]
	return p, ok
}

// fakeSuppliers resolves suppliers by id and exact name.
type fakeSuppliers struct {
	suppliers []*partner.Supplier
	err       error
}

func (s *fakeSuppliers) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*partner.Supplier, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, sup := range s.suppliers {
		if sup.ID == id && sup.TenantID == tenantID {
			return sup, nil
		}
	}
	return nil, shared.NewNotFoundError("supplier")
}

func (s *fakeSuppliers) FindByName(_ context.Context, tenantID uuid.UUID, name string) (*partner.Supplier, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, sup := range s.suppliers {
		if sup.Name == name && sup.TenantID == tenantID {
			return sup, nil
		}
	}
	return nil, shared.NewNotFoundError("supplier")
}

// MockAccounting is a mock implementation of AccountingIntegration
type MockAccounting struct {
	mock.Mock
}

func (m *MockAccounting) OnPurchaseOrderCompleted(ctx context.Context, order *trade.PurchaseOrder, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, order, userID)
	return args.String(0), args.Error(1)
}

func (m *MockAccounting) OnPurchaseOrderUnlocked(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// fixedCounter always returns the same sequence, forcing collisions.
type fixedCounter struct {
	seq int64
	err error
}

func (c fixedCounter) Next(context.Context, string, time.Time) (int64, error) {
	return c.seq, c.err
}

var errStorage = errors.New("storage unavailable")
