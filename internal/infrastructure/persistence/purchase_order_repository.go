package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/pharmapos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// FindByIDForTenant finds a purchase order by ID within a tenant
func (r *GormPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadLines).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err, "purchase order")
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds a purchase order by order number for a tenant
func (r *GormPurchaseOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadLines).
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&model).Error; err != nil {
		return nil, translateError(err, "purchase order")
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists purchase orders with filtering, ordering and paging
func (r *GormPurchaseOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter trade.PurchaseOrderFilter) ([]trade.PurchaseOrder, error) {
	filter.Filter = filter.Filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	var orderModels []models.PurchaseOrderModel
	if err := query.Preload("Items", preloadLines).Find(&orderModels).Error; err != nil {
		return nil, translateError(err, "list purchase orders")
	}
	orders := make([]trade.PurchaseOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// CountForTenant counts purchase orders matching the filter, ignoring paging
func (r *GormPurchaseOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter trade.PurchaseOrderFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).Where("tenant_id = ?", tenantID)
	if err := r.applyFilterWithoutPagination(query, filter).Count(&count).Error; err != nil {
		return 0, translateError(err, "count purchase orders")
	}
	return count, nil
}

// Create inserts the order header and its lines
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *trade.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(model).Error; err != nil {
			return translateError(err, "purchase order")
		}
		return r.insertLines(tx, order)
	})
}

// SaveWithLock updates the order only if its stored version still equals
// order.Version. Lines missing from order.Items are deleted; the rest are
// upserted.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expected := order.Version
		now := time.Now()

		result := tx.Model(&models.PurchaseOrderModel{}).
			Where("id = ? AND tenant_id = ? AND version = ?", order.ID, order.TenantID, expected).
			Updates(map[string]any{
				"order_number":         order.OrderNumber,
				"poid":                 order.POID,
				"supplier_id":          order.SupplierID,
				"supplier_name":        order.SupplierName,
				"bill_reference":       order.BillReference,
				"bill_date":            order.BillDate,
				"status":               order.Status,
				"payment_status":       order.PaymentStatus,
				"transaction_type":     order.TransactionType,
				"total_amount":         order.TotalAmount,
				"transaction_group_id": order.TransactionGroupID,
				"remark":               order.Remark,
				"completed_at":         order.CompletedAt,
				"completed_by":         order.CompletedBy,
				"version":              expected + 1,
				"updated_at":           now,
			})
		if result.Error != nil {
			return translateError(result.Error, "purchase order")
		}
		if result.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&models.PurchaseOrderModel{}).
				Where("id = ? AND tenant_id = ?", order.ID, order.TenantID).
				Count(&exists).Error; err != nil {
				return translateError(err, "purchase order")
			}
			if exists == 0 {
				return shared.NewNotFoundError("purchase order")
			}
			return shared.NewConcurrencyError("purchase order was modified by another process")
		}

		keep := make([]uuid.UUID, len(order.Items))
		for i := range order.Items {
			keep[i] = order.Items[i].ID
		}
		stale := tx.Where("order_id = ?", order.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.PurchaseOrderLineModel{}).Error; err != nil {
			return translateError(err, "purchase order lines")
		}
		for i := range order.Items {
			line := models.PurchaseOrderLineModelFromDomain(&order.Items[i])
			line.OrderID = order.ID
			if err := tx.Save(line).Error; err != nil {
				return translateError(err, "purchase order line")
			}
		}

		order.Version = expected + 1
		order.UpdatedAt = now
		return nil
	})
}

// DeleteForTenant removes an order and its lines, provided the stored order
// is still at expectedVersion and not completed. Lines go first so the
// header delete never trips the line foreign key; a refused header delete
// rolls them back.
func (r *GormPurchaseOrderRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.PurchaseOrderLineModel{}).Error; err != nil {
			return translateError(err, "purchase order lines")
		}
		result := tx.Where("tenant_id = ? AND id = ? AND version = ? AND status <> ?",
			tenantID, id, expectedVersion, trade.PurchaseOrderStatusCompleted).
			Delete(&models.PurchaseOrderModel{})
		if result.Error != nil {
			return translateError(result.Error, "purchase order")
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var current models.PurchaseOrderModel
		if err := tx.Select("status", "version").
			Where("tenant_id = ? AND id = ?", tenantID, id).
			First(&current).Error; err != nil {
			return translateError(err, "purchase order")
		}
		if current.Status == trade.PurchaseOrderStatusCompleted {
			return shared.NewConflictError("completed orders cannot be deleted")
		}
		return shared.NewConcurrencyError("purchase order was modified by another process")
	})
}

// ExistsByOrderNumber checks order numbers across all tenants
func (r *GormPurchaseOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, translateError(err, "check order number")
	}
	return count > 0, nil
}

// ExistsByPOID checks display codes within a tenant, ignoring excludeID
func (r *GormPurchaseOrderRepository) ExistsByPOID(ctx context.Context, tenantID uuid.UUID, poid string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("tenant_id = ? AND poid = ?", tenantID, poid)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, translateError(err, "check poid")
	}
	return count > 0, nil
}

func (r *GormPurchaseOrderRepository) insertLines(tx *gorm.DB, order *trade.PurchaseOrder) error {
	if len(order.Items) == 0 {
		return nil
	}
	lines := make([]*models.PurchaseOrderLineModel, len(order.Items))
	for i := range order.Items {
		lines[i] = models.PurchaseOrderLineModelFromDomain(&order.Items[i])
		lines[i].OrderID = order.ID
	}
	if err := tx.Create(lines).Error; err != nil {
		return translateError(err, "purchase order lines")
	}
	return nil
}

func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter trade.PurchaseOrderFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply ordering with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, PurchaseOrderSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	if sortField != "order_number" {
		query = query.Order("order_number ASC")
	}

	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}

func (r *GormPurchaseOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter trade.PurchaseOrderFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(poid) LIKE ? OR LOWER(supplier_name) LIKE ?",
			pattern, pattern, pattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	return query
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
