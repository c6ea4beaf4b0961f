package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/pharmapos/backend/internal/application/trade"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/interfaces/http/middleware"
)

// PurchaseOrderService is the lifecycle the handler drives
type PurchaseOrderService interface {
	Create(ctx context.Context, tenantID, actorID uuid.UUID, req tradeapp.CreatePurchaseOrderRequest) (*tradeapp.PurchaseOrderResponse, error)
	Update(ctx context.Context, tenantID, actorID, orderID uuid.UUID, req tradeapp.UpdatePurchaseOrderRequest) (*tradeapp.PurchaseOrderResponse, error)
	Delete(ctx context.Context, tenantID, orderID uuid.UUID) error
	Rename(ctx context.Context, tenantID, orderID uuid.UUID, req tradeapp.RenamePurchaseOrderRequest) (*tradeapp.PurchaseOrderResponse, error)
	GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*tradeapp.PurchaseOrderResponse, error)
	GetByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*tradeapp.PurchaseOrderResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter tradeapp.PurchaseOrderListFilter) ([]tradeapp.PurchaseOrderListItemResponse, int64, error)
}

// PurchaseOrderHandler serves /purchase-orders
type PurchaseOrderHandler struct {
	BaseHandler
	service PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(service PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/purchase-orders")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/number/:order_number", h.GetByOrderNumber)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/rename", h.Rename)
}

type lineItemRequest struct {
	ProductCode     string `json:"product_code"`
	ProductName     string `json:"product_name"`
	Quantity        Number `json:"quantity"`
	TotalCost       Number `json:"total_cost"`
	UnitPrice       Number `json:"unit_price"`
	BatchNumber     string `json:"batch_number"`
	ExpiryDate      *Date  `json:"expiry_date"`
	PackageQuantity Number `json:"package_quantity"`
	BoxQuantity     Number `json:"box_quantity"`
}

func (l lineItemRequest) toInput() tradeapp.LineItemInput {
	return tradeapp.LineItemInput{
		ProductCode:     l.ProductCode,
		ProductName:     l.ProductName,
		Quantity:        string(l.Quantity),
		TotalCost:       string(l.TotalCost),
		UnitPrice:       string(l.UnitPrice),
		BatchNumber:     l.BatchNumber,
		ExpiryDate:      timePtr(l.ExpiryDate),
		PackageQuantity: string(l.PackageQuantity),
		BoxQuantity:     string(l.BoxQuantity),
	}
}

// toInputs keeps nil distinct from empty: nil leaves lines alone on update
func toInputs(items []lineItemRequest) []tradeapp.LineItemInput {
	if items == nil {
		return nil
	}
	out := make([]tradeapp.LineItemInput, len(items))
	for i, item := range items {
		out[i] = item.toInput()
	}
	return out
}

type createPurchaseOrderRequest struct {
	POID            string            `json:"poid"`
	OrderNumber     string            `json:"order_number"`
	SupplierID      *uuid.UUID        `json:"supplier_id"`
	SupplierName    string            `json:"supplier_name"`
	BillReference   string            `json:"bill_reference"`
	BillDate        *Date             `json:"bill_date"`
	Status          string            `json:"status"`
	PaymentStatus   string            `json:"payment_status"`
	TransactionType string            `json:"transaction_type"`
	Remark          string            `json:"remark"`
	Items           []lineItemRequest `json:"items"`
}

type updatePurchaseOrderRequest struct {
	Version         *int              `json:"version"`
	SupplierID      *uuid.UUID        `json:"supplier_id"`
	SupplierName    *string           `json:"supplier_name"`
	BillReference   *string           `json:"bill_reference"`
	BillDate        *Date             `json:"bill_date"`
	Status          *string           `json:"status"`
	PaymentStatus   *string           `json:"payment_status"`
	TransactionType *string           `json:"transaction_type"`
	Remark          *string           `json:"remark"`
	Items           []lineItemRequest `json:"items"`
}

type listPurchaseOrdersQuery struct {
	Search        string `form:"search"`
	Status        string `form:"status"`
	PaymentStatus string `form:"payment_status"`
	SupplierID    string `form:"supplier_id"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req createPurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.service.Create(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), tradeapp.CreatePurchaseOrderRequest{
		POID:            req.POID,
		OrderNumber:     req.OrderNumber,
		SupplierID:      req.SupplierID,
		SupplierName:    req.SupplierName,
		BillReference:   req.BillReference,
		BillDate:        timePtr(req.BillDate),
		Status:          req.Status,
		PaymentStatus:   req.PaymentStatus,
		TransactionType: req.TransactionType,
		Remark:          req.Remark,
		Items:           toInputs(req.Items),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Update handles PUT /purchase-orders/:id
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req updatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.service.Update(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), id, tradeapp.UpdatePurchaseOrderRequest{
		Version:         req.Version,
		SupplierID:      req.SupplierID,
		SupplierName:    req.SupplierName,
		BillReference:   req.BillReference,
		BillDate:        timePtr(req.BillDate),
		Status:          req.Status,
		PaymentStatus:   req.PaymentStatus,
		TransactionType: req.TransactionType,
		Remark:          req.Remark,
		Items:           toInputs(req.Items),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete handles DELETE /purchase-orders/:id
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Rename handles POST /purchase-orders/:id/rename
func (h *PurchaseOrderHandler) Rename(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.RenamePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.service.Rename(c.Request.Context(), middleware.TenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetByID handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.service.GetByID(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetByOrderNumber handles GET /purchase-orders/number/:order_number
func (h *PurchaseOrderHandler) GetByOrderNumber(c *gin.Context) {
	order, err := h.service.GetByOrderNumber(c.Request.Context(), middleware.TenantID(c), strings.TrimSpace(c.Param("order_number")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var q listPurchaseOrdersQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter := tradeapp.PurchaseOrderListFilter{
		Search:        q.Search,
		Status:        q.Status,
		PaymentStatus: q.PaymentStatus,
		OrderBy:       q.OrderBy,
		OrderDir:      q.OrderDir,
	}
	if q.SupplierID != "" {
		supplierID, err := uuid.Parse(q.SupplierID)
		if err != nil {
			h.Error(c, http.StatusBadRequest, shared.CodeValidation, "must be a UUID", "supplier_id")
			return
		}
		filter.SupplierID = &supplierID
	}
	paging := shared.Filter{Page: q.Page, PageSize: q.PageSize}.Normalize()
	filter.Page, filter.PageSize = paging.Page, paging.PageSize

	items, total, err := h.service.List(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}
