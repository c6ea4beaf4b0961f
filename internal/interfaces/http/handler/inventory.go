package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/pharmapos/backend/internal/application/inventory"
	"github.com/pharmapos/backend/internal/interfaces/http/middleware"
)

// InventoryLedger is the ledger surface exposed over HTTP
type InventoryLedger interface {
	ListForProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]inventoryapp.BatchResponse, error)
	RecordConsumption(ctx context.Context, tenantID, actorID uuid.UUID, req inventoryapp.RecordConsumptionRequest) (*inventoryapp.ConsumptionResponse, error)
}

// CostPreviewer prices a hypothetical outflow
type CostPreviewer interface {
	Simulate(ctx context.Context, tenantID uuid.UUID, req inventoryapp.CostPreviewRequest) (*inventoryapp.CostPreviewResponse, error)
}

// InventoryHandler serves /inventory
type InventoryHandler struct {
	BaseHandler
	ledger  InventoryLedger
	costing CostPreviewer
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledger InventoryLedger, costing CostPreviewer) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, costing: costing}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/inventory")
	g.GET("/products/:id/batches", h.ListBatches)
	g.POST("/cost-preview", h.CostPreview)
	g.POST("/consumptions", h.RecordConsumption)
}

// ListBatches handles GET /inventory/products/:id/batches
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	productID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	batches, err := h.ledger.ListForProduct(c.Request.Context(), middleware.TenantID(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// CostPreview handles POST /inventory/cost-preview
func (h *InventoryHandler) CostPreview(c *gin.Context) {
	var req inventoryapp.CostPreviewRequest
	if !h.BindJSON(c, &req) {
		return
	}
	preview, err := h.costing.Simulate(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// RecordConsumption handles POST /inventory/consumptions
func (h *InventoryHandler) RecordConsumption(c *gin.Context) {
	var req inventoryapp.RecordConsumptionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	out, err := h.ledger.RecordConsumption(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, out)
}
