package handler

import (
	"net/http"

	"inventario/internal/service"
	"inventario/pkg/pagination"
	"inventario/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseRequestHandler struct {
	purchaseRequestService service.PurchaseRequestService
}

func NewPurchaseRequestHandler(purchaseRequestService service.PurchaseRequestService) *PurchaseRequestHandler {
	return &PurchaseRequestHandler{purchaseRequestService: purchaseRequestService}
}

func (h *PurchaseRequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchases := router.Group("/api/purchase-requests")
	{
		purchases.GET("", h.ListPurchaseRequests)
		purchases.GET("/:id", h.GetPurchaseRequest)
		purchases.POST("", h.CreatePurchaseRequest)
		purchases.POST("/:id/quotations", h.AddQuotation)
		purchases.PUT("/:id/status", h.SetStatus)
		purchases.PUT("/:id/purchase", h.MarkPurchased)
		purchases.PUT("/:id/notes", h.UpdateNotes)
	}
}

// ListPurchaseRequests
// @Summary      List purchase requests
// @Tags         purchase-requests
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "EM_ANDAMENTO, AGUARDANDO_ENTREGA, COMPRADO or CONCLUIDO"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=[]service.PurchaseRequestView}
// @Router       /api/purchase-requests [get]
func (h *PurchaseRequestHandler) ListPurchaseRequests(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.purchaseRequestService.List(c.Request.Context(), actor(c), service.PurchaseFilter{
		Status: c.Query("status"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(items, p.Meta(total)))
}

// GetPurchaseRequest
// @Summary      Get a purchase request with its quotations
// @Tags         purchase-requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Purchase request ID"
// @Success      200  {object}  response.Response{data=service.PurchaseRequestView}
// @Router       /api/purchase-requests/{id} [get]
func (h *PurchaseRequestHandler) GetPurchaseRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.purchaseRequestService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// CreatePurchaseRequest
// @Summary      Create a purchase request
// @Tags         purchase-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      service.CreatePurchaseRequestDTO  true  "Purchase request"
// @Success      201   {object}  response.Response{data=model.PurchaseRequest}
// @Router       /api/purchase-requests [post]
func (h *PurchaseRequestHandler) CreatePurchaseRequest(c *gin.Context) {
	var req service.CreatePurchaseRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.purchaseRequestService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// AddQuotation
// @Summary      Add a supplier quotation
// @Tags         purchase-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "Purchase request ID"
// @Param        body  body      service.AddQuotationDTO  true  "Quotation"
// @Success      201   {object}  response.Response{data=model.Quotation}
// @Router       /api/purchase-requests/{id}/quotations [post]
func (h *PurchaseRequestHandler) AddQuotation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.AddQuotationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	q, err := h.purchaseRequestService.AddQuotation(c.Request.Context(), actor(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, q))
}

// SetStatus
// @Summary      Set a purchase request's status
// @Description  Any status may be set from any other; receipt data is kept only on CONCLUIDO
// @Tags         purchase-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                        true  "Purchase request ID"
// @Param        body  body      service.SetPurchaseStatusDTO  true  "Status"
// @Success      200   {object}  response.Response{data=model.PurchaseRequest}
// @Router       /api/purchase-requests/{id}/status [put]
func (h *PurchaseRequestHandler) SetStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.SetPurchaseStatusDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.purchaseRequestService.SetStatus(c.Request.Context(), actor(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// MarkPurchased
// @Summary      Mark as purchased from one of its quotations
// @Tags         purchase-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Purchase request ID"
// @Param        body  body      service.MarkPurchasedDTO  true  "Selected quotation"
// @Success      200   {object}  response.Response{data=model.PurchaseRequest}
// @Failure      422   {object}  response.Response
// @Router       /api/purchase-requests/{id}/purchase [put]
func (h *PurchaseRequestHandler) MarkPurchased(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.MarkPurchasedDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.purchaseRequestService.MarkPurchased(c.Request.Context(), actor(c), id, req.QuotationID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// UpdateNotes
// @Summary      Replace quotation notes
// @Tags         purchase-requests
// @Security     BearerAuth
// @Accept       json
// @Param        id    path  string                  true  "Purchase request ID"
// @Param        body  body  service.UpdateNotesDTO  true  "Notes"
// @Success      204
// @Router       /api/purchase-requests/{id}/notes [put]
func (h *PurchaseRequestHandler) UpdateNotes(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateNotesDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.purchaseRequestService.UpdateNotes(c.Request.Context(), actor(c), id, req.Notes); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
