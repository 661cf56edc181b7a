package handler

import (
	"net/http"

	"inventario/internal/service"
	"inventario/pkg/response"

	"github.com/gin-gonic/gin"
)

type InternalRequestHandler struct {
	internalRequestService service.InternalRequestService
}

func NewInternalRequestHandler(internalRequestService service.InternalRequestService) *InternalRequestHandler {
	return &InternalRequestHandler{internalRequestService: internalRequestService}
}

func (h *InternalRequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/internal-requests")
	{
		requests.GET("", h.ListInternalRequests)
		requests.GET("/:id", h.GetInternalRequest)
		requests.POST("", h.CreateInternalRequest)
		requests.PUT("/:id/status", h.AdvanceInternalRequest)
	}
}

// ListInternalRequests returns every internal request, newest first
// @Summary      List internal requests
// @Description  Requests whose product was deleted report product_exists=false and status AGUARDANDO
// @Tags         internal-requests
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.InternalRequestView}
// @Router       /api/internal-requests [get]
func (h *InternalRequestHandler) ListInternalRequests(c *gin.Context) {
	items, err := h.internalRequestService.List(c.Request.Context(), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// GetInternalRequest
// @Summary      Get an internal request
// @Tags         internal-requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.InternalRequestView}
// @Failure      404  {object}  response.Response
// @Router       /api/internal-requests/{id} [get]
func (h *InternalRequestHandler) GetInternalRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.internalRequestService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// CreateInternalRequest
// @Summary      Create an internal request
// @Tags         internal-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      service.CreateInternalRequestDTO  true  "Request"
// @Success      201   {object}  response.Response{data=model.InternalRequest}
// @Failure      404   {object}  response.Response
// @Router       /api/internal-requests [post]
func (h *InternalRequestHandler) CreateInternalRequest(c *gin.Context) {
	var req service.CreateInternalRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	created, err := h.internalRequestService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// AdvanceInternalRequest moves a request to its next status
// @Summary      Advance an internal request
// @Description  AGUARDANDO -> ENVIADO -> RECEBIDO, one step at a time
// @Tags         internal-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                             true  "Request ID"
// @Param        body  body      service.AdvanceInternalRequestDTO  true  "Target status"
// @Success      200   {object}  response.Response{data=model.InternalRequest}
// @Failure      409   {object}  response.Response
// @Router       /api/internal-requests/{id}/status [put]
func (h *InternalRequestHandler) AdvanceInternalRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.AdvanceInternalRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.internalRequestService.Advance(c.Request.Context(), actor(c), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}
