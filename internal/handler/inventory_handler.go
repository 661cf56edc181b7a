package handler

import (
	"net/http"

	"inventario/internal/service"
	"inventario/pkg/pagination"
	"inventario/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	catalogService service.CatalogService
	stockService   service.StockService
}

func NewInventoryHandler(catalogService service.CatalogService, stockService service.StockService) *InventoryHandler {
	return &InventoryHandler{catalogService: catalogService, stockService: stockService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	materials := router.Group("/api/materials")
	{
		materials.GET("", h.ListMaterials)
		materials.POST("", h.CreateMaterial)
		materials.DELETE("/:id", h.DeleteMaterial)
		materials.POST("/:id/stock", h.IncreaseStock)
		materials.GET("/:id/movements", h.ListStockMovements)
	}

	toners := router.Group("/api/toners")
	{
		toners.GET("", h.ListToners)
		toners.POST("", h.CreateToner)
		toners.DELETE("/:id", h.DeleteToner)
	}
}

// ListMaterials
// @Summary      List materials
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Param        search  query     string  false  "Name filter"
// @Success      200     {object}  response.Response{data=[]service.MaterialView}
// @Router       /api/materials [get]
func (h *InventoryHandler) ListMaterials(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.catalogService.ListMaterials(c.Request.Context(), actor(c), p.Page, p.Limit, c.Query("search"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(items, p.Meta(total)))
}

// CreateMaterial
// @Summary      Create a material
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      service.CreateMaterialDTO  true  "Material"
// @Success      201   {object}  response.Response{data=model.Material}
// @Failure      409   {object}  response.Response
// @Router       /api/materials [post]
func (h *InventoryHandler) CreateMaterial(c *gin.Context) {
	var req service.CreateMaterialDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.catalogService.CreateMaterial(c.Request.Context(), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, m))
}

// DeleteMaterial
// @Summary      Delete a material
// @Tags         inventory
// @Security     BearerAuth
// @Param        id   path  string  true  "Material ID"
// @Success      204
// @Router       /api/materials/{id} [delete]
func (h *InventoryHandler) DeleteMaterial(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.catalogService.DeleteMaterial(c.Request.Context(), actor(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// IncreaseStock
// @Summary      Increase a material's stock
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Material ID"
// @Param        body  body      service.IncreaseStockDTO  true  "Amount"
// @Success      200   {object}  response.Response{data=service.StockResult}
// @Router       /api/materials/{id}/stock [post]
func (h *InventoryHandler) IncreaseStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.IncreaseStockDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.stockService.Increase(c.Request.Context(), actor(c), id, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ListStockMovements
// @Summary      Stock movement history of a material
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      string  true   "Material ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=[]model.StockMovement}
// @Failure      404    {object}  response.Response
// @Router       /api/materials/{id}/movements [get]
func (h *InventoryHandler) ListStockMovements(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)
	items, total, err := h.stockService.History(c.Request.Context(), actor(c), id, p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(items, p.Meta(total)))
}

// ListToners
// @Summary      List toners
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=[]model.Toner}
// @Router       /api/toners [get]
func (h *InventoryHandler) ListToners(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.catalogService.ListToners(c.Request.Context(), actor(c), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(items, p.Meta(total)))
}

// CreateToner
// @Summary      Create a toner
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      service.CreateTonerDTO  true  "Toner"
// @Success      201   {object}  response.Response{data=model.Toner}
// @Router       /api/toners [post]
func (h *InventoryHandler) CreateToner(c *gin.Context) {
	var req service.CreateTonerDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.catalogService.CreateToner(c.Request.Context(), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, t))
}

// DeleteToner
// @Summary      Delete a toner
// @Tags         inventory
// @Security     BearerAuth
// @Param        id   path  string  true  "Toner ID"
// @Success      204
// @Router       /api/toners/{id} [delete]
func (h *InventoryHandler) DeleteToner(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.catalogService.DeleteToner(c.Request.Context(), actor(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
