package handler

import (
	"net/http"

	"inventario/internal/rbac"
	"inventario/pkg/response"

	"github.com/gin-gonic/gin"
)

// RoleHandler exposes the static role/capability matrix.
type RoleHandler struct{}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/roles", h.ListRoles)
}

type roleView struct {
	Role         rbac.Role         `json:"role"`
	Capabilities []rbac.Capability `json:"capabilities"`
}

// ListRoles
// @Summary      List roles and their capabilities
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]handler.roleView}
// @Router       /api/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	m := rbac.Matrix()
	out := make([]roleView, 0, len(rbac.AllRoles))
	for _, r := range rbac.AllRoles {
		out = append(out, roleView{Role: r, Capabilities: m[r]})
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, out))
}
