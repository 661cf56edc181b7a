package rbac

// routes maps "METHOD /full/path" (gin FullPath syntax) to the capability it requires.
var routes = map[string]Capability{
	"GET /me":        CapUseNotifications,
	"GET /api/roles": CapManageUsers,

	"GET /api/users":          CapManageUsers,
	"POST /api/users":         CapManageUsers,
	"PUT /api/users/:id/role": CapManageUsers,

	"GET /api/materials":               CapViewInventory,
	"POST /api/materials":              CapMutateInventory,
	"DELETE /api/materials/:id":        CapMutateInventory,
	"POST /api/materials/:id/stock":    CapAdjustStock,
	"GET /api/materials/:id/movements": CapViewInventory,
	"GET /api/toners":                  CapViewInventory,
	"POST /api/toners":                 CapMutateInventory,
	"DELETE /api/toners/:id":           CapMutateInventory,

	"GET /api/internal-requests":            CapViewInternalRequests,
	"GET /api/internal-requests/:id":        CapViewInternalRequests,
	"POST /api/internal-requests":           CapCreateInternalRequest,
	"PUT /api/internal-requests/:id/status": CapAdvanceInternalRequest,

	"GET /api/purchase-requests":                 CapViewPurchaseRequests,
	"GET /api/purchase-requests/:id":             CapViewPurchaseRequests,
	"POST /api/purchase-requests":                CapManagePurchaseRequests,
	"POST /api/purchase-requests/:id/quotations": CapManagePurchaseRequests,
	"PUT /api/purchase-requests/:id/notes":       CapManagePurchaseRequests,
	"PUT /api/purchase-requests/:id/status":      CapFinalizePurchaseRequest,
	"PUT /api/purchase-requests/:id/purchase":    CapFinalizePurchaseRequest,

	"GET /api/notifications":              CapUseNotifications,
	"GET /api/notifications/unread-count": CapUseNotifications,
	"PUT /api/notifications/:id/read":     CapUseNotifications,
	"PUT /api/notifications/read-all":     CapUseNotifications,

	"GET /api/audit-logs": CapViewAuditLog,
	"GET /api/statistics": CapViewInventory,
}

// RouteCapability returns the capability guarding a route, if the route is registered.
func RouteCapability(method, path string) (Capability, bool) {
	c, ok := routes[method+" "+path]
	return c, ok
}

// AllowedRoute reports whether role may call the route. Unregistered routes are denied.
func AllowedRoute(role Role, method, path string) bool {
	c, ok := RouteCapability(method, path)
	if !ok {
		return false
	}
	return Allowed(role, c)
}
