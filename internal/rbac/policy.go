// Package rbac holds the static role/capability table that gates every mutation and route.
package rbac

import "sort"

// Role is one of the fixed organisation roles.
type Role string

const (
	RoleViewer        Role = "VIEWER"
	RoleOperator      Role = "OPERATOR"
	RolePurchaser     Role = "PURCHASER"
	RoleAuditor       Role = "AUDITOR"
	RoleAdministrator Role = "ADMINISTRATOR"
)

// Capability names a single permission checked by services and routes.
type Capability string

const (
	CapViewInventory           Capability = "view-inventory"
	CapMutateInventory         Capability = "mutate-inventory"
	CapAdjustStock             Capability = "adjust-stock"
	CapViewInternalRequests    Capability = "view-internal-requests"
	CapCreateInternalRequest   Capability = "create-internal-request"
	CapAdvanceInternalRequest  Capability = "advance-internal-request"
	CapViewPurchaseRequests    Capability = "view-purchase-requests"
	CapManagePurchaseRequests  Capability = "manage-purchase-requests"
	CapFinalizePurchaseRequest Capability = "finalize-purchase-request"
	CapViewAuditLog            Capability = "view-audit-log"
	CapManageUsers             Capability = "manage-users"
	CapUseNotifications        Capability = "use-notifications"
)

// AllRoles lists every known role.
var AllRoles = []Role{RoleViewer, RoleOperator, RolePurchaser, RoleAuditor, RoleAdministrator}

// AllCapabilities lists every known capability.
var AllCapabilities = []Capability{
	CapViewInventory,
	CapMutateInventory,
	CapAdjustStock,
	CapViewInternalRequests,
	CapCreateInternalRequest,
	CapAdvanceInternalRequest,
	CapViewPurchaseRequests,
	CapManagePurchaseRequests,
	CapFinalizePurchaseRequest,
	CapViewAuditLog,
	CapManageUsers,
	CapUseNotifications,
}

type capSet map[Capability]struct{}

func setOf(caps ...Capability) capSet {
	s := make(capSet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// grants is the single source of truth for both capability and route checks.
var grants = map[Role]capSet{
	RoleAdministrator: setOf(AllCapabilities...),
	RoleOperator: setOf(
		CapViewInventory,
		CapMutateInventory,
		CapAdjustStock,
		CapViewInternalRequests,
		CapCreateInternalRequest,
		CapAdvanceInternalRequest,
		CapViewPurchaseRequests,
		CapManagePurchaseRequests,
		CapUseNotifications,
	),
	RolePurchaser: setOf(
		CapViewInventory,
		CapViewPurchaseRequests,
		CapManagePurchaseRequests,
		CapFinalizePurchaseRequest,
		CapUseNotifications,
	),
	RoleAuditor: setOf(
		CapViewAuditLog,
		CapUseNotifications,
	),
	RoleViewer: setOf(
		CapViewInventory,
		CapViewInternalRequests,
		CapUseNotifications,
	),
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := grants[r]
	return ok
}

// Valid reports whether c is a known capability.
func (c Capability) Valid() bool {
	_, ok := grants[RoleAdministrator][c]
	return ok
}

// ParseRole converts a raw string into a Role, reporting whether it is known.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Allowed reports whether role holds capability. Unknown roles and capabilities are denied.
func Allowed(role Role, capability Capability) bool {
	caps, ok := grants[role]
	if !ok {
		return false
	}
	_, ok = caps[capability]
	return ok
}

// AllowedAny reports whether role holds at least one of caps.
func AllowedAny(role Role, caps ...Capability) bool {
	for _, c := range caps {
		if Allowed(role, c) {
			return true
		}
	}
	return false
}

// AllowedAll reports whether role holds every one of caps. An empty list is denied.
func AllowedAll(role Role, caps ...Capability) bool {
	if len(caps) == 0 {
		return false
	}
	for _, c := range caps {
		if !Allowed(role, c) {
			return false
		}
	}
	return true
}

// Capabilities returns the sorted capabilities granted to role.
func Capabilities(role Role) []Capability {
	caps := grants[role]
	out := make([]Capability, 0, len(caps))
	for c := range caps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Matrix returns the full grant table keyed by role.
func Matrix() map[Role][]Capability {
	m := make(map[Role][]Capability, len(AllRoles))
	for _, r := range AllRoles {
		m[r] = Capabilities(r)
	}
	return m
}
