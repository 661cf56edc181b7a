package model

import (
	"inventario/internal/rbac"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a core operation.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role rbac.Role `json:"role"`
}

// Can reports whether the actor's role grants capability.
func (a Actor) Can(c rbac.Capability) bool {
	return a.ID != uuid.Nil && rbac.Allowed(a.Role, c)
}
