package service

import (
	"fmt"

	"inventario/internal/errs"
	"inventario/internal/model"
	"inventario/internal/rbac"

	"github.com/google/uuid"
)

// authorize is the first step of every core operation.
func authorize(actor model.Actor, c rbac.Capability) error {
	if actor.ID == uuid.Nil {
		return fmt.Errorf("%w: no authenticated actor", errs.ErrUnauthorized)
	}
	if !rbac.Allowed(actor.Role, c) {
		return fmt.Errorf("%w: role %q lacks %s", errs.ErrUnauthorized, actor.Role, c)
	}
	return nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func pageDefaults(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return page, limit
}
