package model

import (
	"time"

	"inventario/internal/errs"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audited entity types
const (
	EntityInternalRequest = "internal_request"
	EntityPurchaseRequest = "purchase_request"
	EntityMaterial        = "material"
	EntityToner           = "toner"
	EntityUser            = "user"
)

// Audit actions
const (
	ActionCreated        = "created"
	ActionDeleted        = "deleted"
	ActionStatusChanged  = "status_changed"
	ActionPurchased      = "purchased"
	ActionStockIncreased = "stock_increased"
	ActionRoleChanged    = "role_changed"
)

// AuditRecord is an append-only entry describing who changed what.
// Before and After hold only the fields relevant to the action.
type AuditRecord struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EntityType  string         `gorm:"type:varchar(50);not null;index:idx_audit_entity" json:"entity_type"`
	EntityID    string         `gorm:"type:varchar(50);not null;index:idx_audit_entity" json:"entity_id"`
	Action      string         `gorm:"type:varchar(50);not null;index" json:"action"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Before      datatypes.JSON `gorm:"type:jsonb" json:"before,omitempty"`
	After       datatypes.JSON `gorm:"type:jsonb" json:"after,omitempty"`
	ActorID     *uuid.UUID     `gorm:"type:uuid;index" json:"actor_id"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

// BeforeUpdate rejects any attempt to rewrite an audit record.
func (*AuditRecord) BeforeUpdate(*gorm.DB) error {
	return errs.ErrImmutable
}

// BeforeDelete rejects any attempt to remove an audit record.
func (*AuditRecord) BeforeDelete(*gorm.DB) error {
	return errs.ErrImmutable
}
