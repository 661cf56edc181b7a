package model

import (
	"time"

	"github.com/google/uuid"
)

// InternalRequestStatus values, in lifecycle order
const (
	InternalStatusAguardando = "AGUARDANDO"
	InternalStatusEnviado    = "ENVIADO"
	InternalStatusRecebido   = "RECEBIDO"
)

// NextInternalStatus returns the only status reachable from current.
func NextInternalStatus(current string) (string, bool) {
	switch current {
	case InternalStatusAguardando:
		return InternalStatusEnviado, true
	case InternalStatusEnviado:
		return InternalStatusRecebido, true
	default:
		return "", false
	}
}

// InternalRequest asks for stocked material or a toner to be issued internally.
// Category, LocationName, PrinterName and Color are frozen at creation time.
type InternalRequest struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductType  string     `gorm:"type:varchar(20);not null;index" json:"product_type"` // MATERIAL, TONER
	ProductID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	Category     string     `gorm:"type:varchar(100);not null" json:"category"`
	Quantity     int        `gorm:"type:int;not null" json:"quantity"`
	Status       string     `gorm:"type:varchar(20);not null;default:'AGUARDANDO';index" json:"status"`
	RequesterID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"requester_id"`
	LocationName string     `gorm:"type:varchar(255)" json:"location_name"`
	PrinterName  string     `gorm:"type:varchar(255)" json:"printer_name"`
	Color        string     `gorm:"type:varchar(50)" json:"color"`
	ShippedBy    *uuid.UUID `gorm:"type:uuid" json:"shipped_by"`
	ShippedAt    *time.Time `json:"shipped_at"`
	ReceivedBy   *uuid.UUID `gorm:"type:uuid" json:"received_by"`
	ReceivedAt   *time.Time `json:"received_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
