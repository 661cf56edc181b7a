package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductType enum constants
const (
	ProductTypeMaterial = "MATERIAL"
	ProductTypeToner    = "TONER"
)

// TonerCategory is the category frozen on every toner request.
const TonerCategory = "Toner"

// Material is a stocked consumable (cables, peripherals, spare parts...)
type Material struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	Category     string         `gorm:"type:varchar(100);not null" json:"category"`
	CurrentStock *int           `gorm:"type:int" json:"current_stock"` // nil means never counted
	MinimumStock int            `gorm:"type:int;not null;default:0" json:"minimum_stock"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Stock returns the on-hand quantity, treating an absent count as zero.
func (m *Material) Stock() int {
	if m.CurrentStock == nil {
		return 0
	}
	return *m.CurrentStock
}

// Toner is a printer cartridge
type Toner struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Model       string         `gorm:"type:varchar(255);not null" json:"model"`
	Color       string         `gorm:"type:varchar(50)" json:"color"`
	PrinterName string         `gorm:"type:varchar(255)" json:"printer_name"` // snapshot of the compatible printer
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// StockMovement records every manual stock change
type StockMovement struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MaterialID  uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Quantity    int       `gorm:"type:int;not null" json:"quantity"`
	StockBefore int       `gorm:"type:int;not null" json:"stock_before"`
	StockAfter  int       `gorm:"type:int;not null" json:"stock_after"`
	PerformedBy uuid.UUID `gorm:"type:uuid;not null" json:"performed_by"`
	CreatedAt   time.Time `json:"created_at"`
}
