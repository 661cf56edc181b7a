package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseRequestStatus values
const (
	PurchaseStatusEmAndamento       = "EM_ANDAMENTO"
	PurchaseStatusAguardandoEntrega = "AGUARDANDO_ENTREGA"
	PurchaseStatusComprado          = "COMPRADO"
	PurchaseStatusConcluido         = "CONCLUIDO"
)

// ValidPurchaseStatus reports whether s is one of the four purchase request states.
func ValidPurchaseStatus(s string) bool {
	switch s {
	case PurchaseStatusEmAndamento, PurchaseStatusAguardandoEntrega, PurchaseStatusComprado, PurchaseStatusConcluido:
		return true
	}
	return false
}

// PurchaseRequest tracks the need to buy goods or services from a supplier.
// Receipt fields are only meaningful while Status is CONCLUIDO.
type PurchaseRequest struct {
	ID                  uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title               string      `gorm:"type:varchar(255);not null" json:"title"`
	Description         string      `gorm:"type:text" json:"description"`
	Status              string      `gorm:"type:varchar(30);not null;default:'EM_ANDAMENTO';index" json:"status"`
	RequesterID         uuid.UUID   `gorm:"type:uuid;not null;index" json:"requester_id"`
	SelectedQuotationID *uuid.UUID  `gorm:"type:uuid" json:"selected_quotation_id"`
	QuotationNotes      string      `gorm:"type:text" json:"quotation_notes"`
	ReceivedBy          *string     `gorm:"type:varchar(255)" json:"received_by"`
	ReceivedAt          *time.Time  `json:"received_at"`
	InvoiceNumber       *string     `gorm:"type:varchar(100)" json:"invoice_number"`
	Quotations          []Quotation `gorm:"foreignKey:PurchaseRequestID;constraint:OnDelete:CASCADE" json:"quotations,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// ClearReceipt drops the receipt metadata.
func (p *PurchaseRequest) ClearReceipt() {
	p.ReceivedBy = nil
	p.ReceivedAt = nil
	p.InvoiceNumber = nil
}

// Quotation is a supplier's priced offer, owned by exactly one PurchaseRequest.
type Quotation struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseRequestID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_request_id"`
	SupplierName       string          `gorm:"type:varchar(255);not null" json:"supplier_name"`
	SupplierTaxID      *string         `gorm:"type:varchar(30)" json:"supplier_tax_id"`
	ProductDescription string          `gorm:"type:text;not null" json:"product_description"`
	UnitValue          decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_value"`
	Quantity           int             `gorm:"type:int;not null" json:"quantity"`
	DeliveryDeadline   *time.Time      `gorm:"type:date" json:"delivery_deadline"`
	CreatedAt          time.Time       `json:"created_at"`
}

// Total is unit value times quantity.
func (q *Quotation) Total() decimal.Decimal {
	return q.UnitValue.Mul(decimal.NewFromInt(int64(q.Quantity)))
}
