package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification kinds
const (
	NotificationLowStock        = "low_stock"
	NotificationPendingRequest  = "pending_request"
	NotificationPendingPurchase = "pending_purchase"
	NotificationSystem          = "system"
)

// Notification priorities
const (
	PriorityLow      = "low"
	PriorityNormal   = "normal"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// ValidNotificationKind reports whether k is a known kind.
func ValidNotificationKind(k string) bool {
	switch k {
	case NotificationLowStock, NotificationPendingRequest, NotificationPendingPurchase, NotificationSystem:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Notification is a per-user feed entry. Once read it stays read.
type Notification struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecipientID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_notification_recipient" json:"recipient_id"`
	Kind            string     `gorm:"type:varchar(30);not null" json:"kind"`
	Title           string     `gorm:"type:varchar(255);not null" json:"title"`
	Message         string     `gorm:"type:text;not null" json:"message"`
	Link            *string    `gorm:"type:varchar(500)" json:"link,omitempty"`
	Priority        string     `gorm:"type:varchar(20);not null;default:'normal'" json:"priority"`
	RelatedEntityID *string    `gorm:"type:varchar(50)" json:"related_entity_id,omitempty"`
	IsRead          bool       `gorm:"not null;default:false;index:idx_notification_recipient" json:"is_read"`
	ReadAt          *time.Time `json:"read_at"`
	CreatedAt       time.Time  `json:"created_at"`
}
