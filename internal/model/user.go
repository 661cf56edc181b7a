package model

import (
	"time"

	"inventario/internal/rbac"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account allowed to sign in
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username  string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	Password  string         `gorm:"type:varchar(255);not null" json:"-"`
	Role      rbac.Role      `gorm:"type:varchar(30);not null" json:"role"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Actor returns the identity used when this user calls a core operation.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
