package repository

import (
	"context"

	"inventario/internal/model"

	"gorm.io/gorm"
)

// AuditQuery filters the audit trail. Empty fields match everything.
type AuditQuery struct {
	EntityType string
	EntityID   string
	Page       int
	Limit      int
}

// AuditRepository only appends and reads; audit rows are never rewritten.
type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditRecord) error
	List(ctx context.Context, q AuditQuery) ([]model.AuditRecord, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *model.AuditRecord) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, q AuditQuery) ([]model.AuditRecord, int64, error) {
	var records []model.AuditRecord
	var total int64

	db := GetDB(ctx, r.db).Model(&model.AuditRecord{})
	if q.EntityType != "" {
		db = db.Where("entity_type = ?", q.EntityType)
	}
	if q.EntityID != "" {
		db = db.Where("entity_id = ?", q.EntityID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("created_at desc").Offset(offsetOf(q.Page, q.Limit)).Limit(q.Limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
