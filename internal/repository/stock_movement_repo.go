package repository

import (
	"context"

	"inventario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	Create(ctx context.Context, m *model.StockMovement) error
	ListByMaterial(ctx context.Context, materialID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error)
}

type stockMovementRepository struct {
	db *gorm.DB
}

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) Create(ctx context.Context, m *model.StockMovement) error {
	return GetDB(ctx, r.db).Create(m).Error
}

// ListByMaterial returns the movement ledger of one material, newest first.
func (r *stockMovementRepository) ListByMaterial(ctx context.Context, materialID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error) {
	var items []model.StockMovement
	var total int64

	query := GetDB(ctx, r.db).Model(&model.StockMovement{}).Where("material_id = ?", materialID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(offsetOf(page, limit)).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
