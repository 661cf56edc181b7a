package repository

import (
	"context"

	"inventario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TonerRepository interface {
	Create(ctx context.Context, toner *model.Toner) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Toner, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Toner, error)
	ExistsByModel(ctx context.Context, name string) (bool, error)
	List(ctx context.Context, page, limit int) ([]model.Toner, int64, error)
}

type tonerRepository struct {
	db *gorm.DB
}

func NewTonerRepository(db *gorm.DB) TonerRepository {
	return &tonerRepository{db: db}
}

func (r *tonerRepository) Create(ctx context.Context, toner *model.Toner) error {
	return translate(GetDB(ctx, r.db).Create(toner).Error)
}

func (r *tonerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Toner{}).Error
}

func (r *tonerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Toner, error) {
	var toner model.Toner
	if err := GetDB(ctx, r.db).First(&toner, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &toner, nil
}

func (r *tonerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Toner, error) {
	var toners []model.Toner
	if len(ids) == 0 {
		return toners, nil
	}
	err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&toners).Error
	return toners, err
}

func (r *tonerRepository) ExistsByModel(ctx context.Context, name string) (bool, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Toner{}).Where("LOWER(model) = LOWER(?)", name).Count(&n).Error
	return n > 0, err
}

func (r *tonerRepository) List(ctx context.Context, page, limit int) ([]model.Toner, int64, error) {
	var toners []model.Toner
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Toner{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("model asc").Offset(offsetOf(page, limit)).Limit(limit).Find(&toners).Error; err != nil {
		return nil, 0, err
	}
	return toners, total, nil
}
