package repository

import (
	"context"

	"inventario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaterialRepository interface {
	Create(ctx context.Context, material *model.Material) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Material, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Material, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context, page, limit int, search string) ([]model.Material, int64, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error
}

type materialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) Create(ctx context.Context, material *model.Material) error {
	return translate(GetDB(ctx, r.db).Create(material).Error)
}

// Delete is a soft delete; requests referencing the material keep their snapshot.
func (r *materialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Material{}).Error
}

func (r *materialRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	var material model.Material
	if err := GetDB(ctx, r.db).First(&material, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &material, nil
}

func (r *materialRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	var material model.Material
	if err := forUpdate(GetDB(ctx, r.db)).Where("id = ?", id).First(&material).Error; err != nil {
		return nil, translate(err)
	}
	return &material, nil
}

func (r *materialRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Material, error) {
	var materials []model.Material
	if len(ids) == 0 {
		return materials, nil
	}
	err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&materials).Error
	return materials, err
}

func (r *materialRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Material{}).Where("LOWER(name) = LOWER(?)", name).Count(&n).Error
	return n > 0, err
}

func (r *materialRepository) List(ctx context.Context, page, limit int, search string) ([]model.Material, int64, error) {
	var materials []model.Material
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Material{})
	if search != "" {
		db = db.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("name asc").Offset(offsetOf(page, limit)).Limit(limit).Find(&materials).Error; err != nil {
		return nil, 0, err
	}

	return materials, total, nil
}

func (r *materialRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	return GetDB(ctx, r.db).Model(&model.Material{}).Where("id = ?", id).Update("current_stock", stock).Error
}
