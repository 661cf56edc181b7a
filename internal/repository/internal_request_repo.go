package repository

import (
	"context"

	"inventario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InternalRequestRepository interface {
	Create(ctx context.Context, req *model.InternalRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InternalRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InternalRequest, error)
	List(ctx context.Context) ([]model.InternalRequest, error)
	Update(ctx context.Context, req *model.InternalRequest) error
}

type internalRequestRepository struct {
	db *gorm.DB
}

func NewInternalRequestRepository(db *gorm.DB) InternalRequestRepository {
	return &internalRequestRepository{db: db}
}

func (r *internalRequestRepository) Create(ctx context.Context, req *model.InternalRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *internalRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.InternalRequest, error) {
	var req model.InternalRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *internalRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InternalRequest, error) {
	var req model.InternalRequest
	if err := forUpdate(GetDB(ctx, r.db)).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *internalRequestRepository) List(ctx context.Context) ([]model.InternalRequest, error) {
	var requests []model.InternalRequest
	err := GetDB(ctx, r.db).Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *internalRequestRepository) Update(ctx context.Context, req *model.InternalRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}
