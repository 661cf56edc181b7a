package repository

import (
	"context"

	"inventario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseRequestRepository interface {
	Create(ctx context.Context, pr *model.PurchaseRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error)
	FindByIDWithQuotations(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error)
	List(ctx context.Context, status string, page, limit int) ([]model.PurchaseRequest, int64, error)
	Update(ctx context.Context, pr *model.PurchaseRequest) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error
}

type QuotationRepository interface {
	Create(ctx context.Context, q *model.Quotation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quotation, error)
}

type purchaseRequestRepository struct {
	db *gorm.DB
}

func NewPurchaseRequestRepository(db *gorm.DB) PurchaseRequestRepository {
	return &purchaseRequestRepository{db: db}
}

func (r *purchaseRequestRepository) Create(ctx context.Context, pr *model.PurchaseRequest) error {
	return GetDB(ctx, r.db).Omit("Quotations").Create(pr).Error
}

func (r *purchaseRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	var pr model.PurchaseRequest
	if err := GetDB(ctx, r.db).First(&pr, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &pr, nil
}

func (r *purchaseRequestRepository) FindByIDWithQuotations(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	var pr model.PurchaseRequest
	err := GetDB(ctx, r.db).
		Preload("Quotations", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&pr, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &pr, nil
}

func (r *purchaseRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	var pr model.PurchaseRequest
	if err := forUpdate(GetDB(ctx, r.db)).Where("id = ?", id).First(&pr).Error; err != nil {
		return nil, translate(err)
	}
	return &pr, nil
}

func (r *purchaseRequestRepository) List(ctx context.Context, status string, page, limit int) ([]model.PurchaseRequest, int64, error) {
	var requests []model.PurchaseRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.PurchaseRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetchQuery := db.Preload("Quotations")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offsetOf(page, limit)).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// Update saves the request row only; quotations are written through QuotationRepository.
func (r *purchaseRequestRepository) Update(ctx context.Context, pr *model.PurchaseRequest) error {
	return GetDB(ctx, r.db).Omit("Quotations").Save(pr).Error
}

func (r *purchaseRequestRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	res := GetDB(ctx, r.db).Model(&model.PurchaseRequest{}).Where("id = ?", id).Update("quotation_notes", notes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

type quotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) QuotationRepository {
	return &quotationRepository{db: db}
}

func (r *quotationRepository) Create(ctx context.Context, q *model.Quotation) error {
	return GetDB(ctx, r.db).Create(q).Error
}

func (r *quotationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Quotation, error) {
	var q model.Quotation
	if err := GetDB(ctx, r.db).First(&q, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &q, nil
}
