package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventario/internal/errs"
	"inventario/internal/model"
	"inventario/internal/rbac"
	"inventario/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var minUnitValue = decimal.RequireFromString("0.01")

// --- DTOs ---

type CreatePurchaseRequestDTO struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type AddQuotationDTO struct {
	SupplierName       string          `json:"supplier_name" binding:"required"`
	SupplierTaxID      string          `json:"supplier_tax_id"`
	ProductDescription string          `json:"product_description" binding:"required"`
	UnitValue          decimal.Decimal `json:"unit_value" swaggertype:"string" example:"129.90"`
	Quantity           int             `json:"quantity" binding:"required,gt=0"`
	DeliveryDeadline   *time.Time      `json:"delivery_deadline"`
}

type SetPurchaseStatusDTO struct {
	Status        string `json:"status" binding:"required"`
	ReceivedBy    string `json:"received_by"`
	InvoiceNumber string `json:"invoice_number"`
}

type MarkPurchasedDTO struct {
	QuotationID uuid.UUID `json:"quotation_id" binding:"required"`
}

type UpdateNotesDTO struct {
	Notes string `json:"notes"`
}

type PurchaseFilter struct {
	Status string
	Page   int
	Limit  int
}

type QuotationView struct {
	model.Quotation
	Total    decimal.Decimal `json:"total" swaggertype:"string"`
	Selected bool            `json:"selected"`
}

type PurchaseRequestView struct {
	model.PurchaseRequest
	Quotations []QuotationView `json:"quotations"`
}

// --- Interface ---

type PurchaseRequestService interface {
	Create(ctx context.Context, actor model.Actor, req CreatePurchaseRequestDTO) (*model.PurchaseRequest, error)
	AddQuotation(ctx context.Context, actor model.Actor, id uuid.UUID, req AddQuotationDTO) (*model.Quotation, error)
	SetStatus(ctx context.Context, actor model.Actor, id uuid.UUID, req SetPurchaseStatusDTO) (*model.PurchaseRequest, error)
	MarkPurchased(ctx context.Context, actor model.Actor, id, quotationID uuid.UUID) (*model.PurchaseRequest, error)
	UpdateNotes(ctx context.Context, actor model.Actor, id uuid.UUID, notes string) error
	Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*PurchaseRequestView, error)
	List(ctx context.Context, actor model.Actor, filter PurchaseFilter) ([]PurchaseRequestView, int64, error)
}

type purchaseRequestService struct {
	txManager     repository.TransactionManager
	requests      repository.PurchaseRequestRepository
	quotations    repository.QuotationRepository
	audit         AuditService
	notifications NotificationService
}

func NewPurchaseRequestService(
	txManager repository.TransactionManager,
	requests repository.PurchaseRequestRepository,
	quotations repository.QuotationRepository,
	audit AuditService,
	notifications NotificationService,
) PurchaseRequestService {
	return &purchaseRequestService{
		txManager:     txManager,
		requests:      requests,
		quotations:    quotations,
		audit:         audit,
		notifications: notifications,
	}
}

// audit snapshots

type purchaseCreatedSnapshot struct {
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	RequesterID uuid.UUID `json:"requesterId"`
}

type purchaseStatusSnapshot struct {
	Status        string     `json:"status"`
	ReceivedBy    *string    `json:"receivedBy"`
	ReceivedAt    *time.Time `json:"receivedAt"`
	InvoiceNumber *string    `json:"invoiceNumber"`
}

func purchaseStatusOf(p *model.PurchaseRequest) purchaseStatusSnapshot {
	return purchaseStatusSnapshot{
		Status:        p.Status,
		ReceivedBy:    p.ReceivedBy,
		ReceivedAt:    p.ReceivedAt,
		InvoiceNumber: p.InvoiceNumber,
	}
}

type purchaseSelectionSnapshot struct {
	Status              string     `json:"status"`
	SelectedQuotationID *uuid.UUID `json:"selectedQuotationId"`
	SupplierName        string     `json:"supplierName,omitempty"`
}

// --- Implementation ---

func (s *purchaseRequestService) Create(ctx context.Context, actor model.Actor, req CreatePurchaseRequestDTO) (*model.PurchaseRequest, error) {
	if err := authorize(actor, rbac.CapManagePurchaseRequests); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrValidation)
	}

	var pr *model.PurchaseRequest
	var sent []*model.Notification
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		pr = &model.PurchaseRequest{
			Title:       title,
			Description: req.Description,
			Status:      model.PurchaseStatusEmAndamento,
			RequesterID: actor.ID,
		}
		if err := s.requests.Create(txCtx, pr); err != nil {
			return fmt.Errorf("failed to create purchase request: %w", err)
		}

		if _, err := s.audit.Record(txCtx, AuditEntry{
			EntityType:  model.EntityPurchaseRequest,
			EntityID:    pr.ID.String(),
			Action:      model.ActionCreated,
			Description: fmt.Sprintf("Purchase request created: %q", pr.Title),
			After:       purchaseCreatedSnapshot{Title: pr.Title, Status: pr.Status, RequesterID: pr.RequesterID},
			ActorID:     actor.ID,
		}); err != nil {
			return err
		}

		var err error
		sent, err = s.notifications.EmitToRoles(txCtx, []rbac.Role{rbac.RolePurchaser, rbac.RoleAdministrator}, NotificationInput{
			Kind:            model.NotificationPendingPurchase,
			Title:           "New purchase request",
			Message:         fmt.Sprintf("%q needs quotations", pr.Title),
			Link:            "/purchase-requests/" + pr.ID.String(),
			Priority:        model.PriorityHigh,
			RelatedEntityID: pr.ID.String(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(sent...)
	return pr, nil
}

// AddQuotation attaches a supplier offer. Quotations are not audited.
func (s *purchaseRequestService) AddQuotation(ctx context.Context, actor model.Actor, id uuid.UUID, req AddQuotationDTO) (*model.Quotation, error) {
	if err := authorize(actor, rbac.CapManagePurchaseRequests); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.SupplierName) == "" {
		return nil, fmt.Errorf("%w: supplier name is required", errs.ErrValidation)
	}
	if strings.TrimSpace(req.ProductDescription) == "" {
		return nil, fmt.Errorf("%w: product description is required", errs.ErrValidation)
	}
	if req.UnitValue.LessThan(minUnitValue) {
		return nil, fmt.Errorf("%w: unit value must be at least %s", errs.ErrValidation, minUnitValue)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", errs.ErrValidation)
	}

	var q *model.Quotation
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.requests.FindByID(txCtx, id); err != nil {
			return fmt.Errorf("purchase request %s: %w", id, err)
		}

		q = &model.Quotation{
			PurchaseRequestID:  id,
			SupplierName:       strings.TrimSpace(req.SupplierName),
			SupplierTaxID:      strPtr(strings.TrimSpace(req.SupplierTaxID)),
			ProductDescription: req.ProductDescription,
			UnitValue:          req.UnitValue,
			Quantity:           req.Quantity,
			DeliveryDeadline:   req.DeliveryDeadline,
		}
		if err := s.quotations.Create(txCtx, q); err != nil {
			return fmt.Errorf("failed to create quotation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// SetStatus applies any of the four statuses regardless of the current one.
// Receipt metadata survives only on CONCLUIDO.
func (s *purchaseRequestService) SetStatus(ctx context.Context, actor model.Actor, id uuid.UUID, req SetPurchaseStatusDTO) (*model.PurchaseRequest, error) {
	if err := authorize(actor, rbac.CapFinalizePurchaseRequest); err != nil {
		return nil, err
	}
	if !model.ValidPurchaseStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown purchase status %q", errs.ErrValidation, req.Status)
	}

	var pr *model.PurchaseRequest
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		pr, err = s.requests.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("purchase request %s: %w", id, err)
		}

		before := purchaseStatusOf(pr)
		pr.Status = req.Status
		if req.Status == model.PurchaseStatusConcluido {
			now := time.Now().UTC()
			rb := strings.TrimSpace(req.ReceivedBy)
			if rb != "" {
				pr.ReceivedBy = &rb
			}
			if inv := strings.TrimSpace(req.InvoiceNumber); inv != "" {
				pr.InvoiceNumber = &inv
			}
			if pr.ReceivedAt == nil || rb != "" {
				pr.ReceivedAt = &now
			}
		} else {
			pr.ClearReceipt()
		}

		if err := s.requests.Update(txCtx, pr); err != nil {
			return fmt.Errorf("failed to update purchase request: %w", err)
		}

		_, err = s.audit.Record(txCtx, AuditEntry{
			EntityType:  model.EntityPurchaseRequest,
			EntityID:    pr.ID.String(),
			Action:      model.ActionStatusChanged,
			Description: fmt.Sprintf("Purchase request %q status changed: %s -> %s", pr.Title, before.Status, pr.Status),
			Before:      before,
			After:       purchaseStatusOf(pr),
			ActorID:     actor.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return pr, nil
}

// MarkPurchased selects one of the request's own quotations and moves it to COMPRADO.
func (s *purchaseRequestService) MarkPurchased(ctx context.Context, actor model.Actor, id, quotationID uuid.UUID) (*model.PurchaseRequest, error) {
	if err := authorize(actor, rbac.CapFinalizePurchaseRequest); err != nil {
		return nil, err
	}

	var pr *model.PurchaseRequest
	var sent *model.Notification
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		pr, err = s.requests.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("purchase request %s: %w", id, err)
		}

		q, err := s.quotations.FindByID(txCtx, quotationID)
		if errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("%w: quotation %s does not exist", errs.ErrInvalidReference, quotationID)
		}
		if err != nil {
			return fmt.Errorf("failed to load quotation: %w", err)
		}
		if q.PurchaseRequestID != pr.ID {
			return fmt.Errorf("%w: quotation %s belongs to another purchase request", errs.ErrInvalidReference, quotationID)
		}

		before := purchaseSelectionSnapshot{Status: pr.Status, SelectedQuotationID: pr.SelectedQuotationID}
		selected := q.ID
		pr.Status = model.PurchaseStatusComprado
		pr.SelectedQuotationID = &selected
		pr.ClearReceipt()

		if err := s.requests.Update(txCtx, pr); err != nil {
			return fmt.Errorf("failed to update purchase request: %w", err)
		}

		if _, err := s.audit.Record(txCtx, AuditEntry{
			EntityType:  model.EntityPurchaseRequest,
			EntityID:    pr.ID.String(),
			Action:      model.ActionPurchased,
			Description: fmt.Sprintf("Purchase request %q bought from %s (%s)", pr.Title, q.SupplierName, q.Total().StringFixed(2)),
			Before:      before,
			After: purchaseSelectionSnapshot{
				Status:              pr.Status,
				SelectedQuotationID: pr.SelectedQuotationID,
				SupplierName:        q.SupplierName,
			},
			ActorID: actor.ID,
		}); err != nil {
			return err
		}

		if pr.RequesterID != actor.ID {
			sent, err = s.notifications.Emit(txCtx, NotificationInput{
				RecipientID:     pr.RequesterID,
				Kind:            model.NotificationSystem,
				Title:           "Purchase made",
				Message:         fmt.Sprintf("%q was bought from %s", pr.Title, q.SupplierName),
				Link:            "/purchase-requests/" + pr.ID.String(),
				RelatedEntityID: pr.ID.String(),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(sent)
	return pr, nil
}

// UpdateNotes replaces the free-text quotation notes. Not audited.
func (s *purchaseRequestService) UpdateNotes(ctx context.Context, actor model.Actor, id uuid.UUID, notes string) error {
	if err := authorize(actor, rbac.CapManagePurchaseRequests); err != nil {
		return err
	}
	if err := s.requests.UpdateNotes(ctx, id, notes); err != nil {
		return fmt.Errorf("purchase request %s: %w", id, err)
	}
	return nil
}

func (s *purchaseRequestService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*PurchaseRequestView, error) {
	if err := authorize(actor, rbac.CapViewPurchaseRequests); err != nil {
		return nil, err
	}
	pr, err := s.requests.FindByIDWithQuotations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("purchase request %s: %w", id, err)
	}
	v := toPurchaseView(*pr)
	return &v, nil
}

func (s *purchaseRequestService) List(ctx context.Context, actor model.Actor, filter PurchaseFilter) ([]PurchaseRequestView, int64, error) {
	if err := authorize(actor, rbac.CapViewPurchaseRequests); err != nil {
		return nil, 0, err
	}
	if filter.Status != "" && !model.ValidPurchaseStatus(filter.Status) {
		return nil, 0, fmt.Errorf("%w: unknown purchase status %q", errs.ErrValidation, filter.Status)
	}

	filter.Page, filter.Limit = pageDefaults(filter.Page, filter.Limit)
	items, total, err := s.requests.List(ctx, filter.Status, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchase requests: %w", err)
	}

	res := make([]PurchaseRequestView, 0, len(items))
	for _, pr := range items {
		res = append(res, toPurchaseView(pr))
	}
	return res, total, nil
}

func toPurchaseView(pr model.PurchaseRequest) PurchaseRequestView {
	v := PurchaseRequestView{PurchaseRequest: pr, Quotations: make([]QuotationView, 0, len(pr.Quotations))}
	for _, q := range pr.Quotations {
		v.Quotations = append(v.Quotations, QuotationView{
			Quotation: q,
			Total:     q.Total(),
			Selected:  pr.SelectedQuotationID != nil && *pr.SelectedQuotationID == q.ID,
		})
	}
	v.PurchaseRequest.Quotations = nil
	return v
}
