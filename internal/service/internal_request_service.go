package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventario/internal/errs"
	"inventario/internal/model"
	"inventario/internal/rbac"
	"inventario/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateInternalRequestDTO struct {
	ProductType  string    `json:"product_type" binding:"required,oneof=MATERIAL TONER"`
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,gt=0"`
	LocationName string    `json:"location_name"`
	PrinterName  string    `json:"printer_name"`
	Color        string    `json:"color"`
}

type AdvanceInternalRequestDTO struct {
	Status string `json:"status" binding:"required,oneof=AGUARDANDO ENVIADO RECEBIDO"`
}

// InternalRequestView is a request joined with its product. Status is the
// effective status: AGUARDANDO whenever the product no longer exists.
type InternalRequestView struct {
	model.InternalRequest
	ProductName   string `json:"product_name"`
	ProductExists bool   `json:"product_exists"`
}

// removedProductName labels requests whose product was deleted.
const removedProductName = "(removed product)"

// --- Interface ---

type InternalRequestService interface {
	Create(ctx context.Context, actor model.Actor, req CreateInternalRequestDTO) (*model.InternalRequest, error)
	Advance(ctx context.Context, actor model.Actor, id uuid.UUID, target string) (*model.InternalRequest, error)
	List(ctx context.Context, actor model.Actor) ([]InternalRequestView, error)
	Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*InternalRequestView, error)
}

type internalRequestService struct {
	txManager     repository.TransactionManager
	requests      repository.InternalRequestRepository
	materials     repository.MaterialRepository
	toners        repository.TonerRepository
	audit         AuditService
	notifications NotificationService
}

func NewInternalRequestService(
	txManager repository.TransactionManager,
	requests repository.InternalRequestRepository,
	materials repository.MaterialRepository,
	toners repository.TonerRepository,
	audit AuditService,
	notifications NotificationService,
) InternalRequestService {
	return &internalRequestService{
		txManager:     txManager,
		requests:      requests,
		materials:     materials,
		toners:        toners,
		audit:         audit,
		notifications: notifications,
	}
}

// audit snapshots

type internalRequestSnapshot struct {
	ProductType string    `json:"productType"`
	ProductID   uuid.UUID `json:"productId"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	RequesterID uuid.UUID `json:"requesterId"`
}

type internalStatusSnapshot struct {
	Status     string     `json:"status"`
	ShippedBy  *uuid.UUID `json:"shippedBy,omitempty"`
	ShippedAt  *time.Time `json:"shippedAt,omitempty"`
	ReceivedBy *uuid.UUID `json:"receivedBy,omitempty"`
	ReceivedAt *time.Time `json:"receivedAt,omitempty"`
}

func statusSnapshotOf(r *model.InternalRequest) internalStatusSnapshot {
	return internalStatusSnapshot{
		Status:     r.Status,
		ShippedBy:  r.ShippedBy,
		ShippedAt:  r.ShippedAt,
		ReceivedBy: r.ReceivedBy,
		ReceivedAt: r.ReceivedAt,
	}
}

// --- Implementation ---

func (s *internalRequestService) Create(ctx context.Context, actor model.Actor, req CreateInternalRequestDTO) (*model.InternalRequest, error) {
	if err := authorize(actor, rbac.CapCreateInternalRequest); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", errs.ErrValidation)
	}
	if req.ProductType != model.ProductTypeMaterial && req.ProductType != model.ProductTypeToner {
		return nil, fmt.Errorf("%w: unknown product type %q", errs.ErrValidation, req.ProductType)
	}

	var created *model.InternalRequest
	var sent []*model.Notification
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		category, productName, err := s.resolveProduct(txCtx, req.ProductType, req.ProductID)
		if err != nil {
			return err
		}

		created = &model.InternalRequest{
			ProductType:  req.ProductType,
			ProductID:    req.ProductID,
			Category:     category,
			Quantity:     req.Quantity,
			Status:       model.InternalStatusAguardando,
			RequesterID:  actor.ID,
			LocationName: req.LocationName,
			PrinterName:  req.PrinterName,
			Color:        req.Color,
		}
		if err := s.requests.Create(txCtx, created); err != nil {
			return fmt.Errorf("failed to create internal request: %w", err)
		}

		if _, err := s.audit.Record(txCtx, AuditEntry{
			EntityType:  model.EntityInternalRequest,
			EntityID:    created.ID.String(),
			Action:      model.ActionCreated,
			Description: fmt.Sprintf("Internal request created: %d x %s", created.Quantity, productName),
			After: internalRequestSnapshot{
				ProductType: created.ProductType,
				ProductID:   created.ProductID,
				Category:    created.Category,
				Quantity:    created.Quantity,
				Status:      created.Status,
				RequesterID: created.RequesterID,
			},
			ActorID: actor.ID,
		}); err != nil {
			return err
		}

		sent, err = s.notifications.EmitToRoles(txCtx, []rbac.Role{rbac.RoleOperator, rbac.RoleAdministrator}, NotificationInput{
			Kind:            model.NotificationPendingRequest,
			Title:           "New internal request",
			Message:         fmt.Sprintf("%d x %s (%s) is waiting to be shipped", created.Quantity, productName, created.Category),
			Link:            "/internal-requests/" + created.ID.String(),
			RelatedEntityID: created.ID.String(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(sent...)
	return created, nil
}

// Advance moves a request one step forward. Only the immediate successor of
// the stored status is accepted.
func (s *internalRequestService) Advance(ctx context.Context, actor model.Actor, id uuid.UUID, target string) (*model.InternalRequest, error) {
	if err := authorize(actor, rbac.CapAdvanceInternalRequest); err != nil {
		return nil, err
	}

	var req *model.InternalRequest
	var sent *model.Notification
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.requests.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("internal request %s: %w", id, err)
		}

		next, ok := model.NextInternalStatus(req.Status)
		if !ok || next != target {
			return fmt.Errorf("%w: %s -> %s", errs.ErrInvalidTransition, req.Status, target)
		}

		before := statusSnapshotOf(req)
		now := time.Now().UTC()
		actorID := actor.ID
		switch target {
		case model.InternalStatusEnviado:
			req.ShippedBy = &actorID
			req.ShippedAt = &now
		case model.InternalStatusRecebido:
			req.ReceivedBy = &actorID
			req.ReceivedAt = &now
		}
		req.Status = target

		if err := s.requests.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update internal request: %w", err)
		}

		if _, err := s.audit.Record(txCtx, AuditEntry{
			EntityType:  model.EntityInternalRequest,
			EntityID:    req.ID.String(),
			Action:      model.ActionStatusChanged,
			Description: fmt.Sprintf("Internal request status changed: %s -> %s", before.Status, req.Status),
			Before:      before,
			After:       statusSnapshotOf(req),
			ActorID:     actor.ID,
		}); err != nil {
			return err
		}

		if target == model.InternalStatusEnviado && req.RequesterID != actor.ID {
			sent, err = s.notifications.Emit(txCtx, NotificationInput{
				RecipientID:     req.RequesterID,
				Kind:            model.NotificationSystem,
				Title:           "Internal request shipped",
				Message:         fmt.Sprintf("Your request for %d x %s is on its way", req.Quantity, req.Category),
				Link:            "/internal-requests/" + req.ID.String(),
				RelatedEntityID: req.ID.String(),
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
	return req, nil
}

func (s *internalRequestService) List(ctx context.Context, actor model.Actor) ([]InternalRequestView, error) {
	if err := authorize(actor, rbac.CapViewInternalRequests); err != nil {
		return nil, err
	}

	reqs, err := s.requests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch internal requests: %w", err)
	}
	return s.join(ctx, reqs)
}

func (s *internalRequestService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*InternalRequestView, error) {
	if err := authorize(actor, rbac.CapViewInternalRequests); err != nil {
		return nil, err
	}

	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("internal request %s: %w", id, err)
	}
	views, err := s.join(ctx, []model.InternalRequest{*req})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// join resolves product names with one query per product type.
func (s *internalRequestService) join(ctx context.Context, reqs []model.InternalRequest) ([]InternalRequestView, error) {
	var materialIDs, tonerIDs []uuid.UUID
	for _, r := range reqs {
		switch r.ProductType {
		case model.ProductTypeMaterial:
			materialIDs = append(materialIDs, r.ProductID)
		case model.ProductTypeToner:
			tonerIDs = append(tonerIDs, r.ProductID)
		}
	}

	names := make(map[uuid.UUID]string, len(reqs))
	if len(materialIDs) > 0 {
		materials, err := s.materials.FindByIDs(ctx, materialIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch materials: %w", err)
		}
		for _, m := range materials {
			names[m.ID] = m.Name
		}
	}
	if len(tonerIDs) > 0 {
		toners, err := s.toners.FindByIDs(ctx, tonerIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch toners: %w", err)
		}
		for _, t := range toners {
			names[t.ID] = tonerLabel(&t)
		}
	}

	views := make([]InternalRequestView, 0, len(reqs))
	for _, r := range reqs {
		v := InternalRequestView{InternalRequest: r}
		if name, ok := names[r.ProductID]; ok {
			v.ProductName = name
			v.ProductExists = true
		} else {
			v.ProductName = removedProductName
			v.Status = model.InternalStatusAguardando
		}
		views = append(views, v)
	}
	return views, nil
}

// resolveProduct returns the category to freeze on the request and a display name.
func (s *internalRequestService) resolveProduct(ctx context.Context, productType string, id uuid.UUID) (string, string, error) {
	switch productType {
	case model.ProductTypeMaterial:
		m, err := s.materials.FindByID(ctx, id)
		if err != nil {
			return "", "", productErr("material", id, err)
		}
		return m.Category, m.Name, nil
	default:
		t, err := s.toners.FindByID(ctx, id)
		if err != nil {
			return "", "", productErr("toner", id, err)
		}
		return model.TonerCategory, tonerLabel(t), nil
	}
}

func productErr(kind string, id uuid.UUID, err error) error {
	if errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("%w: %s %s does not exist", errs.ErrNotFound, kind, id)
	}
	return fmt.Errorf("failed to load %s: %w", kind, err)
}

func tonerLabel(t *model.Toner) string {
	if t.Color == "" {
		return t.Model
	}
	return t.Model + " (" + t.Color + ")"
}
