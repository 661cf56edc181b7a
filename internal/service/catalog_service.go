package service

import (
	"context"
	"fmt"
	"strings"

	"inventario/internal/errs"
	"inventario/internal/model"
	"inventario/internal/rbac"
	"inventario/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateMaterialDTO struct {
	Name         string `json:"name" binding:"required"`
	Category     string `json:"category" binding:"required"`
	InitialStock *int   `json:"initial_stock" binding:"omitempty,gte=0"`
	MinimumStock int    `json:"minimum_stock" binding:"gte=0"`
}

type CreateTonerDTO struct {
	Model       string `json:"model" binding:"required"`
	Color       string `json:"color"`
	PrinterName string `json:"printer_name"`
}

type MaterialView struct {
	model.Material
	LowStock bool `json:"low_stock"`
}

// --- Interface ---

type CatalogService interface {
	CreateMaterial(ctx context.Context, actor model.Actor, req CreateMaterialDTO) (*model.Material, error)
	ListMaterials(ctx context.Context, actor model.Actor, page, limit int, search string) ([]MaterialView, int64, error)
	DeleteMaterial(ctx context.Context, actor model.Actor, id uuid.UUID) error

	CreateToner(ctx context.Context, actor model.Actor, req CreateTonerDTO) (*model.Toner, error)
	ListToners(ctx context.Context, actor model.Actor, page, limit int) ([]model.Toner, int64, error)
	DeleteToner(ctx context.Context, actor model.Actor, id uuid.UUID) error
}

type catalogService struct {
	txManager     repository.TransactionManager
	materials     repository.MaterialRepository
	toners        repository.TonerRepository
	audit         AuditService
	notifications NotificationService
}

func NewCatalogService(
	txManager repository.TransactionManager,
	materials repository.MaterialRepository,
	toners repository.TonerRepository,
	audit AuditService,
	notifications NotificationService,
) CatalogService {
	return &catalogService{
		txManager:     txManager,
		materials:     materials,
		toners:        toners,
		audit:         audit,
		notifications: notifications,
	}
}

type materialSnapshot struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	CurrentStock *int   `json:"estoqueAtual"`
	MinimumStock int    `json:"estoqueMinimo"`
}

type tonerSnapshot struct {
	Model       string `json:"model"`
	Color       string `json:"color"`
	PrinterName string `json:"printerName"`
}

func isLowStock(m *model.Material) bool {
	return m.MinimumStock > 0 && m.Stock() < m.MinimumStock
}

// --- Materials ---

func (s *catalogService) CreateMaterial(ctx context.Context, actor model.Actor, req CreateMaterialDTO) (*model.Material, error) {
	if err := authorize(actor, rbac.CapMutateInventory); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.Category) == "" {
		return nil, fmt.Errorf("%w: name and category are required", errs.ErrValidation)
	}
	if req.MinimumStock < 0 || (req.InitialStock != nil && *req.InitialStock < 0) {
		return nil, fmt.Errorf("%w: stock values cannot be negative", errs.ErrValidation)
	}

	var m *model.Material
	var sent []*model.Notification
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		exists, err := s.materials.ExistsByName(txCtx, name)
		if err != nil {
			return fmt.Errorf("failed to check material name: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: material %q already exists", errs.ErrConflict, name)
		}

		m = &model.Material{
			Name:         name,
			Category:     strings.TrimSpace(req.Category),
			CurrentStock: req.InitialStock,
			MinimumStock: req.MinimumStock,
		}
		if err := s.materials.Create(txCtx, m); err != nil {
			return fmt.Errorf("failed to create material: %w", err)
		}

		if _, err := s.audit.Record(txCtx, AuditEntry{
			EntityType:  model.EntityMaterial,
			EntityID:    m.ID.String(),
			Action:      model.ActionCreated,
			Description: fmt.Sprintf("Material created: %s (%s)", m.Name, m.Category),
			After:       materialSnapshot{Name: m.Name, Category: m.Category, CurrentStock: m.CurrentStock, MinimumStock: m.MinimumStock},
			ActorID:     actor.ID,
		}); err != nil {
			return err
		}

		if isLowStock(m) {
			sent, err = s.notifications.EmitToRoles(txCtx, []rbac.Role{rbac.RoleOperator, rbac.RoleAdministrator}, NotificationInput{
				Kind:            model.NotificationLowStock,
				Title:           "Low stock",
				Message:         fmt.Sprintf("%s has %d in stock, minimum is %d", m.Name, m.Stock(), m.MinimumStock),
				Link:            "/materials/" + m.ID.String(),
				Priority:        model.PriorityHigh,
				RelatedEntityID: m.ID.String(),
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Publish(sent...)
	return m, nil
}

func (s *catalogService) ListMaterials(ctx context.Context, actor model.Actor, page, limit int, search string) ([]MaterialView, int64, error) {
	if err := authorize(actor, rbac.CapViewInventory); err != nil {
		return nil, 0, err
	}
	page, limit = pageDefaults(page, limit)
	items, total, err := s.materials.List(ctx, page, limit, strings.TrimSpace(search))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch materials: %w", err)
	}

	res := make([]MaterialView, 0, len(items))
	for i := range items {
		res = append(res, MaterialView{Material: items[i], LowStock: isLowStock(&items[i])})
	}
	return res, total, nil
}

func (s *catalogService) DeleteMaterial(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if err := authorize(actor, rbac.CapMutateInventory); err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		m, err := s.materials.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("material %s: %w", id, err)
		}
		if err := s.materials.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete material: %w", err)
		}

		_, err = s.audit.Record(txCtx, AuditEntry{
			EntityType:  model.EntityMaterial,
			EntityID:    m.ID.String(),
			Action:      model.ActionDeleted,
			Description: fmt.Sprintf("Material deleted: %s", m.Name),
			Before:      materialSnapshot{Name: m.Name, Category: m.Category, CurrentStock: m.CurrentStock, MinimumStock: m.MinimumStock},
			ActorID:     actor.ID,
		})
		return err
	})
}

// --- Toners ---

func (s *catalogService) CreateToner(ctx context.Context, actor model.Actor, req CreateTonerDTO) (*model.Toner, error) {
	if err := authorize(actor, rbac.CapMutateInventory); err != nil {
		return nil, err
	}
	modelName := strings.TrimSpace(req.Model)
	if modelName == "" {
		return nil, fmt.Errorf("%w: model is required", errs.ErrValidation)
	}

	var t *model.Toner
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		exists, err := s.toners.ExistsByModel(txCtx, modelName)
		if err != nil {
			return fmt.Errorf("failed to check toner model: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: toner %q already exists", errs.ErrConflict, modelName)
		}

		t = &model.Toner{
			Model:       modelName,
			Color:       strings.TrimSpace(req.Color),
			PrinterName: strings.TrimSpace(req.PrinterName),
		}
		if err := s.toners.Create(txCtx, t); err != nil {
			return fmt.Errorf("failed to create toner: %w", err)
		}

		_, err = s.audit.Record(txCtx, AuditEntry{
			EntityType:  model.EntityToner,
			EntityID:    t.ID.String(),
			Action:      model.ActionCreated,
			Description: fmt.Sprintf("Toner created: %s", tonerLabel(t)),
			After:       tonerSnapshot{Model: t.Model, Color: t.Color, PrinterName: t.PrinterName},
			ActorID:     actor.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *catalogService) ListToners(ctx context.Context, actor model.Actor, page, limit int) ([]model.Toner, int64, error) {
	if err := authorize(actor, rbac.CapViewInventory); err != nil {
		return nil, 0, err
	}
	page, limit = pageDefaults(page, limit)
	items, total, err := s.toners.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch toners: %w", err)
	}
	return items, total, nil
}

func (s *catalogService) DeleteToner(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if err := authorize(actor, rbac.CapMutateInventory); err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := s.toners.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("toner %s: %w", id, err)
		}
		if err := s.toners.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete toner: %w", err)
		}

		_, err = s.audit.Record(txCtx, AuditEntry{
			EntityType:  model.EntityToner,
			EntityID:    t.ID.String(),
			Action:      model.ActionDeleted,
			Description: fmt.Sprintf("Toner deleted: %s", tonerLabel(t)),
			Before:      tonerSnapshot{Model: t.Model, Color: t.Color, PrinterName: t.PrinterName},
			ActorID:     actor.ID,
		})
		return err
	})
}
