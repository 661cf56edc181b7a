package service

import (
	"context"
	"fmt"

	"inventario/internal/errs"
	"inventario/internal/model"
	"inventario/internal/rbac"
	"inventario/internal/repository"

	"github.com/google/uuid"
)

type IncreaseStockDTO struct {
	Amount int `json:"amount" binding:"required,gt=0"`
}

type StockResult struct {
	MaterialID    uuid.UUID `json:"material_id"`
	PreviousStock int       `json:"previous_stock"`
	CurrentStock  int       `json:"current_stock"`
	Message       string    `json:"message"`
}

type StockService interface {
	Increase(ctx context.Context, actor model.Actor, materialID uuid.UUID, amount int) (*StockResult, error)
	History(ctx context.Context, actor model.Actor, materialID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error)
}

type stockService struct {
	txManager repository.TransactionManager
	materials repository.MaterialRepository
	movements repository.StockMovementRepository
	audit     AuditService
}

func NewStockService(
	txManager repository.TransactionManager,
	materials repository.MaterialRepository,
	movements repository.StockMovementRepository,
	audit AuditService,
) StockService {
	return &stockService{
		txManager: txManager,
		materials: materials,
		movements: movements,
		audit:     audit,
	}
}

type stockSnapshot struct {
	CurrentStock int `json:"estoqueAtual"`
}

// Increase adds amount to a material's stock under a row lock, so concurrent
// increases never lose an update.
func (s *stockService) Increase(ctx context.Context, actor model.Actor, materialID uuid.UUID, amount int) (*StockResult, error) {
	if err := authorize(actor, rbac.CapAdjustStock); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", errs.ErrValidation)
	}

	var result *StockResult
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		material, err := s.materials.FindByIDForUpdate(txCtx, materialID)
		if err != nil {
			return fmt.Errorf("material %s: %w", materialID, err)
		}

		before := material.Stock()
		after := before + amount
		if err := s.materials.UpdateStock(txCtx, material.ID, after); err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		if err := s.movements.Create(txCtx, &model.StockMovement{
			MaterialID:  material.ID,
			Quantity:    amount,
			StockBefore: before,
			StockAfter:  after,
			PerformedBy: actor.ID,
		}); err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}

		if _, err := s.audit.Record(txCtx, AuditEntry{
			EntityType:  model.EntityMaterial,
			EntityID:    material.ID.String(),
			Action:      model.ActionStockIncreased,
			Description: fmt.Sprintf("Stock of %s increased by %d: %d -> %d", material.Name, amount, before, after),
			Before:      stockSnapshot{CurrentStock: before},
			After:       stockSnapshot{CurrentStock: after},
			ActorID:     actor.ID,
		}); err != nil {
			return err
		}

		result = &StockResult{
			MaterialID:    material.ID,
			PreviousStock: before,
			CurrentStock:  after,
			Message:       fmt.Sprintf("Added %d to %s, now %d in stock", amount, material.Name, after),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// History lists the stock movements of a material, newest first.
func (s *stockService) History(ctx context.Context, actor model.Actor, materialID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error) {
	if err := authorize(actor, rbac.CapViewInventory); err != nil {
		return nil, 0, err
	}
	if _, err := s.materials.FindByID(ctx, materialID); err != nil {
		return nil, 0, fmt.Errorf("material %s: %w", materialID, err)
	}
	page, limit = pageDefaults(page, limit)

	items, total, err := s.movements.ListByMaterial(ctx, materialID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch stock movements: %w", err)
	}
	return items, total, nil
}
