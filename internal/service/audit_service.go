package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inventario/internal/model"
	"inventario/internal/rbac"
	"inventario/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditEntry is what a mutation hands to Record. Before and After are any
// JSON-marshalable snapshot; nil is stored as NULL.
type AuditEntry struct {
	EntityType  string
	EntityID    string
	Action      string
	Description string
	Before      interface{}
	After       interface{}
	ActorID     uuid.UUID
}

type AuditFilter struct {
	EntityType string
	EntityID   string
	Page       int
	Limit      int
}

type AuditLogResponse struct {
	ID          string          `json:"id"`
	EntityType  string          `json:"entity_type"`
	EntityID    string          `json:"entity_id"`
	Action      string          `json:"action"`
	Description string          `json:"description"`
	Before      json.RawMessage `json:"before,omitempty" swaggertype:"object"`
	After       json.RawMessage `json:"after,omitempty" swaggertype:"object"`
	ActorID     *string         `json:"actor_id"`
	CreatedAt   string          `json:"created_at"`
}

type AuditService interface {
	Record(ctx context.Context, entry AuditEntry) (uuid.UUID, error)
	List(ctx context.Context, actor model.Actor, filter AuditFilter) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// Record appends one entry. It joins the transaction carried by ctx, so a
// failure here rolls back the mutation being described.
func (s *auditService) Record(ctx context.Context, entry AuditEntry) (uuid.UUID, error) {
	before, err := snapshot(entry.Before)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode before snapshot: %w", err)
	}
	after, err := snapshot(entry.After)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode after snapshot: %w", err)
	}

	rec := model.AuditRecord{
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Action:      entry.Action,
		Description: entry.Description,
		Before:      before,
		After:       after,
	}
	if entry.ActorID != uuid.Nil {
		id := entry.ActorID
		rec.ActorID = &id
	}

	if err := s.repo.Create(ctx, &rec); err != nil {
		return uuid.Nil, fmt.Errorf("failed to write audit log: %w", err)
	}
	return rec.ID, nil
}

func (s *auditService) List(ctx context.Context, actor model.Actor, filter AuditFilter) ([]AuditLogResponse, int64, error) {
	if err := authorize(actor, rbac.CapViewAuditLog); err != nil {
		return nil, 0, err
	}

	filter.Page, filter.Limit = pageDefaults(filter.Page, filter.Limit)
	records, total, err := s.repo.List(ctx, repository.AuditQuery{
		EntityType: filter.EntityType,
		EntityID:   filter.EntityID,
		Page:       filter.Page,
		Limit:      filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	res := make([]AuditLogResponse, 0, len(records))
	for _, r := range records {
		item := AuditLogResponse{
			ID:          r.ID.String(),
			EntityType:  r.EntityType,
			EntityID:    r.EntityID,
			Action:      r.Action,
			Description: r.Description,
			Before:      json.RawMessage(r.Before),
			After:       json.RawMessage(r.After),
			CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		}
		if r.ActorID != nil {
			id := r.ActorID.String()
			item.ActorID = &id
		}
		res = append(res, item)
	}

	return res, total, nil
}

func snapshot(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
