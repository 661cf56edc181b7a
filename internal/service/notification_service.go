package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inventario/internal/errs"
	"inventario/internal/model"
	"inventario/internal/rbac"
	"inventario/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher pushes a payload to every live connection of one user.
type Publisher interface {
	SendToUser(userID uuid.UUID, payload []byte)
}

// NotificationInput describes one notification. Priority defaults to normal.
type NotificationInput struct {
	RecipientID     uuid.UUID
	Kind            string
	Title           string
	Message         string
	Link            string
	Priority        string
	RelatedEntityID string
}

// NotificationEvent is the websocket frame sent for a new notification.
type NotificationEvent struct {
	Event string              `json:"event"`
	Data  *model.Notification `json:"data"`
}

type NotificationService interface {
	Emit(ctx context.Context, in NotificationInput) (*model.Notification, error)
	EmitToRoles(ctx context.Context, roles []rbac.Role, in NotificationInput) ([]*model.Notification, error)
	Publish(ns ...*model.Notification)

	List(ctx context.Context, actor model.Actor, onlyUnread bool, page, limit int) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context, actor model.Actor) (repository.UnreadCounts, error)
	MarkRead(ctx context.Context, actor model.Actor, id uuid.UUID) error
	MarkAllRead(ctx context.Context, actor model.Actor) (int64, error)
}

type notificationService struct {
	repo      repository.NotificationRepository
	users     repository.UserRepository
	publisher Publisher
	logger    *zap.Logger
}

// NewNotificationService wires the feed store. publisher may be nil, in which
// case notifications are only persisted.
func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository, publisher Publisher, logger *zap.Logger) NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &notificationService{repo: repo, users: users, publisher: publisher, logger: logger}
}

// Emit persists one notification. Inside a transaction it is only visible once
// the caller commits; call Publish after that.
func (s *notificationService) Emit(ctx context.Context, in NotificationInput) (*model.Notification, error) {
	if in.Priority == "" {
		in.Priority = model.PriorityNormal
	}
	if !model.ValidNotificationKind(in.Kind) {
		return nil, fmt.Errorf("%w: unknown notification kind %q", errs.ErrValidation, in.Kind)
	}
	if !model.ValidPriority(in.Priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", errs.ErrValidation, in.Priority)
	}
	if in.RecipientID == uuid.Nil {
		return nil, fmt.Errorf("%w: recipient is required", errs.ErrValidation)
	}

	n := &model.Notification{
		RecipientID:     in.RecipientID,
		Kind:            in.Kind,
		Title:           in.Title,
		Message:         in.Message,
		Link:            strPtr(in.Link),
		Priority:        in.Priority,
		RelatedEntityID: strPtr(in.RelatedEntityID),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

// EmitToRoles fans one notification out to every user holding any of roles.
// in.RecipientID is ignored.
func (s *notificationService) EmitToRoles(ctx context.Context, roles []rbac.Role, in NotificationInput) ([]*model.Notification, error) {
	ids, err := s.users.ListIDsByRoles(ctx, roles)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}

	out := make([]*model.Notification, 0, len(ids))
	for _, id := range ids {
		in.RecipientID = id
		n, err := s.Emit(ctx, in)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Publish is best effort; a lost push is recovered by the next feed fetch.
func (s *notificationService) Publish(ns ...*model.Notification) {
	if s.publisher == nil {
		return
	}
	for _, n := range ns {
		if n == nil {
			continue
		}
		payload, err := json.Marshal(NotificationEvent{Event: "notification", Data: n})
		if err != nil {
			s.logger.Warn("encode notification event", zap.String("notification_id", n.ID.String()), zap.Error(err))
			continue
		}
		s.publisher.SendToUser(n.RecipientID, payload)
	}
}

func (s *notificationService) List(ctx context.Context, actor model.Actor, onlyUnread bool, page, limit int) ([]model.Notification, int64, error) {
	if err := authorize(actor, rbac.CapUseNotifications); err != nil {
		return nil, 0, err
	}
	page, limit = pageDefaults(page, limit)
	items, total, err := s.repo.List(ctx, actor.ID, onlyUnread, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return items, total, nil
}

func (s *notificationService) CountUnread(ctx context.Context, actor model.Actor) (repository.UnreadCounts, error) {
	if err := authorize(actor, rbac.CapUseNotifications); err != nil {
		return repository.UnreadCounts{}, err
	}
	return s.repo.CountUnread(ctx, actor.ID)
}

// MarkRead only touches the actor's own notifications; marking an already
// read one again is a no-op.
func (s *notificationService) MarkRead(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if err := authorize(actor, rbac.CapUseNotifications); err != nil {
		return err
	}
	if _, err := s.repo.MarkRead(ctx, id, actor.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor model.Actor) (int64, error) {
	if err := authorize(actor, rbac.CapUseNotifications); err != nil {
		return 0, err
	}
	n, err := s.repo.MarkAllRead(ctx, actor.ID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}
