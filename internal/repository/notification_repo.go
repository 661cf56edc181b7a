package repository

import (
	"context"
	"time"

	"inventario/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnreadCounts holds unread totals; Critical and High count exact priorities.
type UnreadCounts struct {
	Total    int64 `json:"total"`
	Critical int64 `json:"critical"`
	High     int64 `json:"high"`
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, recipientID uuid.UUID, onlyUnread bool, page, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID, at time.Time) (bool, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID, at time.Time) (int64, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (UnreadCounts, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return GetDB(ctx, r.db).Create(n).Error
}

func (r *notificationRepository) List(ctx context.Context, recipientID uuid.UUID, onlyUnread bool, page, limit int) ([]model.Notification, int64, error) {
	var items []model.Notification
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Notification{}).Where("recipient_id = ?", recipientID)
	if onlyUnread {
		db = db.Where("is_read = ?", false)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("created_at desc").Offset(offsetOf(page, limit)).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// MarkRead only touches an unread row owned by recipientID, so read_at is set once.
func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID, at time.Time) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", id, recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID, at time.Time) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (UnreadCounts, error) {
	var c UnreadCounts
	err := GetDB(ctx, r.db).Model(&model.Notification{}).
		Select(
			"COUNT(*) AS total, "+
				"COUNT(*) FILTER (WHERE priority = ?) AS critical, "+
				"COUNT(*) FILTER (WHERE priority = ?) AS high",
			model.PriorityCritical, model.PriorityHigh,
		).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Scan(&c).Error
	return c, err
}
