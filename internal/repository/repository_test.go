package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"inventario/internal/errs"
	"inventario/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = sqlDB.Close()
	})
	return db, mock
}

func TestNotificationRepo_MarkRead(t *testing.T) {
	ctx := context.Background()
	id, recipient := uuid.New(), uuid.New()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta(`UPDATE "notifications" SET "is_read"=$1,"read_at"=$2 WHERE id = $3 AND recipient_id = $4 AND is_read = $5`)

	t.Run("unread row owned by recipient", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(query).
			WithArgs(true, at, id, recipient, false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		changed, err := NewNotificationRepository(db).MarkRead(ctx, id, recipient, at)

		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("already read or foreign row is untouched", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(query).
			WithArgs(true, at, id, recipient, false).
			WillReturnResult(sqlmock.NewResult(0, 0))

		changed, err := NewNotificationRepository(db).MarkRead(ctx, id, recipient, at)

		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestNotificationRepo_CountUnread(t *testing.T) {
	db, mock := newMockDB(t)
	recipient := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE priority = $1) AS critical, COUNT(*) FILTER (WHERE priority = $2) AS high FROM "notifications" WHERE recipient_id = $3 AND is_read = $4`,
	)).
		WithArgs(model.PriorityCritical, model.PriorityHigh, recipient, false).
		WillReturnRows(sqlmock.NewRows([]string{"total", "critical", "high"}).AddRow(7, 1, 2))

	counts, err := NewNotificationRepository(db).CountUnread(context.Background(), recipient)

	require.NoError(t, err)
	assert.Equal(t, UnreadCounts{Total: 7, Critical: 1, High: 2}, counts)
}

func TestPurchaseRequestRepo_UpdateNotes(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	query := regexp.QuoteMeta(`UPDATE "purchase_requests" SET "quotation_notes"=$1,"updated_at"=$2 WHERE id = $3`)

	t.Run("missing request", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(query).
			WithArgs("call supplier B", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPurchaseRequestRepository(db).UpdateNotes(ctx, id, "call supplier B")

		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("existing request", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(query).
			WithArgs("", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPurchaseRequestRepository(db).UpdateNotes(ctx, id, ""))
	})
}

func TestPurchaseRequestRepo_UpdateWritesClearedReceipt(t *testing.T) {
	db, mock := newMockDB(t)
	quotationID := uuid.New()
	pr := &model.PurchaseRequest{
		ID:                  uuid.New(),
		Title:               "Monitors",
		Status:              model.PurchaseStatusComprado,
		RequesterID:         uuid.New(),
		SelectedQuotationID: &quotationID,
		CreatedAt:           time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	pr.ClearReceipt()

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE "purchase_requests" SET "title"=$1,"description"=$2,"status"=$3,"requester_id"=$4,"selected_quotation_id"=$5,"quotation_notes"=$6,"received_by"=$7,"received_at"=$8,"invoice_number"=$9,"created_at"=$10,"updated_at"=$11 WHERE "id" = $12`,
	)).
		WithArgs(
			"Monitors", "", model.PurchaseStatusComprado, pr.RequesterID, sqlmock.AnyArg(), "",
			nil, nil, nil,
			sqlmock.AnyArg(), sqlmock.AnyArg(), pr.ID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPurchaseRequestRepository(db).Update(context.Background(), pr))
}

func TestMaterialRepo_FindByIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("soft-deleted rows are excluded", func(t *testing.T) {
		db, mock := newMockDB(t)
		live, removed := uuid.New(), uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "materials" WHERE id IN ($1,$2) AND "materials"."deleted_at" IS NULL`)).
			WithArgs(live, removed).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category"}).AddRow(live.String(), "HDMI cable", "Cables"))

		got, err := NewMaterialRepository(db).FindByIDs(ctx, []uuid.UUID{live, removed})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, live, got[0].ID)
		assert.Equal(t, "HDMI cable", got[0].Name)
	})

	t.Run("no ids, no query", func(t *testing.T) {
		db, _ := newMockDB(t)
		got, err := NewMaterialRepository(db).FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
