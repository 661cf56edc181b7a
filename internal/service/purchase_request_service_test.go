package service

import (
	"context"
	"encoding/json"
	"testing"

	"inventario/internal/errs"
	"inventario/internal/model"
	"inventario/internal/rbac"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quote(supplier, value string, qty int) AddQuotationDTO {
	return AddQuotationDTO{
		SupplierName:       supplier,
		ProductDescription: "Dell P2422H monitor",
		UnitValue:          decimal.RequireFromString(value),
		Quantity:           qty,
	}
}

func TestCreatePurchaseRequest(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	op := env.store.addUser(rbac.RoleOperator)
	buyer := env.store.addUser(rbac.RolePurchaser)
	admin := env.store.addUser(rbac.RoleAdministrator)

	pr, err := env.purchases.Create(ctx, op, CreatePurchaseRequestDTO{Title: "  Monitors  ", Description: "two for finance"})
	require.NoError(t, err)
	assert.Equal(t, "Monitors", pr.Title)
	assert.Equal(t, model.PurchaseStatusEmAndamento, pr.Status)
	assert.Equal(t, op.ID, pr.RequesterID)

	rec := env.store.lastAudit()
	assert.Equal(t, model.EntityPurchaseRequest, rec.EntityType)
	assert.Equal(t, model.ActionCreated, rec.Action)

	for _, u := range []model.Actor{buyer, admin} {
		ns := env.store.notificationsFor(u.ID)
		require.Len(t, ns, 1)
		assert.Equal(t, model.NotificationPendingPurchase, ns[0].Kind)
		assert.Equal(t, model.PriorityHigh, ns[0].Priority)
	}
	assert.Empty(t, env.store.notificationsFor(op.ID))

	_, err = env.purchases.Create(ctx, op, CreatePurchaseRequestDTO{Title: "   "})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = env.purchases.Create(ctx, env.store.addUser(rbac.RoleViewer), CreatePurchaseRequestDTO{Title: "x"})
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestAddQuotation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	op := env.store.addUser(rbac.RoleOperator)
	pr, err := env.purchases.Create(ctx, op, CreatePurchaseRequestDTO{Title: "Monitors"})
	require.NoError(t, err)
	audits := env.store.auditCount()

	t.Run("minimum unit value accepted", func(t *testing.T) {
		q, err := env.purchases.AddQuotation(ctx, op, pr.ID, quote("ACME", "0.01", 3))
		require.NoError(t, err)
		assert.Equal(t, pr.ID, q.PurchaseRequestID)
		assert.True(t, q.Total().Equal(decimal.RequireFromString("0.03")))
	})

	tests := []struct {
		name string
		in   AddQuotationDTO
		want error
	}{
		{"zero unit value", quote("ACME", "0.00", 1), errs.ErrValidation},
		{"below minimum", quote("ACME", "0.009", 1), errs.ErrValidation},
		{"zero quantity", quote("ACME", "10", 0), errs.ErrValidation},
		{"missing supplier", quote(" ", "10", 1), errs.ErrValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.purchases.AddQuotation(ctx, op, pr.ID, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("unknown request", func(t *testing.T) {
		_, err := env.purchases.AddQuotation(ctx, op, uuid.New(), quote("ACME", "10", 1))
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	assert.Len(t, env.store.quotations, 1)
	assert.Equal(t, audits, env.store.auditCount(), "quotations are not audited")
}

func TestMarkPurchased(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	op := env.store.addUser(rbac.RoleOperator)
	buyer := env.store.addUser(rbac.RolePurchaser)

	pr, err := env.purchases.Create(ctx, op, CreatePurchaseRequestDTO{Title: "Monitors"})
	require.NoError(t, err)
	other, err := env.purchases.Create(ctx, op, CreatePurchaseRequestDTO{Title: "Chairs"})
	require.NoError(t, err)

	own, err := env.purchases.AddQuotation(ctx, op, pr.ID, quote("ACME", "899.90", 2))
	require.NoError(t, err)
	foreign, err := env.purchases.AddQuotation(ctx, op, other.ID, quote("Chairs Inc", "300", 4))
	require.NoError(t, err)

	t.Run("foreign quotation", func(t *testing.T) {
		_, err := env.purchases.MarkPurchased(ctx, buyer, pr.ID, foreign.ID)
		assert.ErrorIs(t, err, errs.ErrInvalidReference)
		assert.Equal(t, model.PurchaseStatusEmAndamento, env.store.purchases[pr.ID].Status)
		assert.Nil(t, env.store.purchases[pr.ID].SelectedQuotationID)
	})

	t.Run("unknown quotation", func(t *testing.T) {
		_, err := env.purchases.MarkPurchased(ctx, buyer, pr.ID, uuid.New())
		assert.ErrorIs(t, err, errs.ErrInvalidReference)
	})

	t.Run("operator cannot finalize", func(t *testing.T) {
		_, err := env.purchases.MarkPurchased(ctx, op, pr.ID, own.ID)
		assert.ErrorIs(t, err, errs.ErrUnauthorized)
	})

	t.Run("own quotation", func(t *testing.T) {
		got, err := env.purchases.MarkPurchased(ctx, buyer, pr.ID, own.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PurchaseStatusComprado, got.Status)
		require.NotNil(t, got.SelectedQuotationID)
		assert.Equal(t, own.ID, *got.SelectedQuotationID)

		rec := env.store.lastAudit()
		assert.Equal(t, model.ActionPurchased, rec.Action)
		var after map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.After, &after))
		assert.Equal(t, "ACME", after["supplierName"])
		assert.Equal(t, own.ID.String(), after["selectedQuotationId"])

		// requester is told about the purchase
		assert.Len(t, env.store.notificationsFor(op.ID), 1)
		assert.Equal(t, 1, env.pub.sentTo(op.ID))
	})

	t.Run("view marks the selected quotation", func(t *testing.T) {
		v, err := env.purchases.Get(ctx, env.store.addUser(rbac.RoleAdministrator), pr.ID)
		require.NoError(t, err)
		require.Len(t, v.Quotations, 1)
		assert.True(t, v.Quotations[0].Selected)
		assert.True(t, v.Quotations[0].Total.Equal(decimal.RequireFromString("1799.80")))
	})
}

func TestSetStatus_UnconstrainedAndReceipt(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	buyer := env.store.addUser(rbac.RolePurchaser)
	pr, err := env.purchases.Create(ctx, buyer, CreatePurchaseRequestDTO{Title: "Toner batch"})
	require.NoError(t, err)

	done, err := env.purchases.SetStatus(ctx, buyer, pr.ID, SetPurchaseStatusDTO{
		Status:        model.PurchaseStatusConcluido,
		ReceivedBy:    "Maria",
		InvoiceNumber: "NF-123",
	})
	require.NoError(t, err)
	require.NotNil(t, done.ReceivedBy)
	assert.Equal(t, "Maria", *done.ReceivedBy)
	assert.NotNil(t, done.ReceivedAt)
	require.NotNil(t, done.InvoiceNumber)

	// any status may follow any other, receipt does not survive leaving CONCLUIDO
	back, err := env.purchases.SetStatus(ctx, buyer, pr.ID, SetPurchaseStatusDTO{Status: model.PurchaseStatusEmAndamento})
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseStatusEmAndamento, back.Status)
	assert.Nil(t, back.ReceivedBy)
	assert.Nil(t, back.ReceivedAt)
	assert.Nil(t, back.InvoiceNumber)

	stored := env.store.purchases[pr.ID]
	assert.Nil(t, stored.ReceivedAt)

	rec := env.store.lastAudit()
	var before map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Before, &before))
	assert.Equal(t, model.PurchaseStatusConcluido, before["status"])
	assert.Equal(t, "NF-123", before["invoiceNumber"])

	for _, s := range []string{model.PurchaseStatusComprado, model.PurchaseStatusAguardandoEntrega, model.PurchaseStatusConcluido, model.PurchaseStatusEmAndamento} {
		got, err := env.purchases.SetStatus(ctx, buyer, pr.ID, SetPurchaseStatusDTO{Status: s})
		require.NoError(t, err)
		assert.Equal(t, s, got.Status)
	}
}

func TestSetStatus_BlankReceiverKeepsReceipt(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	buyer := env.store.addUser(rbac.RolePurchaser)
	pr, err := env.purchases.Create(ctx, buyer, CreatePurchaseRequestDTO{Title: "Cables"})
	require.NoError(t, err)

	done, err := env.purchases.SetStatus(ctx, buyer, pr.ID, SetPurchaseStatusDTO{Status: model.PurchaseStatusConcluido, ReceivedBy: "Maria"})
	require.NoError(t, err)
	require.NotNil(t, done.ReceivedAt)
	receivedAt := *done.ReceivedAt

	again, err := env.purchases.SetStatus(ctx, buyer, pr.ID, SetPurchaseStatusDTO{Status: model.PurchaseStatusConcluido, ReceivedBy: "   "})
	require.NoError(t, err)
	require.NotNil(t, again.ReceivedBy)
	assert.Equal(t, "Maria", *again.ReceivedBy)
	require.NotNil(t, again.ReceivedAt)
	assert.True(t, receivedAt.Equal(*again.ReceivedAt), "receivedAt re-stamped: %s -> %s", receivedAt, *again.ReceivedAt)
}

func TestSetStatus_Rejections(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	buyer := env.store.addUser(rbac.RolePurchaser)
	op := env.store.addUser(rbac.RoleOperator)
	pr, err := env.purchases.Create(ctx, buyer, CreatePurchaseRequestDTO{Title: "Paper"})
	require.NoError(t, err)

	_, err = env.purchases.SetStatus(ctx, buyer, pr.ID, SetPurchaseStatusDTO{Status: "CANCELADO"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = env.purchases.SetStatus(ctx, op, pr.ID, SetPurchaseStatusDTO{Status: model.PurchaseStatusConcluido})
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = env.purchases.SetStatus(ctx, buyer, uuid.New(), SetPurchaseStatusDTO{Status: model.PurchaseStatusConcluido})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	env.store.failAudit = errAuditDown
	_, err = env.purchases.SetStatus(ctx, buyer, pr.ID, SetPurchaseStatusDTO{Status: model.PurchaseStatusComprado})
	require.ErrorIs(t, err, errAuditDown)
	assert.Equal(t, model.PurchaseStatusEmAndamento, env.store.purchases[pr.ID].Status)
}

func TestUpdateNotes(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	op := env.store.addUser(rbac.RoleOperator)
	pr, err := env.purchases.Create(ctx, op, CreatePurchaseRequestDTO{Title: "Paper"})
	require.NoError(t, err)
	audits := env.store.auditCount()

	require.NoError(t, env.purchases.UpdateNotes(ctx, op, pr.ID, "ACME quoted by phone"))
	assert.Equal(t, "ACME quoted by phone", env.store.purchases[pr.ID].QuotationNotes)
	assert.Equal(t, audits, env.store.auditCount())

	assert.ErrorIs(t, env.purchases.UpdateNotes(ctx, op, uuid.New(), "x"), errs.ErrNotFound)
	assert.ErrorIs(t, env.purchases.UpdateNotes(ctx, env.store.addUser(rbac.RoleAuditor), pr.ID, "x"), errs.ErrUnauthorized)
}

func TestListPurchaseRequests(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	buyer := env.store.addUser(rbac.RolePurchaser)

	a, err := env.purchases.Create(ctx, buyer, CreatePurchaseRequestDTO{Title: "A"})
	require.NoError(t, err)
	_, err = env.purchases.Create(ctx, buyer, CreatePurchaseRequestDTO{Title: "B"})
	require.NoError(t, err)
	_, err = env.purchases.SetStatus(ctx, buyer, a.ID, SetPurchaseStatusDTO{Status: model.PurchaseStatusAguardandoEntrega})
	require.NoError(t, err)

	all, total, err := env.purchases.List(ctx, buyer, PurchaseFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "B", all[0].Title)
	assert.NotNil(t, all[0].Quotations)

	waiting, total, err := env.purchases.List(ctx, buyer, PurchaseFilter{Status: model.PurchaseStatusAguardandoEntrega})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, a.ID, waiting[0].ID)

	_, _, err = env.purchases.List(ctx, buyer, PurchaseFilter{Status: "nope"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, _, err = env.purchases.List(ctx, env.store.addUser(rbac.RoleViewer), PurchaseFilter{})
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}
