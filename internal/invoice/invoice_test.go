package invoice_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcruz7/lancer/internal/billing"
	"github.com/pcruz7/lancer/internal/invoice"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func draftInvoice(total int64) *invoice.Invoice {
	inv := &invoice.Invoice{
		Status:    invoice.StatusDraft,
		Currency:  "USD",
		IssueDate: now.AddDate(0, 0, -5),
		DueDate:   now.AddDate(0, 0, 25),
	}

	if total > 0 {
		err := inv.SetItems([]billing.LineItem{
			{Description: "Work", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(total)},
		})
		if err != nil {
			panic(err)
		}
	}

	return inv
}

func TestInvoice_SendAndView(t *testing.T) {
	inv := draftInvoice(100)

	require.NoError(t, inv.Send(now))
	assert.Equal(t, invoice.StatusSent, inv.Status)
	require.NotNil(t, inv.SentAt)

	var terr *invoice.TransitionError
	require.ErrorAs(t, inv.Send(now), &terr)

	viewed := now.Add(time.Hour)
	require.NoError(t, inv.MarkViewed(viewed))
	require.NotNil(t, inv.ViewedAt)
	assert.Equal(t, viewed, *inv.ViewedAt)

	// Idempotent re-view.
	require.NoError(t, inv.MarkViewed(viewed.Add(time.Hour)))
	assert.Equal(t, viewed, *inv.ViewedAt)
}

func TestInvoice_CancelFromAnyNonTerminal(t *testing.T) {
	inv := draftInvoice(100)
	require.NoError(t, inv.Cancel())
	assert.Equal(t, invoice.StatusCancelled, inv.Status)

	var terr *invoice.TransitionError
	require.ErrorAs(t, inv.Cancel(), &terr)

	sent := draftInvoice(100)
	require.NoError(t, sent.Send(now))
	require.NoError(t, sent.Cancel())

	paid := draftInvoice(100)
	require.NoError(t, paid.Send(now))
	_, err := paid.RecordPayment(invoice.Payment{Amount: decimal.NewFromInt(100), PaymentDate: now}, now)
	require.NoError(t, err)
	require.Equal(t, invoice.StatusPaid, paid.Status)
	require.ErrorAs(t, paid.Cancel(), &terr)
}

func TestInvoice_EffectiveStatusOverdue(t *testing.T) {
	inv := draftInvoice(500)
	inv.DueDate = now.AddDate(0, 0, -20)
	require.NoError(t, inv.Send(now.AddDate(0, 0, -30)))

	assert.Equal(t, invoice.StatusSent, inv.Status)
	assert.Equal(t, invoice.StatusOverdue, inv.EffectiveStatus(now))
	assert.Equal(t, 20, inv.DaysOverdue(now))

	require.NoError(t, inv.MarkOverdue(now))
	assert.Equal(t, invoice.StatusOverdue, inv.Status)

	// Persisting the status must not hide the invoice from overdue readers.
	assert.True(t, inv.Overdue(now))
	assert.Equal(t, invoice.StatusOverdue, inv.EffectiveStatus(now))
	assert.Equal(t, 20, inv.DaysOverdue(now))
}

func TestInvoice_ViewingPersistedOverdue(t *testing.T) {
	inv := draftInvoice(500)
	inv.DueDate = now.AddDate(0, 0, -20)
	require.NoError(t, inv.Send(now.AddDate(0, 0, -30)))
	require.NoError(t, inv.MarkOverdue(now))

	require.NoError(t, inv.MarkViewed(now))
	require.NotNil(t, inv.ViewedAt)
	assert.Equal(t, now, *inv.ViewedAt)
	assert.Equal(t, invoice.StatusOverdue, inv.Status)

	// Re-viewing keeps the original stamp.
	require.NoError(t, inv.MarkViewed(now.Add(time.Hour)))
	assert.Equal(t, now, *inv.ViewedAt)
}

func TestInvoice_DueTodayIsNotOverdue(t *testing.T) {
	inv := draftInvoice(500)
	inv.DueDate = now.Add(-2 * time.Hour) // earlier today
	require.NoError(t, inv.Send(now.AddDate(0, 0, -3)))

	assert.Equal(t, invoice.StatusSent, inv.EffectiveStatus(now))
	assert.Equal(t, 0, inv.DaysOverdue(now))
}

func TestInvoice_DraftAndPaidNeverOverdue(t *testing.T) {
	inv := draftInvoice(100)
	inv.DueDate = now.AddDate(0, 0, -10)
	assert.Equal(t, invoice.StatusDraft, inv.EffectiveStatus(now))

	require.NoError(t, inv.Send(now))
	_, err := inv.RecordPayment(invoice.Payment{Amount: decimal.NewFromInt(100), PaymentDate: now}, now)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, inv.EffectiveStatus(now))
}

func TestInvoice_ItemsLockedAfterSend(t *testing.T) {
	inv := draftInvoice(100)
	require.NoError(t, inv.Send(now))

	err := inv.SetItems([]billing.LineItem{
		{Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(5)},
	})
	require.ErrorIs(t, err, invoice.ErrLocked)
	require.ErrorIs(t, inv.SetCharges(decimal.NewFromInt(1), decimal.Zero), invoice.ErrLocked)
	assert.True(t, decimal.NewFromInt(100).Equal(inv.TotalAmount))
}

func TestInvoice_SetItemsKeepsBalanceConsistent(t *testing.T) {
	inv := draftInvoice(100)

	require.NoError(t, inv.SetCharges(decimal.NewFromInt(20), decimal.NewFromInt(10)))
	assert.True(t, decimal.NewFromInt(110).Equal(inv.TotalAmount))
	assert.True(t, decimal.NewFromInt(110).Equal(inv.BalanceDue))
	assert.True(t, inv.AmountPaid.IsZero())
}
