package quote_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcruz7/lancer/internal/billing"
	"github.com/pcruz7/lancer/internal/quote"
)

var now = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func draftQuote() *quote.Quote {
	return &quote.Quote{
		Status:   quote.StatusDraft,
		Currency: "USD",
	}
}

func TestQuote_SendFlow(t *testing.T) {
	q := draftQuote()

	require.NoError(t, q.Send(now))
	assert.Equal(t, quote.StatusSent, q.Status)
	require.NotNil(t, q.SentAt)
	assert.Equal(t, now, *q.SentAt)

	// Re-sending a sent quote is illegal.
	var terr *quote.TransitionError
	require.ErrorAs(t, q.Send(now), &terr)
	assert.Equal(t, quote.StatusSent, terr.From)
}

func TestQuote_ViewIsIdempotent(t *testing.T) {
	q := draftQuote()
	require.NoError(t, q.Send(now))

	firstView := now.Add(time.Hour)
	require.NoError(t, q.MarkViewed(firstView))
	require.NotNil(t, q.ViewedAt)
	assert.Equal(t, firstView, *q.ViewedAt)

	// Second view keeps the original stamp.
	require.NoError(t, q.MarkViewed(firstView.Add(time.Hour)))
	assert.Equal(t, firstView, *q.ViewedAt)
	assert.Equal(t, quote.StatusViewed, q.Status)
}

func TestQuote_ViewBeforeSend(t *testing.T) {
	q := draftQuote()

	var terr *quote.TransitionError
	require.ErrorAs(t, q.MarkViewed(now), &terr)
}

func TestQuote_AcceptAndReject(t *testing.T) {
	q := draftQuote()
	require.NoError(t, q.Send(now))
	require.NoError(t, q.MarkViewed(now))

	require.NoError(t, q.Accept(now))
	assert.Equal(t, quote.StatusAccepted, q.Status)
	require.NotNil(t, q.AcceptedAt)

	// Terminal: no way back to sent, no reject after accept.
	var terr *quote.TransitionError
	require.ErrorAs(t, q.Send(now), &terr)
	require.ErrorAs(t, q.Reject(now), &terr)

	r := draftQuote()
	require.NoError(t, r.Send(now))
	require.NoError(t, r.MarkViewed(now))
	require.NoError(t, r.Reject(now))
	assert.Equal(t, quote.StatusRejected, r.Status)
	require.NotNil(t, r.RejectedAt)
}

func TestQuote_AcceptFromSentIsIllegal(t *testing.T) {
	q := draftQuote()
	require.NoError(t, q.Send(now))

	var terr *quote.TransitionError
	require.ErrorAs(t, q.Accept(now), &terr)
}

func TestQuote_EffectiveStatusExpired(t *testing.T) {
	yesterday := now.AddDate(0, 0, -1)

	q := draftQuote()
	require.NoError(t, q.Send(now.AddDate(0, 0, -10)))
	q.ValidUntil = &yesterday

	// Persisted status lags; the reader still sees expired.
	assert.Equal(t, quote.StatusSent, q.Status)
	assert.Equal(t, quote.StatusExpired, q.EffectiveStatus(now))

	// Accepting an effectively expired quote fails.
	var terr *quote.TransitionError
	require.ErrorAs(t, q.Accept(now), &terr)
	assert.Equal(t, quote.StatusExpired, terr.From)
	assert.Equal(t, quote.StatusSent, q.Status)

	require.NoError(t, q.Expire(now))
	assert.Equal(t, quote.StatusExpired, q.Status)
}

func TestQuote_ValidUntilTodayIsNotExpired(t *testing.T) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	q := draftQuote()
	q.ValidUntil = &today

	assert.Equal(t, quote.StatusDraft, q.EffectiveStatus(now))
}

func TestQuote_AcceptedNeverExpires(t *testing.T) {
	yesterday := now.AddDate(0, 0, -1)

	q := draftQuote()
	require.NoError(t, q.Send(now.AddDate(0, 0, -10)))
	require.NoError(t, q.MarkViewed(now.AddDate(0, 0, -9)))
	require.NoError(t, q.Accept(now.AddDate(0, 0, -8)))
	q.ValidUntil = &yesterday

	assert.Equal(t, quote.StatusAccepted, q.EffectiveStatus(now))

	var terr *quote.TransitionError
	require.ErrorAs(t, q.Expire(now), &terr)
}

func TestQuote_SetItemsRecomputesTotals(t *testing.T) {
	q := draftQuote()

	err := q.SetItems([]billing.LineItem{
		{Description: "Design", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(100), TaxRate: decimal.NewFromFloat(0.1), Discount: decimal.NewFromInt(50)},
		{Description: "Copywriting", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(40)},
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(355).Equal(q.Subtotal))
	assert.True(t, decimal.NewFromInt(355).Equal(q.TotalAmount))
	assert.Equal(t, 0, q.Items[0].SortOrder)
	assert.Equal(t, 1, q.Items[1].SortOrder)

	require.NoError(t, q.SetCharges(decimal.NewFromInt(10), decimal.NewFromInt(55)))
	assert.True(t, decimal.NewFromInt(310).Equal(q.TotalAmount))
}

func TestQuote_ItemsLockedAfterSend(t *testing.T) {
	q := draftQuote()
	require.NoError(t, q.SetItems([]billing.LineItem{
		{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
	}))
	require.NoError(t, q.Send(now))

	err := q.SetItems([]billing.LineItem{
		{Quantity: decimal.NewFromInt(9), UnitPrice: decimal.NewFromInt(9)},
	})
	require.ErrorIs(t, err, quote.ErrLocked)
	require.ErrorIs(t, q.SetCharges(decimal.NewFromInt(1), decimal.Zero), quote.ErrLocked)

	// Totals untouched.
	assert.True(t, decimal.NewFromInt(100).Equal(q.TotalAmount))
}
