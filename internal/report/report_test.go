package report_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcruz7/lancer/internal/client"
	"github.com/pcruz7/lancer/internal/invoice"
	"github.com/pcruz7/lancer/internal/project"
	"github.com/pcruz7/lancer/internal/quote"
	"github.com/pcruz7/lancer/internal/report"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func outstandingInvoice(clientID uuid.UUID, balance int64, daysOverdue int) *invoice.Invoice {
	return &invoice.Invoice{
		ID:          uuid.New(),
		ClientID:    clientID,
		Status:      invoice.StatusSent,
		Currency:    "USD",
		DueDate:     now.AddDate(0, 0, -daysOverdue),
		TotalAmount: decimal.NewFromInt(balance),
		AmountPaid:  decimal.Zero,
		BalanceDue:  decimal.NewFromInt(balance),
	}
}

func TestAging_Buckets(t *testing.T) {
	clientID := uuid.New()

	type testCase struct {
		name        string
		daysOverdue int
		bucket      func(report.ClientAging) decimal.Decimal
	}

	tests := []testCase{
		{"NotYetDue", -5, func(r report.ClientAging) decimal.Decimal { return r.Current }},
		{"DueToday", 0, func(r report.ClientAging) decimal.Decimal { return r.Current }},
		{"OneDayLate", 1, func(r report.ClientAging) decimal.Decimal { return r.Days1To30 }},
		{"ThirtyDaysLate", 30, func(r report.ClientAging) decimal.Decimal { return r.Days1To30 }},
		{"ThirtyOneDaysLate", 31, func(r report.ClientAging) decimal.Decimal { return r.Days31To60 }},
		{"SixtyDaysLate", 60, func(r report.ClientAging) decimal.Decimal { return r.Days31To60 }},
		{"SixtyOneDaysLate", 61, func(r report.ClientAging) decimal.Decimal { return r.Days61To90 }},
		{"NinetyDaysLate", 90, func(r report.ClientAging) decimal.Decimal { return r.Days61To90 }},
		{"NinetyOneDaysLate", 91, func(r report.ClientAging) decimal.Decimal { return r.Days90Plus }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := report.Aging([]*invoice.Invoice{outstandingInvoice(clientID, 500, tt.daysOverdue)}, now)

			require.Len(t, rows, 1)
			assert.True(t, decimal.NewFromInt(500).Equal(tt.bucket(rows[0])))
			assert.True(t, decimal.NewFromInt(500).Equal(rows[0].TotalBalance))
		})
	}
}

func TestAging_SkipsNonOutstanding(t *testing.T) {
	clientID := uuid.New()

	cancelled := outstandingInvoice(clientID, 100, 10)
	cancelled.Status = invoice.StatusCancelled

	paid := outstandingInvoice(clientID, 0, 10)
	paid.Status = invoice.StatusPaid
	paid.BalanceDue = decimal.Zero

	draft := outstandingInvoice(clientID, 100, 10)
	draft.Status = invoice.StatusDraft

	rows := report.Aging([]*invoice.Invoice{cancelled, paid, draft}, now)
	assert.Empty(t, rows)
}

func TestAging_GroupsByClient(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	rows := report.Aging([]*invoice.Invoice{
		outstandingInvoice(a, 200, 20),
		outstandingInvoice(a, 300, 45),
		outstandingInvoice(b, 150, 0),
	}, now)

	require.Len(t, rows, 2)

	byID := map[uuid.UUID]report.ClientAging{}
	for _, r := range rows {
		byID[r.ClientID] = r
	}

	assert.True(t, decimal.NewFromInt(500).Equal(byID[a].TotalBalance))
	assert.True(t, decimal.NewFromInt(200).Equal(byID[a].Days1To30))
	assert.True(t, decimal.NewFromInt(300).Equal(byID[a].Days31To60))
	assert.True(t, decimal.NewFromInt(150).Equal(byID[b].Current))
}

func quoteWithStatus(clientID uuid.UUID, status quote.Status) *quote.Quote {
	return &quote.Quote{ID: uuid.New(), ClientID: clientID, Status: status, Currency: "USD", CreatedAt: now.AddDate(0, 0, -10)}
}

func TestDashboard_ConversionRate(t *testing.T) {
	clientID := uuid.New()

	quotes := make([]*quote.Quote, 0, 10)
	for i := 0; i < 4; i++ {
		quotes = append(quotes, quoteWithStatus(clientID, quote.StatusAccepted))
	}

	for i := 0; i < 6; i++ {
		quotes = append(quotes, quoteWithStatus(clientID, quote.StatusSent))
	}

	stats := report.Dashboard(quotes, nil, nil, nil, now)

	assert.Equal(t, 10, stats.TotalQuotes)
	assert.Equal(t, 4, stats.AcceptedQuotes)
	assert.Equal(t, 6, stats.PendingQuotes)
	assert.Equal(t, 40, stats.ConversionRate)
}

func TestDashboard_NoQuotesZeroConversion(t *testing.T) {
	stats := report.Dashboard(nil, nil, nil, nil, now)
	assert.Equal(t, 0, stats.ConversionRate)
}

func TestDashboard_ConversionRateRounds(t *testing.T) {
	clientID := uuid.New()

	quotes := []*quote.Quote{
		quoteWithStatus(clientID, quote.StatusAccepted),
		quoteWithStatus(clientID, quote.StatusRejected),
		quoteWithStatus(clientID, quote.StatusRejected),
	}

	// 1/3 = 33.33... -> 33
	stats := report.Dashboard(quotes, nil, nil, nil, now)
	assert.Equal(t, 33, stats.ConversionRate)
}

func TestDashboard_ExpiredQuoteIsNotPending(t *testing.T) {
	q := quoteWithStatus(uuid.New(), quote.StatusSent)
	yesterday := now.AddDate(0, 0, -1)
	q.ValidUntil = &yesterday

	stats := report.Dashboard([]*quote.Quote{q}, nil, nil, nil, now)
	assert.Equal(t, 0, stats.PendingQuotes)
}

func TestDashboard_InvoiceFigures(t *testing.T) {
	clientID := uuid.New()

	overdue := outstandingInvoice(clientID, 500, 20)

	paid := outstandingInvoice(clientID, 0, 0)
	paid.Status = invoice.StatusPaid
	paid.TotalAmount = decimal.NewFromInt(1000)
	paid.AmountPaid = decimal.NewFromInt(1000)
	paid.BalanceDue = decimal.Zero

	partial := outstandingInvoice(clientID, 400, 0)
	partial.Status = invoice.StatusPartial
	partial.TotalAmount = decimal.NewFromInt(1000)
	partial.AmountPaid = decimal.NewFromInt(600)

	cancelled := outstandingInvoice(clientID, 300, 50)
	cancelled.Status = invoice.StatusCancelled

	// Overdue was persisted on this one; it still counts.
	marked := outstandingInvoice(clientID, 200, 40)
	marked.Status = invoice.StatusOverdue

	stats := report.Dashboard(nil, []*invoice.Invoice{overdue, paid, partial, cancelled, marked}, nil, nil, now)

	assert.Equal(t, 5, stats.TotalInvoices)
	assert.Equal(t, 2, stats.OverdueInvoices)
	assert.True(t, decimal.NewFromInt(1000).Equal(stats.TotalRevenue))
	assert.True(t, decimal.NewFromInt(1600).Equal(stats.TotalPaidAmount))
	assert.True(t, decimal.NewFromInt(1100).Equal(stats.TotalBalanceDue))
}

func TestDashboard_ActiveProjects(t *testing.T) {
	clientID := uuid.New()

	projects := []*project.Project{
		{ID: uuid.New(), ClientID: clientID, Status: project.StatusActive},
		{ID: uuid.New(), ClientID: clientID, Status: project.StatusCompleted},
		{ID: uuid.New(), ClientID: clientID, Status: project.StatusOnHold},
	}

	stats := report.Dashboard(nil, nil, projects, nil, now)
	assert.Equal(t, 3, stats.TotalProjects)
	assert.Equal(t, 1, stats.ActiveProjects)
}

func paidInvoiceFor(clientID uuid.UUID, total int64, paidDate, dueDate time.Time) *invoice.Invoice {
	amount := decimal.NewFromInt(total)

	return &invoice.Invoice{
		ID:          uuid.New(),
		ClientID:    clientID,
		Status:      invoice.StatusPaid,
		Currency:    "USD",
		DueDate:     dueDate,
		PaidDate:    &paidDate,
		TotalAmount: amount,
		AmountPaid:  amount,
		BalanceDue:  decimal.Zero,
		CreatedAt:   dueDate.AddDate(0, 0, -30),
		Payments: []invoice.Payment{
			{ID: uuid.New(), Amount: amount, Status: invoice.PaymentCompleted, PaymentDate: paidDate},
		},
	}
}

func TestSummary_PaymentBehaviorThresholds(t *testing.T) {
	type testCase struct {
		name    string
		onTime  int
		late    int
		want    report.PaymentBehavior
		rate    float64
	}

	tests := []testCase{
		{name: "Excellent", onTime: 9, late: 1, want: report.BehaviorExcellent, rate: 0.9},
		{name: "Good", onTime: 7, late: 3, want: report.BehaviorGood, rate: 0.7},
		{name: "Average", onTime: 4, late: 6, want: report.BehaviorAverage, rate: 0.4},
		{name: "Poor", onTime: 3, late: 7, want: report.BehaviorPoor, rate: 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &client.Client{ID: uuid.New(), Status: client.StatusActive}

			var invoices []*invoice.Invoice

			due := now.AddDate(0, 0, -10)
			for i := 0; i < tt.onTime; i++ {
				invoices = append(invoices, paidInvoiceFor(c.ID, 100, due.AddDate(0, 0, -1), due))
			}

			for i := 0; i < tt.late; i++ {
				invoices = append(invoices, paidInvoiceFor(c.ID, 100, due.AddDate(0, 0, 5), due))
			}

			s := report.Summary(c, invoices, nil, nil, now)

			assert.InDelta(t, tt.rate, s.OnTimePaymentRate, 0.0001)
			assert.Equal(t, tt.want, s.PaymentBehavior)
		})
	}
}

func TestSummary_PaidOnDueDateIsOnTime(t *testing.T) {
	c := &client.Client{ID: uuid.New()}
	due := now.AddDate(0, 0, -10)

	s := report.Summary(c, []*invoice.Invoice{paidInvoiceFor(c.ID, 100, due, due)}, nil, nil, now)
	assert.InDelta(t, 1.0, s.OnTimePaymentRate, 0.0001)
}

func TestSummary_Engagement(t *testing.T) {
	c := &client.Client{ID: uuid.New()}

	activeProject := &project.Project{ID: uuid.New(), ClientID: c.ID, Status: project.StatusActive, CreatedAt: now.AddDate(0, 0, -5)}

	recent := report.Summary(c, nil, []*quote.Quote{
		{ID: uuid.New(), ClientID: c.ID, Status: quote.StatusDraft, CreatedAt: now.AddDate(0, 0, -10)},
	}, []*project.Project{activeProject}, now)
	assert.Equal(t, report.EngagementHigh, recent.EngagementLevel)

	// Recent activity but no active project: medium.
	doneProject := &project.Project{ID: uuid.New(), ClientID: c.ID, Status: project.StatusCompleted, CreatedAt: now.AddDate(0, 0, -5)}
	medium := report.Summary(c, nil, nil, []*project.Project{doneProject}, now)
	assert.Equal(t, report.EngagementMedium, medium.EngagementLevel)

	// Stale activity: low.
	stale := report.Summary(c, nil, []*quote.Quote{
		{ID: uuid.New(), ClientID: c.ID, Status: quote.StatusDraft, CreatedAt: now.AddDate(0, 0, -120)},
	}, nil, now)
	assert.Equal(t, report.EngagementLow, stale.EngagementLevel)

	// No activity at all: low.
	silent := report.Summary(c, nil, nil, nil, now)
	assert.Equal(t, report.EngagementLow, silent.EngagementLevel)
}

func TestSummary_FinancialFields(t *testing.T) {
	c := &client.Client{ID: uuid.New(), CompanyName: "Acme", ContactName: "Ann"}

	paid := paidInvoiceFor(c.ID, 1200, now.AddDate(0, 0, -40), now.AddDate(0, 0, -35))
	open := outstandingInvoice(c.ID, 500, 20)

	otherClient := outstandingInvoice(uuid.New(), 9999, 5)

	pending := &quote.Quote{ID: uuid.New(), ClientID: c.ID, Status: quote.StatusSent, CreatedAt: now.AddDate(0, 0, -3)}

	s := report.Summary(c, []*invoice.Invoice{paid, open, otherClient}, []*quote.Quote{pending}, nil, now)

	assert.Equal(t, "Acme", s.CompanyName)
	assert.True(t, decimal.NewFromInt(1200).Equal(s.TotalPaidAmount))
	assert.True(t, decimal.NewFromInt(500).Equal(s.OutstandingBalance))
	assert.True(t, s.HasOverdueInvoices)
	assert.True(t, s.HasPendingQuotes)
	assert.Equal(t, report.TierMedium, s.RevenueTier)
	require.NotNil(t, s.LastPaymentDate)
	assert.Equal(t, now.AddDate(0, 0, -40), *s.LastPaymentDate)
}

func TestSummary_PersistedOverdueInvoice(t *testing.T) {
	c := &client.Client{ID: uuid.New()}

	marked := outstandingInvoice(c.ID, 200, 40)
	marked.Status = invoice.StatusOverdue

	s := report.Summary(c, []*invoice.Invoice{marked}, nil, nil, now)
	assert.True(t, s.HasOverdueInvoices)
	assert.True(t, decimal.NewFromInt(200).Equal(s.OutstandingBalance))
}

func TestSummary_RevenueTiers(t *testing.T) {
	c := &client.Client{ID: uuid.New()}
	due := now.AddDate(0, 0, -10)

	low := report.Summary(c, []*invoice.Invoice{paidInvoiceFor(c.ID, 999, due, due)}, nil, nil, now)
	assert.Equal(t, report.TierLow, low.RevenueTier)

	mid := report.Summary(c, []*invoice.Invoice{paidInvoiceFor(c.ID, 1000, due, due)}, nil, nil, now)
	assert.Equal(t, report.TierMedium, mid.RevenueTier)

	high := report.Summary(c, []*invoice.Invoice{paidInvoiceFor(c.ID, 10000, due, due)}, nil, nil, now)
	assert.Equal(t, report.TierHigh, high.RevenueTier)
}

func TestSummary_DoesNotMutateInputs(t *testing.T) {
	c := &client.Client{ID: uuid.New()}
	inv := outstandingInvoice(c.ID, 500, 20)
	before := *inv

	report.Summary(c, []*invoice.Invoice{inv}, nil, nil, now)

	assert.Equal(t, before, *inv)
}
