// Package report derives aging, dashboard and per-client portfolio figures
// from explicit document collections. Every function is pure: the caller
// passes the snapshots and the clock, nothing here mutates the inputs or
// keeps state between calls.
package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pcruz7/lancer/internal/client"
	"github.com/pcruz7/lancer/internal/invoice"
	"github.com/pcruz7/lancer/internal/project"
	"github.com/pcruz7/lancer/internal/quote"
)

// ClientAging is one client's outstanding balance bucketed by how many
// calendar days past due it is.
type ClientAging struct {
	ClientID     uuid.UUID
	TotalBalance decimal.Decimal
	Current      decimal.Decimal
	Days1To30    decimal.Decimal
	Days31To60   decimal.Decimal
	Days61To90   decimal.Decimal
	Days90Plus   decimal.Decimal
}

// Aging buckets the balance due of every outstanding invoice (not cancelled,
// not draft, not fully paid) per client. Rows come back in a stable order.
func Aging(invoices []*invoice.Invoice, now time.Time) []ClientAging {
	byClient := make(map[uuid.UUID]*ClientAging)

	for _, inv := range invoices {
		if !inv.Outstanding() {
			continue
		}

		row, ok := byClient[inv.ClientID]
		if !ok {
			row = &ClientAging{
				ClientID:     inv.ClientID,
				TotalBalance: decimal.Zero,
				Current:      decimal.Zero,
				Days1To30:    decimal.Zero,
				Days31To60:   decimal.Zero,
				Days61To90:   decimal.Zero,
				Days90Plus:   decimal.Zero,
			}
			byClient[inv.ClientID] = row
		}

		row.TotalBalance = row.TotalBalance.Add(inv.BalanceDue)

		switch days := inv.DaysOverdue(now); {
		case days == 0:
			row.Current = row.Current.Add(inv.BalanceDue)
		case days <= 30:
			row.Days1To30 = row.Days1To30.Add(inv.BalanceDue)
		case days <= 60:
			row.Days31To60 = row.Days31To60.Add(inv.BalanceDue)
		case days <= 90:
			row.Days61To90 = row.Days61To90.Add(inv.BalanceDue)
		default:
			row.Days90Plus = row.Days90Plus.Add(inv.BalanceDue)
		}
	}

	rows := make([]ClientAging, 0, len(byClient))
	for _, row := range byClient {
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ClientID.String() < rows[j].ClientID.String()
	})

	return rows
}

// DashboardStats is the portfolio-wide snapshot shown on the dashboard.
// TotalRevenue sums the total amount of fully paid invoices; TotalPaidAmount
// sums every completed payment, partial ones included.
type DashboardStats struct {
	TotalClients    int
	TotalProjects   int
	TotalQuotes     int
	TotalInvoices   int
	PendingQuotes   int
	AcceptedQuotes  int
	ConversionRate  int
	ActiveProjects  int
	OverdueInvoices int
	TotalRevenue    decimal.Decimal
	TotalPaidAmount decimal.Decimal
	TotalBalanceDue decimal.Decimal
}

// Dashboard reduces the full document collections to DashboardStats.
// ConversionRate is acceptedQuotes/totalQuotes as a whole percentage, zero
// when there are no quotes at all.
func Dashboard(quotes []*quote.Quote, invoices []*invoice.Invoice, projects []*project.Project, clients []*client.Client, now time.Time) DashboardStats {
	stats := DashboardStats{
		TotalClients:    len(clients),
		TotalProjects:   len(projects),
		TotalQuotes:     len(quotes),
		TotalInvoices:   len(invoices),
		TotalRevenue:    decimal.Zero,
		TotalPaidAmount: decimal.Zero,
		TotalBalanceDue: decimal.Zero,
	}

	for _, q := range quotes {
		switch q.EffectiveStatus(now) {
		case quote.StatusSent, quote.StatusViewed:
			stats.PendingQuotes++
		case quote.StatusAccepted:
			stats.AcceptedQuotes++
		}
	}

	if stats.TotalQuotes > 0 {
		stats.ConversionRate = int(decimal.NewFromInt(int64(stats.AcceptedQuotes * 100)).
			Div(decimal.NewFromInt(int64(stats.TotalQuotes))).
			Round(0).IntPart())
	}

	for _, p := range projects {
		if p.Status == project.StatusActive {
			stats.ActiveProjects++
		}
	}

	for _, inv := range invoices {
		if inv.Status == invoice.StatusCancelled {
			continue
		}

		if inv.Overdue(now) {
			stats.OverdueInvoices++
		}

		if inv.Status == invoice.StatusPaid {
			stats.TotalRevenue = stats.TotalRevenue.Add(inv.TotalAmount)
		}

		stats.TotalPaidAmount = stats.TotalPaidAmount.Add(inv.AmountPaid)

		if inv.Outstanding() {
			stats.TotalBalanceDue = stats.TotalBalanceDue.Add(inv.BalanceDue)
		}
	}

	return stats
}

// PaymentBehavior classifies a client's on-time payment history.
type PaymentBehavior string

const (
	BehaviorExcellent PaymentBehavior = "excellent"
	BehaviorGood      PaymentBehavior = "good"
	BehaviorAverage   PaymentBehavior = "average"
	BehaviorPoor      PaymentBehavior = "poor"
)

// Payment behavior thresholds on the on-time rate. Policy constants, pinned
// by tests.
const (
	behaviorExcellentRate = 0.9
	behaviorGoodRate      = 0.7
	behaviorAverageRate   = 0.4
)

// EngagementLevel classifies how recently the client generated activity.
type EngagementLevel string

const (
	EngagementHigh   EngagementLevel = "high"
	EngagementMedium EngagementLevel = "medium"
	EngagementLow    EngagementLevel = "low"
)

const (
	engagementRecentDays = 30
	engagementStaleDays  = 90
)

// RevenueTier ranks the client by lifetime paid revenue.
type RevenueTier string

const (
	TierHigh   RevenueTier = "high"
	TierMedium RevenueTier = "medium"
	TierLow    RevenueTier = "low"
)

var (
	tierHighFloor   = decimal.NewFromInt(10000)
	tierMediumFloor = decimal.NewFromInt(1000)
)

// ClientSummary is the derived financial and relationship profile of a single
// client. All fields are computed from the document collections at call time.
type ClientSummary struct {
	ClientID           uuid.UUID
	CompanyName        string
	ContactName        string
	Status             client.Status
	ProjectCount       int
	ActiveProjectCount int
	TotalPaidAmount    decimal.Decimal
	OutstandingBalance decimal.Decimal
	OnTimePaymentRate  float64
	PaymentBehavior    PaymentBehavior
	RevenueTier        RevenueTier
	HasOverdueInvoices bool
	HasPendingQuotes   bool
	LastPaymentDate    *time.Time
	EngagementLevel    EngagementLevel
}

// Summary computes a client's profile from the given collections, which may
// contain other clients' documents; anything not referencing c is skipped.
func Summary(c *client.Client, invoices []*invoice.Invoice, quotes []*quote.Quote, projects []*project.Project, now time.Time) ClientSummary {
	s := ClientSummary{
		ClientID:           c.ID,
		CompanyName:        c.CompanyName,
		ContactName:        c.ContactName,
		Status:             c.Status,
		TotalPaidAmount:    decimal.Zero,
		OutstandingBalance: decimal.Zero,
	}

	var lastActivity time.Time

	for _, p := range projects {
		if p.ClientID != c.ID {
			continue
		}

		s.ProjectCount++

		if p.Status == project.StatusActive {
			s.ActiveProjectCount++
		}

		lastActivity = latest(lastActivity, p.CreatedAt)
	}

	for _, q := range quotes {
		if q.ClientID != c.ID {
			continue
		}

		lastActivity = latest(lastActivity, q.CreatedAt)

		switch q.EffectiveStatus(now) {
		case quote.StatusSent, quote.StatusViewed:
			s.HasPendingQuotes = true
		}
	}

	var paidInvoices, onTime int

	for _, inv := range invoices {
		if inv.ClientID != c.ID {
			continue
		}

		lastActivity = latest(lastActivity, inv.CreatedAt)

		if inv.Status == invoice.StatusCancelled {
			continue
		}

		s.TotalPaidAmount = s.TotalPaidAmount.Add(inv.AmountPaid)

		if inv.Outstanding() {
			s.OutstandingBalance = s.OutstandingBalance.Add(inv.BalanceDue)
		}

		if inv.Overdue(now) {
			s.HasOverdueInvoices = true
		}

		for _, p := range inv.Payments {
			if p.Status != invoice.PaymentCompleted {
				continue
			}

			lastActivity = latest(lastActivity, p.PaymentDate)

			if s.LastPaymentDate == nil || p.PaymentDate.After(*s.LastPaymentDate) {
				d := p.PaymentDate
				s.LastPaymentDate = &d
			}
		}

		if inv.Status == invoice.StatusPaid && inv.PaidDate != nil {
			paidInvoices++

			if !dateOf(*inv.PaidDate).After(dateOf(inv.DueDate)) {
				onTime++
			}
		}
	}

	// A client with no settled invoices has never paid late.
	s.OnTimePaymentRate = 1
	if paidInvoices > 0 {
		s.OnTimePaymentRate = float64(onTime) / float64(paidInvoices)
	}

	s.PaymentBehavior = classifyBehavior(s.OnTimePaymentRate)
	s.RevenueTier = classifyTier(s.TotalPaidAmount)
	s.EngagementLevel = classifyEngagement(lastActivity, s.ActiveProjectCount, now)

	return s
}

func classifyBehavior(rate float64) PaymentBehavior {
	switch {
	case rate >= behaviorExcellentRate:
		return BehaviorExcellent
	case rate >= behaviorGoodRate:
		return BehaviorGood
	case rate >= behaviorAverageRate:
		return BehaviorAverage
	default:
		return BehaviorPoor
	}
}

func classifyTier(totalPaid decimal.Decimal) RevenueTier {
	switch {
	case totalPaid.GreaterThanOrEqual(tierHighFloor):
		return TierHigh
	case totalPaid.GreaterThanOrEqual(tierMediumFloor):
		return TierMedium
	default:
		return TierLow
	}
}

func classifyEngagement(lastActivity time.Time, activeProjects int, now time.Time) EngagementLevel {
	if lastActivity.IsZero() || now.Sub(lastActivity) >= engagementStaleDays*24*time.Hour {
		return EngagementLow
	}

	if activeProjects >= 1 && now.Sub(lastActivity) <= engagementRecentDays*24*time.Hour {
		return EngagementHigh
	}

	return EngagementMedium
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}

	return a
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
