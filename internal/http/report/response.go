package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pcruz7/lancer/internal/client"
	"github.com/pcruz7/lancer/internal/report"
)

type dashboardResponse struct {
	TotalClients    int             `json:"total_clients"`
	TotalProjects   int             `json:"total_projects"`
	TotalQuotes     int             `json:"total_quotes"`
	TotalInvoices   int             `json:"total_invoices"`
	PendingQuotes   int             `json:"pending_quotes"`
	AcceptedQuotes  int             `json:"accepted_quotes"`
	ConversionRate  int             `json:"conversion_rate"`
	ActiveProjects  int             `json:"active_projects"`
	OverdueInvoices int             `json:"overdue_invoices"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalPaidAmount decimal.Decimal `json:"total_paid_amount"`
	TotalBalanceDue decimal.Decimal `json:"total_balance_due"`
}

func toDashboardResponse(stats report.DashboardStats) dashboardResponse {
	return dashboardResponse{
		TotalClients:    stats.TotalClients,
		TotalProjects:   stats.TotalProjects,
		TotalQuotes:     stats.TotalQuotes,
		TotalInvoices:   stats.TotalInvoices,
		PendingQuotes:   stats.PendingQuotes,
		AcceptedQuotes:  stats.AcceptedQuotes,
		ConversionRate:  stats.ConversionRate,
		ActiveProjects:  stats.ActiveProjects,
		OverdueInvoices: stats.OverdueInvoices,
		TotalRevenue:    stats.TotalRevenue,
		TotalPaidAmount: stats.TotalPaidAmount,
		TotalBalanceDue: stats.TotalBalanceDue,
	}
}

type agingRowResponse struct {
	ClientID     uuid.UUID       `json:"client_id"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	Current      decimal.Decimal `json:"current"`
	Days1To30    decimal.Decimal `json:"days_1_30"`
	Days31To60   decimal.Decimal `json:"days_31_60"`
	Days61To90   decimal.Decimal `json:"days_61_90"`
	Days90Plus   decimal.Decimal `json:"days_90_plus"`
}

func toAgingResponse(rows []report.ClientAging) []agingRowResponse {
	resp := make([]agingRowResponse, len(rows))
	for i, row := range rows {
		resp[i] = agingRowResponse{
			ClientID:     row.ClientID,
			TotalBalance: row.TotalBalance,
			Current:      row.Current,
			Days1To30:    row.Days1To30,
			Days31To60:   row.Days31To60,
			Days61To90:   row.Days61To90,
			Days90Plus:   row.Days90Plus,
		}
	}

	return resp
}

type summaryResponse struct {
	ClientID           uuid.UUID              `json:"client_id"`
	CompanyName        string                 `json:"company_name,omitempty"`
	ContactName        string                 `json:"contact_name,omitempty"`
	Status             client.Status          `json:"status"`
	ProjectCount       int                    `json:"project_count"`
	ActiveProjectCount int                    `json:"active_project_count"`
	TotalPaidAmount    decimal.Decimal        `json:"total_paid_amount"`
	OutstandingBalance decimal.Decimal        `json:"outstanding_balance"`
	OnTimePaymentRate  float64                `json:"on_time_payment_rate"`
	PaymentBehavior    report.PaymentBehavior `json:"payment_behavior"`
	RevenueTier        report.RevenueTier     `json:"revenue_tier"`
	HasOverdueInvoices bool                   `json:"has_overdue_invoices"`
	HasPendingQuotes   bool                   `json:"has_pending_quotes"`
	LastPaymentDate    *time.Time             `json:"last_payment_date,omitempty"`
	EngagementLevel    report.EngagementLevel `json:"engagement_level"`
}

func toSummaryResponse(s report.ClientSummary) summaryResponse {
	return summaryResponse{
		ClientID:           s.ClientID,
		CompanyName:        s.CompanyName,
		ContactName:        s.ContactName,
		Status:             s.Status,
		ProjectCount:       s.ProjectCount,
		ActiveProjectCount: s.ActiveProjectCount,
		TotalPaidAmount:    s.TotalPaidAmount,
		OutstandingBalance: s.OutstandingBalance,
		OnTimePaymentRate:  s.OnTimePaymentRate,
		PaymentBehavior:    s.PaymentBehavior,
		RevenueTier:        s.RevenueTier,
		HasOverdueInvoices: s.HasOverdueInvoices,
		HasPendingQuotes:   s.HasPendingQuotes,
		LastPaymentDate:    s.LastPaymentDate,
		EngagementLevel:    s.EngagementLevel,
	}
}
