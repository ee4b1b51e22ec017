package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/baraa-scout/salespoint/internal/httpx"
	"github.com/baraa-scout/salespoint/internal/models"
	"github.com/baraa-scout/salespoint/internal/services"
	"github.com/baraa-scout/salespoint/internal/store"
)

// ReportHandler serves the admin sales report.
type ReportHandler struct {
	Store *store.Store
}

func NewReportHandler(s *store.Store) *ReportHandler { return &ReportHandler{Store: s} }

const reportDateLayout = "2006-01-02"

type reportRow struct {
	Number      string          `json:"invoice_number"`
	Customer    string          `json:"customer"`
	Date        time.Time       `json:"date"`
	Total       decimal.Decimal `json:"total_amount"`
	Paid        decimal.Decimal `json:"paid_amount"`
	Unpaid      decimal.Decimal `json:"unpaid_amount"`
	Status      string          `json:"status"`
	StatusLabel string          `json:"status_label"`
	CreatedBy   string          `json:"created_by"`
}

// Sales: GET /reports/sales?from=&to= (dates as 2006-01-02, default last 30
// days). Aggregates paid/unpaid totals over the window, admin only.
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(reportDateLayout, v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_from_date", nil)
			return
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(reportDateLayout, v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_to_date", nil)
			return
		}
		// Inclusive upper bound: the whole "to" day counts.
		to = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if to.Before(from) {
		httpx.JSONError(w, http.StatusBadRequest, "from_after_to", nil)
		return
	}

	var invoices []models.Invoice
	err := h.Store.DB.Preload("Customer").
		Where("date >= ? AND date <= ?", from, to).
		Order("date desc").
		Find(&invoices).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_report", nil)
		return
	}

	total, paid, unpaid := decimal.Zero, decimal.Zero, decimal.Zero
	rows := make([]reportRow, 0, len(invoices))
	for _, inv := range invoices {
		total = total.Add(inv.TotalAmount)
		paid = paid.Add(inv.PaidAmount)
		unpaid = unpaid.Add(inv.UnpaidAmount)
		rows = append(rows, reportRow{
			Number:      inv.Number,
			Customer:    inv.Customer.Name,
			Date:        inv.Date,
			Total:       inv.TotalAmount,
			Paid:        inv.PaidAmount,
			Unpaid:      inv.UnpaidAmount,
			Status:      inv.Status,
			StatusLabel: services.StatusLabel(inv.Status),
			CreatedBy:   inv.CreatedBy,
		})
	}
	average := decimal.Zero
	if len(invoices) > 0 {
		average = total.Div(decimal.NewFromInt(int64(len(invoices)))).Round(4)
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"from":          from.Format(reportDateLayout),
		"to":            to.Format(reportDateLayout),
		"count":         len(invoices),
		"total_amount":  total,
		"paid_amount":   paid,
		"unpaid_amount": unpaid,
		"average":       average,
		"invoices":      rows,
	})
}
