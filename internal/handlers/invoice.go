package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/baraa-scout/salespoint/internal/docs"
	"github.com/baraa-scout/salespoint/internal/httpx"
	"github.com/baraa-scout/salespoint/internal/message"
	"github.com/baraa-scout/salespoint/internal/models"
	"github.com/baraa-scout/salespoint/internal/services"
	"github.com/baraa-scout/salespoint/internal/store"
	"github.com/baraa-scout/salespoint/internal/validation"
)

type InvoiceHandler struct {
	Store      *store.Store
	Service    *services.InvoiceService
	InvoiceDir string
}

func NewInvoiceHandler(s *store.Store, svc *services.InvoiceService, invoiceDir string) *InvoiceHandler {
	return &InvoiceHandler{Store: s, Service: svc, InvoiceDir: invoiceDir}
}

type invoiceResponse struct {
	models.Invoice
	StatusLabel  string `json:"status_label"`
	WhatsAppLink string `json:"whatsapp_link,omitempty"`
}

func toResponse(inv models.Invoice) invoiceResponse {
	return invoiceResponse{Invoice: inv, StatusLabel: services.StatusLabel(inv.Status)}
}

// Create: POST /invoices – customer_id, cart items, paid_amount. The service
// owns the business rules; on success the response carries the persisted
// invoice plus a ready WhatsApp link for the shared message.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	salesman, ok := currentSalesman(h.Store.DB, r)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input struct {
		CustomerID uint                `json:"customer_id"`
		Items      []services.CartItem `json:"items"`
		PaidAmount decimal.Decimal     `json:"paid_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if input.CustomerID == 0 {
		v["customer_id"] = "required"
	}
	for i, it := range input.Items {
		field := "items[" + strconv.Itoa(i) + "]"
		validation.PositiveInt(field+".quantity", it.Quantity, v)
		validation.NonNegativeAmount(field+".price", it.Price, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var customer models.Customer
	if err := h.Store.DB.First(&customer, input.CustomerID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "customer_not_found", nil)
		return
	}

	inv, err := h.Service.Create(customer, input.Items, input.PaidAmount, salesman.Username)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			httpx.JSONError(w, http.StatusBadRequest, "empty_cart", nil)
		case errors.Is(err, services.ErrInvalidQuantity), errors.Is(err, services.ErrInvalidPrice):
			httpx.JSONError(w, http.StatusBadRequest, "invalid_cart_item", nil)
		default:
			logrus.WithError(err).Error("invoice create failed")
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_invoice", nil)
		}
		return
	}
	h.Store.InvalidateTable(store.TableInvoices)
	h.Store.InvalidateTable(store.TableInvoiceItems)

	text, _ := message.InvoiceText(customer, inv.Items, inv.Number, inv.PaidAmount, inv.Date)
	resp := toResponse(*inv)
	resp.WhatsAppLink = message.WhatsAppLink(customer.Phone, text)
	logrus.WithFields(logrus.Fields{
		"invoice": inv.Number,
		"total":   inv.TotalAmount.StringFixed(2),
		"by":      salesman.Username,
	}).Info("invoice created")
	httpx.JSON(w, http.StatusCreated, resp)
}

// List: GET /invoices – admins see every invoice, salesmen only their own.
// Optional status filter and q (customer name or invoice number). The summary
// block aggregates the filtered set before pagination.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	salesman, ok := currentSalesman(h.Store.DB, r)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	scope := ""
	if !salesman.IsAdmin() {
		scope = salesman.Username
	}
	invoices, err := h.Store.Invoices(scope)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filtered := invoices[:0:0]
		for _, inv := range invoices {
			if inv.Status == status {
				filtered = append(filtered, inv)
			}
		}
		invoices = filtered
	}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		lower := strings.ToLower(q)
		filtered := invoices[:0:0]
		for _, inv := range invoices {
			if strings.Contains(strings.ToLower(inv.Customer.Name), lower) ||
				strings.Contains(strings.ToLower(inv.Number), lower) {
				filtered = append(filtered, inv)
			}
		}
		invoices = filtered
	}

	total, paid, unpaid := decimal.Zero, decimal.Zero, decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.TotalAmount)
		paid = paid.Add(inv.PaidAmount)
		unpaid = unpaid.Add(inv.UnpaidAmount)
	}

	limit, offset := pageParams(r, 50)
	count := len(invoices)
	pageItems := page(invoices, limit, offset)
	items := make([]invoiceResponse, 0, len(pageItems))
	for _, inv := range pageItems {
		items = append(items, toResponse(inv))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":  items,
		"total":  count,
		"limit":  limit,
		"offset": offset,
		"summary": map[string]any{
			"count":        count,
			"total_amount": total,
			"paid_amount":  paid,
			"unpaid":       unpaid,
		},
	})
}

// Items: GET /invoices/items?id= – the snapshot lines of one invoice.
func (h *InvoiceHandler) Items(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.loadInvoice(w, r)
	if !ok {
		return
	}
	items, err := h.Store.InvoiceItems(inv.ID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_items", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoice": toResponse(*inv), "items": items})
}

// Delete: POST /invoices/delete {number}. Admins may delete any invoice,
// salesmen only ones they created.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	salesman, ok := currentSalesman(h.Store.DB, r)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input struct {
		Number string `json:"number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || strings.TrimSpace(input.Number) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_number", nil)
		return
	}
	var inv models.Invoice
	if err := h.Store.DB.Where("invoice_number = ?", input.Number).First(&inv).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if !salesman.IsAdmin() && inv.CreatedBy != salesman.Username {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	if err := h.Service.Delete(inv.Number); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_invoice", nil)
		return
	}
	h.Store.InvalidateTable(store.TableInvoices)
	h.Store.InvalidateTable(store.TableInvoiceItems)
	logrus.WithFields(logrus.Fields{"invoice": inv.Number, "by": salesman.Username}).Info("invoice deleted")
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// WhatsApp: GET /invoices/whatsapp?id= – rebuilds the share message from the
// stored snapshots and returns the text plus the wa.me link.
func (h *InvoiceHandler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.loadInvoice(w, r)
	if !ok {
		return
	}
	items, err := h.Store.InvoiceItems(inv.ID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_items", nil)
		return
	}
	text, total := message.InvoiceText(inv.Customer, items, inv.Number, inv.PaidAmount, time.Now())
	httpx.JSON(w, http.StatusOK, map[string]any{
		"text":  text,
		"link":  message.WhatsAppLink(inv.Customer.Phone, text),
		"total": total,
	})
}

// HTML: GET /invoices/html?id= – renders the printable invoice, archives a
// copy under the invoice directory, and streams it as a download.
func (h *InvoiceHandler) HTML(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.loadInvoice(w, r)
	if !ok {
		return
	}
	data, err := docs.InvoiceHTML(*inv, inv.Customer)
	if err != nil {
		logrus.WithError(err).Error("invoice html render failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render_invoice", nil)
		return
	}
	h.archive(inv.Number, "html", data)
	httpx.Download(w, "text/html; charset=utf-8", inv.Number+".html", data)
}

// PDF: GET /invoices/pdf?id= – same as HTML but through the PDF engine.
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.loadInvoice(w, r)
	if !ok {
		return
	}
	data, err := docs.InvoicePDF(*inv, inv.Customer)
	if err != nil {
		logrus.WithError(err).Error("invoice pdf render failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render_invoice", nil)
		return
	}
	h.archive(inv.Number, "pdf", data)
	httpx.Download(w, "application/pdf", inv.Number+".pdf", data)
}

// loadInvoice fetches the invoice named by ?id= with its items and customer,
// enforcing the admin-or-creator visibility rule. Writes the error response
// itself on failure.
func (h *InvoiceHandler) loadInvoice(w http.ResponseWriter, r *http.Request) (*models.Invoice, bool) {
	salesman, ok := currentSalesman(h.Store.DB, r)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	id, err := strconv.ParseUint(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return nil, false
	}
	var inv models.Invoice
	err = h.Store.DB.Preload("Customer").Preload("Items").First(&inv, uint(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return nil, false
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoice", nil)
		return nil, false
	}
	if !salesman.IsAdmin() && inv.CreatedBy != salesman.Username {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return nil, false
	}
	return &inv, true
}

func (h *InvoiceHandler) archive(number, ext string, data []byte) {
	if h.InvoiceDir == "" {
		return
	}
	if _, err := docs.Archive(h.InvoiceDir, number, ext, data); err != nil {
		logrus.WithError(err).WithField("invoice", number).Warn("invoice archive failed")
	}
}
