package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/baraa-scout/salespoint/internal/httpx"
	"github.com/baraa-scout/salespoint/internal/models"
	"github.com/baraa-scout/salespoint/internal/store"
	"github.com/baraa-scout/salespoint/internal/validation"
)

type CustomerHandler struct {
	Store *store.Store
}

func NewCustomerHandler(s *store.Store) *CustomerHandler { return &CustomerHandler{Store: s} }

// List: GET /customers – optional q (name or phone substring) and pagination.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Store.Customers()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_customers", nil)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q != "" {
		lower := strings.ToLower(q)
		filtered := customers[:0:0]
		for _, c := range customers {
			if strings.Contains(strings.ToLower(c.Name), lower) || strings.Contains(c.Phone, q) {
				filtered = append(filtered, c)
			}
		}
		customers = filtered
	}
	limit, offset := pageParams(r, 50)
	total := len(customers)
	customers = page(customers, limit, offset)
	httpx.JSON(w, http.StatusOK, map[string]any{"items": customers, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /customers – JSON or form. Name and phone are required, and a
// case-insensitive name match or exact phone match on an existing customer
// rejects the insert; the store's unique indexes back the check up under races.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	salesman, ok := currentSalesman(h.Store.DB, r)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var input struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Email   string `json:"email"`
		Address string `json:"address"`
	}
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		input.Name = r.FormValue("name")
		input.Phone = r.FormValue("phone")
		input.Email = r.FormValue("email")
		input.Address = r.FormValue("address")
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)

	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.Required("phone", input.Phone, v)
	if input.Phone != "" {
		validation.Phone("phone", input.Phone, v)
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	existing, err := h.Store.Customers()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_check_duplicates", nil)
		return
	}
	lower := strings.ToLower(input.Name)
	for _, c := range existing {
		if strings.ToLower(c.Name) == lower || c.Phone == input.Phone {
			httpx.JSONError(w, http.StatusConflict, "customer_exists", nil)
			return
		}
	}

	customer := models.Customer{
		Name:      input.Name,
		Phone:     input.Phone,
		Email:     strings.TrimSpace(input.Email),
		Address:   strings.TrimSpace(input.Address),
		CreatedBy: salesman.Username,
	}
	if err := h.Store.DB.Create(&customer).Error; err != nil {
		// Unique index hit after the advisory scan: same outcome for the client.
		httpx.JSONError(w, http.StatusConflict, "customer_exists", nil)
		return
	}
	h.Store.InvalidateTable(store.TableCustomers)
	httpx.JSON(w, http.StatusCreated, customer)
}

// pageParams reads limit (1..200, default def) and page (1-based) query params.
func pageParams(r *http.Request, def int) (limit, offset int) {
	limit = def
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	return limit, offset
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
