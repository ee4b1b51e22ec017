package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/baraa-scout/salespoint/internal/httpx"
	"github.com/baraa-scout/salespoint/internal/models"
	"github.com/baraa-scout/salespoint/internal/store"
	"github.com/baraa-scout/salespoint/internal/validation"
)

type ProductHandler struct {
	Store *store.Store
}

func NewProductHandler(s *store.Store) *ProductHandler { return &ProductHandler{Store: s} }

// List: GET /products – active products by default; all=1 includes the
// soft-deleted ones for admins. Optional q matches name or category.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if r.URL.Query().Get("all") == "1" {
		if s, ok := currentSalesman(h.Store.DB, r); ok && s.IsAdmin() {
			activeOnly = false
		}
	}
	products, err := h.Store.Products(activeOnly)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q != "" {
		lower := strings.ToLower(q)
		filtered := products[:0:0]
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Name), lower) || strings.Contains(strings.ToLower(p.Category), lower) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	limit, offset := pageParams(r, 50)
	total := len(products)
	products = page(products, limit, offset)
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": total, "limit": limit, "offset": offset})
}

type productInput struct {
	Name        string          `json:"product"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// Create: POST /products (admin). Duplicate names are rejected by a
// case-insensitive scan over all products, inactive included.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input productInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	input.Name = strings.TrimSpace(input.Name)

	v := validation.Violations{}
	validation.Required("product", input.Name, v)
	validation.PositiveAmount("price", input.Price, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	existing, err := h.Store.Products(false)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_check_duplicates", nil)
		return
	}
	lower := strings.ToLower(input.Name)
	for _, p := range existing {
		if strings.ToLower(p.Name) == lower {
			httpx.JSONError(w, http.StatusConflict, "product_exists", nil)
			return
		}
	}

	product := models.Product{
		Name:        input.Name,
		Price:       input.Price,
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		Active:      true,
	}
	if err := h.Store.DB.Create(&product).Error; err != nil {
		httpx.JSONError(w, http.StatusConflict, "product_exists", nil)
		return
	}
	h.Store.InvalidateTable(store.TableProducts)
	httpx.JSON(w, http.StatusCreated, product)
}

// Update: POST /products/update (admin). Only provided fields change; Active
// may be flipped here to reactivate a soft-deleted product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ID          uint             `json:"id"`
		Price       *decimal.Decimal `json:"price"`
		Category    *string          `json:"category"`
		Description *string          `json:"description"`
		Active      *bool            `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	var product models.Product
	if err := h.Store.DB.First(&product, input.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}

	updates := map[string]any{}
	if input.Price != nil {
		if input.Price.Sign() <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"price": "must_be_positive"})
			return
		}
		updates["price"] = *input.Price
	}
	if input.Category != nil {
		updates["category"] = strings.TrimSpace(*input.Category)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if len(updates) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "no_updates", nil)
		return
	}
	if err := h.Store.DB.Model(&product).Updates(updates).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_product", nil)
		return
	}
	h.Store.InvalidateTable(store.TableProducts)
	httpx.JSON(w, http.StatusOK, product)
}

// Delete: POST /products/delete (admin) – soft delete. The row stays so past
// invoice snapshots keep a referent; it just leaves the active listing.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ID uint `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var product models.Product
	if err := h.Store.DB.First(&product, input.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err := h.Store.DB.Model(&product).Update("active", false).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_product", nil)
		return
	}
	h.Store.InvalidateTable(store.TableProducts)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// Import: POST /products/import (admin) – multipart CSV with required
// product,price columns and optional category,description. Rows whose product
// name already exists (case-insensitive) are skipped, not overwritten.
func (h *ProductHandler) Import(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "missing_file", nil)
		return
	}
	defer file.Close()

	added, skipped, err := h.importCSV(file)
	if err != nil {
		var ce csvError
		if errors.As(err, &ce) {
			httpx.JSONError(w, http.StatusBadRequest, ce.Error(), nil)
			return
		}
		logrus.WithError(err).Error("product csv import failed")
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_import_products", nil)
		return
	}
	if added > 0 {
		h.Store.InvalidateTable(store.TableProducts)
	}
	logrus.WithFields(logrus.Fields{"added": added, "skipped": skipped}).Info("product csv import")
	httpx.JSON(w, http.StatusOK, map[string]int{"added": added, "skipped": skipped})
}

type csvError string

func (e csvError) Error() string { return string(e) }

const (
	errCSVRead    = csvError("invalid_csv")
	errCSVColumns = csvError("csv_requires_product_and_price_columns")
)

func (h *ProductHandler) importCSV(src io.Reader) (added, skipped int, err error) {
	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return 0, 0, errCSVRead
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	prodCol, okP := cols["product"]
	priceCol, okQ := cols["price"]
	if !okP || !okQ {
		return 0, 0, errCSVColumns
	}
	catCol, hasCat := cols["category"]
	descCol, hasDesc := cols["description"]

	existing, err := h.Store.Products(false)
	if err != nil {
		return 0, 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[strings.ToLower(p.Name)] = true
	}

	var batch []models.Product
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, 0, errCSVRead
		}
		if prodCol >= len(record) || priceCol >= len(record) {
			skipped++
			continue
		}
		name := strings.TrimSpace(record[prodCol])
		price, perr := decimal.NewFromString(strings.TrimSpace(record[priceCol]))
		if name == "" || perr != nil || price.Sign() <= 0 {
			skipped++
			continue
		}
		if seen[strings.ToLower(name)] {
			skipped++
			continue
		}
		p := models.Product{Name: name, Price: price, Active: true}
		if hasCat && catCol < len(record) {
			p.Category = strings.TrimSpace(record[catCol])
		}
		if hasDesc && descCol < len(record) {
			p.Description = strings.TrimSpace(record[descCol])
		}
		seen[strings.ToLower(name)] = true
		batch = append(batch, p)
	}
	if len(batch) > 0 {
		if err := h.Store.DB.Create(&batch).Error; err != nil {
			return 0, 0, err
		}
	}
	return len(batch), skipped, nil
}
