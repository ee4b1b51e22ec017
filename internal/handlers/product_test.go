package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baraa-scout/salespoint/internal/auth"
	"github.com/baraa-scout/salespoint/internal/models"
)

func seedProduct(t *testing.T, h *ProductHandler, body string, salesmanID uint) models.Product {
	t.Helper()
	w := httptest.NewRecorder()
	h.Create(w, jsonReq(http.MethodPost, "/products", body, salesmanID))
	if w.Code != http.StatusCreated {
		t.Fatalf("seed product: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var p models.Product
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return p
}

func TestProductCreateAndDuplicate(t *testing.T) {
	st := setupTestStore(t)
	admin := seedSalesman(t, st.DB, "admin", "admin123", models.RoleAdmin)
	h := NewProductHandler(st)

	seedProduct(t, h, `{"product":"Pen","price":"1.50","category":"stationery"}`, admin.ID)

	// Case-insensitive duplicate is rejected.
	w := httptest.NewRecorder()
	h.Create(w, jsonReq(http.MethodPost, "/products", `{"product":"PEN","price":"2.00"}`, admin.ID))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", w.Code)
	}
}

func TestProductCreateValidation(t *testing.T) {
	st := setupTestStore(t)
	admin := seedSalesman(t, st.DB, "admin", "admin123", models.RoleAdmin)
	h := NewProductHandler(st)

	for _, body := range []string{
		`{"product":"","price":"1.50"}`,
		`{"product":"Pen","price":"0"}`,
		`{"product":"Pen","price":"-3"}`,
	} {
		w := httptest.NewRecorder()
		h.Create(w, jsonReq(http.MethodPost, "/products", body, admin.ID))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400 got %d", body, w.Code)
		}
	}
}

func TestProductSoftDeleteLeavesActiveListing(t *testing.T) {
	st := setupTestStore(t)
	admin := seedSalesman(t, st.DB, "admin", "admin123", models.RoleAdmin)
	h := NewProductHandler(st)
	p := seedProduct(t, h, `{"product":"Pen","price":"1.50"}`, admin.ID)
	seedProduct(t, h, `{"product":"Notebook","price":"3.00"}`, admin.ID)

	w := httptest.NewRecorder()
	h.Delete(w, jsonReq(http.MethodPost, "/products/delete", `{"id":`+itoa(p.ID)+`}`, admin.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var payload struct {
		Items []models.Product `json:"items"`
	}
	// Default listing hides the deactivated product.
	w2 := httptest.NewRecorder()
	h.List(w2, jsonReq(http.MethodGet, "/products", "", admin.ID))
	if err := json.Unmarshal(w2.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].Name != "Notebook" {
		t.Fatalf("unexpected active listing: %+v", payload.Items)
	}

	// all=1 still shows it; the row is kept, not removed.
	w3 := httptest.NewRecorder()
	h.List(w3, jsonReq(http.MethodGet, "/products?all=1", "", admin.ID))
	if err := json.Unmarshal(w3.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("expected 2 products with all=1, got %d", len(payload.Items))
	}
}

func TestProductUpdateFields(t *testing.T) {
	st := setupTestStore(t)
	admin := seedSalesman(t, st.DB, "admin", "admin123", models.RoleAdmin)
	h := NewProductHandler(st)
	p := seedProduct(t, h, `{"product":"Pen","price":"1.50"}`, admin.ID)

	w := httptest.NewRecorder()
	h.Update(w, jsonReq(http.MethodPost, "/products/update", `{"id":`+itoa(p.ID)+`,"price":"2.25","category":"writing"}`, admin.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var updated models.Product
	if err := st.DB.First(&updated, p.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !updated.Price.Equal(d("2.25")) || updated.Category != "writing" {
		t.Fatalf("update not applied: %+v", updated)
	}
}

func TestProductImportCSV(t *testing.T) {
	st := setupTestStore(t)
	admin := seedSalesman(t, st.DB, "admin", "admin123", models.RoleAdmin)
	h := NewProductHandler(st)
	seedProduct(t, h, `{"product":"Pen","price":"1.50"}`, admin.ID)

	csvData := "product,price,category,description\n" +
		"Pen,2.00,stationery,already exists\n" + // duplicate, skipped
		"Notebook,3.00,stationery,ruled\n" +
		"Eraser,0.50,,\n" +
		",9.99,,\n" + // missing name, skipped
		"Ruler,free,,\n" // bad price, skipped

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "products.csv")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write([]byte(csvData)); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/products/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(auth.WithSalesmanID(req.Context(), admin.ID))
	w := httptest.NewRecorder()
	h.Import(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var result map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result["added"] != 2 || result["skipped"] != 3 {
		t.Fatalf("expected added=2 skipped=3, got %v", result)
	}
}

// A store failure during import is a server error, not a rejected upload.
func TestProductImportStoreFailureIs500(t *testing.T) {
	st := setupTestStore(t)
	admin := seedSalesman(t, st.DB, "admin", "admin123", models.RoleAdmin)
	h := NewProductHandler(st)
	if err := st.DB.Exec("DROP TABLE products").Error; err != nil {
		t.Fatalf("drop table: %v", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "products.csv")
	fw.Write([]byte("product,price\nPen,1.50\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/products/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(auth.WithSalesmanID(req.Context(), admin.ID))
	w := httptest.NewRecorder()
	h.Import(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "failed_to_import_products") {
		t.Fatalf("unexpected error code: %s", w.Body.String())
	}
}

func TestProductImportRequiresColumns(t *testing.T) {
	st := setupTestStore(t)
	admin := seedSalesman(t, st.DB, "admin", "admin123", models.RoleAdmin)
	h := NewProductHandler(st)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "bad.csv")
	fw.Write([]byte("name,cost\nPen,1.50\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/products/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(auth.WithSalesmanID(req.Context(), admin.ID))
	w := httptest.NewRecorder()
	h.Import(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "product_and_price") {
		t.Fatalf("unexpected error: %s", w.Body.String())
	}
}
