package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/baraa-scout/salespoint/internal/auth"
	"github.com/baraa-scout/salespoint/internal/models"
)

func TestCustomerCreateAndList(t *testing.T) {
	st := setupTestStore(t)
	s := seedSalesman(t, st.DB, "sara", "secret", models.RoleSalesman)
	h := NewCustomerHandler(st)

	w := httptest.NewRecorder()
	h.Create(w, jsonReq(http.MethodPost, "/customers", `{"name":"Ahmad","phone":"0791234567","address":"Amman"}`, s.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	w2 := httptest.NewRecorder()
	h.List(w2, jsonReq(http.MethodGet, "/customers", "", s.ID))
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w2.Code)
	}
	var payload struct {
		Items []models.Customer `json:"items"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(w2.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Total != 1 || payload.Items[0].Name != "Ahmad" {
		t.Fatalf("unexpected listing: %+v", payload)
	}
	if payload.Items[0].CreatedBy != "sara" {
		t.Fatalf("expected created_by sara, got %s", payload.Items[0].CreatedBy)
	}
}

func TestCustomerCreateFormEncoded(t *testing.T) {
	st := setupTestStore(t)
	s := seedSalesman(t, st.DB, "sara", "secret", models.RoleSalesman)
	h := NewCustomerHandler(st)

	form := url.Values{"name": {"Lina"}, "phone": {"0788888888"}}
	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(auth.WithSalesmanID(req.Context(), s.ID))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
}

// Both duplicate directions reject: same name with a different phone, and the
// same phone with a different name.
func TestCustomerDuplicateNameOrPhone(t *testing.T) {
	st := setupTestStore(t)
	s := seedSalesman(t, st.DB, "sara", "secret", models.RoleSalesman)
	seedCustomer(t, st.DB, "Ahmad", "0791234567")
	h := NewCustomerHandler(st)

	cases := []string{
		`{"name":"AHMAD","phone":"0790000000"}`,
		`{"name":"Someone Else","phone":"0791234567"}`,
	}
	for _, body := range cases {
		w := httptest.NewRecorder()
		h.Create(w, jsonReq(http.MethodPost, "/customers", body, s.ID))
		if w.Code != http.StatusConflict {
			t.Fatalf("body %s: expected 409 got %d", body, w.Code)
		}
		if !strings.Contains(w.Body.String(), "customer_exists") {
			t.Fatalf("body %s: unexpected error payload %s", body, w.Body.String())
		}
	}
}

func TestCustomerCreateValidation(t *testing.T) {
	st := setupTestStore(t)
	s := seedSalesman(t, st.DB, "sara", "secret", models.RoleSalesman)
	h := NewCustomerHandler(st)

	w := httptest.NewRecorder()
	h.Create(w, jsonReq(http.MethodPost, "/customers", `{"name":"  ","phone":"abc"}`, s.ID))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "validation_failed") {
		t.Fatalf("expected violations, got %s", w.Body.String())
	}
}

func TestCustomerListSearch(t *testing.T) {
	st := setupTestStore(t)
	s := seedSalesman(t, st.DB, "sara", "secret", models.RoleSalesman)
	seedCustomer(t, st.DB, "Ahmad Khalil", "0791111111")
	seedCustomer(t, st.DB, "Lina Odeh", "0792222222")
	h := NewCustomerHandler(st)

	w := httptest.NewRecorder()
	h.List(w, jsonReq(http.MethodGet, "/customers?q=ahmad", "", s.ID))
	var payload struct {
		Items []models.Customer `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].Name != "Ahmad Khalil" {
		t.Fatalf("unexpected search result: %+v", payload.Items)
	}

	// Phone fragment works too.
	w2 := httptest.NewRecorder()
	h.List(w2, jsonReq(http.MethodGet, "/customers?q=0792", "", s.ID))
	if err := json.Unmarshal(w2.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].Name != "Lina Odeh" {
		t.Fatalf("unexpected phone search result: %+v", payload.Items)
	}
}
