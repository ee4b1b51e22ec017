package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/baraa-scout/salespoint/internal/config"
	"github.com/baraa-scout/salespoint/internal/models"
)

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Port:          "0",
		InvoiceDir:    t.TempDir(),
		AdminUsername: "admin",
		AdminPassword: "admin123",
	}
}

func setupRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Salesman{}, &models.Customer{}, &models.Product{}, &models.Invoice{}, &models.InvoiceItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db, testConfig(t)), db
}

func createSalesman(t *testing.T, db *gorm.DB, username, password, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	s := models.Salesman{Username: username, Password: string(hash), Name: username, Role: role, Active: true}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("create salesman: %v", err)
	}
}

func login(t *testing.T, h http.Handler, username, password string) *http.Cookie {
	t.Helper()
	body := `{"username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login: expected session cookie")
	}
	return cookies[0]
}

func TestRouterHealth(t *testing.T) {
	h, _ := setupRouter(t)
	for _, path := range []string{"/health", "/healthz"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, w.Code)
		}
	}
}

func TestRouterRejectsUnauthenticated(t *testing.T) {
	h, _ := setupRouter(t)
	for _, path := range []string{"/customers", "/products", "/invoices", "/me"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, w.Code)
		}
	}
}

// Full pass through the middleware chain: login, carry the cookie, hit an
// authenticated endpoint.
func TestRouterSessionFlow(t *testing.T) {
	h, db := setupRouter(t)
	createSalesman(t, db, "sara", "secret", models.RoleSalesman)
	cookie := login(t, h, "sara", "secret")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var me models.Salesman
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.Username != "sara" {
		t.Fatalf("unexpected identity: %+v", me)
	}
}

func TestRouterAdminGating(t *testing.T) {
	h, db := setupRouter(t)
	createSalesman(t, db, "admin", "admin123", models.RoleAdmin)
	createSalesman(t, db, "sara", "secret", models.RoleSalesman)
	saraCookie := login(t, h, "sara", "secret")
	adminCookie := login(t, h, "admin", "admin123")

	adminPaths := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/salesmen", ""},
		{http.MethodGet, "/reports/sales", ""},
		{http.MethodPost, "/products", `{"product":"Pen","price":"1.50"}`},
	}
	for _, p := range adminPaths {
		var req *http.Request
		if p.body == "" {
			req = httptest.NewRequest(p.method, p.path, nil)
		} else {
			req = httptest.NewRequest(p.method, p.path, strings.NewReader(p.body))
			req.Header.Set("Content-Type", "application/json")
		}
		req.AddCookie(saraCookie)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("%s %s as salesman: expected 403 got %d", p.method, p.path, w.Code)
		}
	}

	// The same product create succeeds as admin.
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"product":"Pen","price":"1.50"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(adminCookie)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	// Product reads stay open to salesmen.
	req2 := httptest.NewRequest(http.MethodGet, "/products", nil)
	req2.AddCookie(saraCookie)
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w2.Code)
	}
}

// A deactivated account loses its session on the next request.
func TestRouterStaleSessionCleared(t *testing.T) {
	h, db := setupRouter(t)
	createSalesman(t, db, "sara", "secret", models.RoleSalesman)
	cookie := login(t, h, "sara", "secret")

	if err := db.Model(&models.Salesman{}).Where("username = ?", "sara").Update("active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	// The response clears the cookie.
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.Value == "" {
			return
		}
	}
	t.Fatal("expected session cookie cleared")
}
