package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/baraa-scout/salespoint/internal/auth"
	"github.com/baraa-scout/salespoint/internal/models"
	"github.com/baraa-scout/salespoint/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	// Unique in-memory database per test to avoid cross-test collisions.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Salesman{}, &models.Customer{}, &models.Product{}, &models.Invoice{}, &models.InvoiceItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store.New(db)
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func seedSalesman(t *testing.T, db *gorm.DB, username, password, role string) models.Salesman {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	s := models.Salesman{Username: username, Password: string(hash), Name: username, Role: role, Active: true}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("seed salesman: %v", err)
	}
	return s
}

func seedCustomer(t *testing.T, db *gorm.DB, name, phone string) models.Customer {
	t.Helper()
	c := models.Customer{Name: name, Phone: phone, CreatedBy: "admin"}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return c
}

// jsonReq builds an authenticated JSON request for the given salesman.
func jsonReq(method, target, body string, salesmanID uint) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if salesmanID != 0 {
		req = req.WithContext(auth.WithSalesmanID(req.Context(), salesmanID))
	}
	return req
}
