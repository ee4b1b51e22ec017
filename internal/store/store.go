// Package store wraps the gorm handle with a read-through TTL cache for the
// list-shaped queries the UI hits on every interaction. Any write must go
// through (or be followed by) InvalidateTable so a read after a write never
// serves pre-write data.
package store

import (
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/baraa-scout/salespoint/internal/cache"
	"github.com/baraa-scout/salespoint/internal/models"
)

const (
	TableSalesmen     = "salesmen"
	TableCustomers    = "customers"
	TableProducts     = "products"
	TableInvoices     = "invoices"
	TableInvoiceItems = "invoice_items"
)

const (
	defaultTTL  = 5 * time.Minute
	invoicesTTL = time.Minute
)

type Store struct {
	DB    *gorm.DB
	cache *cache.TTL
}

func New(db *gorm.DB) *Store {
	c := cache.New(defaultTTL)
	c.SetTableTTL(TableInvoices, invoicesTTL)
	return &Store{DB: db, cache: c}
}

// Cache exposes the underlying TTL cache (tests adjust its clock).
func (s *Store) Cache() *cache.TTL { return s.cache }

// InvalidateTable evicts every cached read derived from the table.
func (s *Store) InvalidateTable(table string) {
	s.cache.InvalidatePrefix(table)
	// Invoice items are only ever read through their invoice.
	if table == TableInvoiceItems {
		s.cache.InvalidatePrefix(TableInvoices)
	}
}

// Customers returns all customers, newest last, cached.
func (s *Store) Customers() ([]models.Customer, error) {
	key := cache.Key(TableCustomers)
	if v, ok := s.cache.Get(key); ok {
		return v.([]models.Customer), nil
	}
	var customers []models.Customer
	if err := s.DB.Order("id asc").Find(&customers).Error; err != nil {
		return nil, err
	}
	s.cache.Set(key, customers)
	return customers, nil
}

// Products returns products ordered by name; activeOnly hides soft-deleted rows.
func (s *Store) Products(activeOnly bool) ([]models.Product, error) {
	part := "all"
	if activeOnly {
		part = "active"
	}
	key := cache.Key(TableProducts, part)
	if v, ok := s.cache.Get(key); ok {
		return v.([]models.Product), nil
	}
	q := s.DB.Order("product asc")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	s.cache.Set(key, products)
	return products, nil
}

// Invoices returns invoices with their customer preloaded, newest first.
// createdBy scopes the listing to one salesman; empty means all.
func (s *Store) Invoices(createdBy string) ([]models.Invoice, error) {
	key := cache.Key(TableInvoices, "created_by="+createdBy)
	if v, ok := s.cache.Get(key); ok {
		return v.([]models.Invoice), nil
	}
	q := s.DB.Preload("Customer").Order("id desc")
	if createdBy != "" {
		q = q.Where("created_by = ?", createdBy)
	}
	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return nil, err
	}
	s.cache.Set(key, invoices)
	return invoices, nil
}

// InvoiceItems returns the snapshot lines of one invoice, cached under the
// invoices table so invoice writes evict them too.
func (s *Store) InvoiceItems(invoiceID uint) ([]models.InvoiceItem, error) {
	key := cache.Key(TableInvoices, "items", strconv.FormatUint(uint64(invoiceID), 10))
	if v, ok := s.cache.Get(key); ok {
		return v.([]models.InvoiceItem), nil
	}
	var items []models.InvoiceItem
	if err := s.DB.Where("invoice_id = ?", invoiceID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	s.cache.Set(key, items)
	return items, nil
}
