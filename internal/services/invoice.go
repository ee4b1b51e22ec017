package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/baraa-scout/salespoint/internal/models"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidPrice    = errors.New("price must not be negative")
)

// CartItem is one pending invoice line: the product name and unit price are
// snapshots taken when the item entered the cart, not live product references.
type CartItem struct {
	Product  string          `json:"product"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// InvoiceService encapsulates invoice business rules: totals, payment
// classification, number generation, and the transactional write.
type InvoiceService struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{DB: db, now: time.Now}
}

// ComputeTotal sums price × quantity over the cart.
func ComputeTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// NewInvoiceNumber keeps the historical INV-<timestamp> prefix and appends a
// 32-bit random suffix so same-second invoices cannot realistically collide
// before the unique index would reject them.
func NewInvoiceNumber(now time.Time) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102150405"), suffix)
}

// Create validates the cart, derives total/unpaid/status, and persists the
// invoice row together with its item rows in one transaction. The paid amount
// is clamped to [0, total] server-side regardless of what the client sent.
func (s *InvoiceService) Create(customer models.Customer, cart []CartItem, paid decimal.Decimal, username string) (*models.Invoice, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}
	for _, it := range cart {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if it.Price.Sign() < 0 {
			return nil, ErrInvalidPrice
		}
	}

	total := ComputeTotal(cart)
	if paid.Sign() < 0 {
		paid = decimal.Zero
	}
	if paid.GreaterThan(total) {
		paid = total
	}

	now := s.now()
	inv := models.Invoice{
		Number:       NewInvoiceNumber(now),
		CustomerID:   customer.ID,
		TotalAmount:  total,
		PaidAmount:   paid,
		UnpaidAmount: UnpaidAmount(total, paid),
		Status:       PaymentStatus(total, paid),
		Date:         now,
		CreatedBy:    username,
		Salesman:     username,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		items := make([]models.InvoiceItem, 0, len(cart))
		for _, it := range cart {
			items = append(items, models.InvoiceItem{
				InvoiceID: inv.ID,
				Product:   it.Product,
				Price:     it.Price,
				Quantity:  it.Quantity,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		inv.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	inv.Customer = customer
	return &inv, nil
}

// Delete removes an invoice and its items in one transaction, matched by
// invoice number.
func (s *InvoiceService) Delete(number string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Where("invoice_number = ?", number).First(&inv).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&inv).Error
	})
}
