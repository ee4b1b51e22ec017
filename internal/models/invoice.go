package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice row. TotalAmount/PaidAmount/UnpaidAmount/Status are computed by the
// invoice service before persistence and stored redundantly, matching the
// historical schema; they are never trusted from the client.
type Invoice struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Number       string          `gorm:"column:invoice_number;size:40;not null;uniqueIndex" json:"invoice_number"`
	CustomerID   uint            `gorm:"not null;index" json:"customer_id"`
	Customer     Customer        `gorm:"foreignKey:CustomerID" json:"customer"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	PaidAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"paid_amount"`
	UnpaidAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unpaid_amount"`
	Status       string          `gorm:"size:40;not null" json:"status"`
	Date         time.Time       `gorm:"not null;index" json:"date"`
	CreatedBy    string          `gorm:"size:60;index" json:"created_by"`
	Salesman     string          `gorm:"size:60" json:"salesman"`
	Items        []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	CreatedAt    time.Time       `json:"-"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem snapshots product name and unit price at creation time.
type InvoiceItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	InvoiceID uint            `gorm:"not null;index" json:"invoice_id"`
	Product   string          `gorm:"column:product;size:120;not null" json:"product"`
	Price     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

// LineTotal is Price × Quantity.
func (it InvoiceItem) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
