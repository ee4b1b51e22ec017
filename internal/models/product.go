package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product keeps the legacy "product" column name for continuity with
// existing data. Soft delete via Active=false; past invoice items hold
// their own name/price snapshot so edits here never rewrite history.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"column:product;size:120;not null" json:"product"`
	Price       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Category    string          `gorm:"size:60" json:"category,omitempty"`
	Description string          `gorm:"size:255" json:"description,omitempty"`
	Active      bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time       `json:"created_date"`
	UpdatedAt   time.Time       `json:"updated_date"`
}

func (Product) TableName() string { return "products" }
