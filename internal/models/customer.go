package models

import "time"

type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null;index" json:"name"`
	Phone     string    `gorm:"size:32;not null;uniqueIndex" json:"phone"`
	Email     string    `gorm:"size:120" json:"email,omitempty"`
	Address   string    `gorm:"size:255" json:"address,omitempty"`
	CreatedBy string    `gorm:"size:60" json:"created_by"`
	CreatedAt time.Time `json:"created_date"`
}

func (Customer) TableName() string { return "customers" }
