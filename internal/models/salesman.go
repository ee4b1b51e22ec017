package models

import "time"

const (
	RoleAdmin    = "admin"
	RoleSalesman = "salesman"
)

// Salesman is an application account. Deactivation is soft (Active=false)
// so invoices created by a former salesman keep a valid created_by.
type Salesman struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:60;not null;uniqueIndex" json:"username"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt digest (legacy sha256 hex accepted on login)
	Role      string    `gorm:"size:20;not null;default:'salesman'" json:"role"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_date"`
}

// TableName pins the legacy collection name.
func (Salesman) TableName() string { return "salesmen" }

func (s *Salesman) IsAdmin() bool { return s.Role == RoleAdmin }
