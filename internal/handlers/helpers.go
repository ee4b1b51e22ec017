package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/baraa-scout/salespoint/internal/auth"
	"github.com/baraa-scout/salespoint/internal/models"
)

// currentSalesman resolves the session's salesman row. Handlers behind
// RequireAuth can still get a miss here if the account was deleted mid-flight.
func currentSalesman(db *gorm.DB, r *http.Request) (*models.Salesman, bool) {
	id, ok := auth.SalesmanIDFromContext(r.Context())
	if !ok {
		return nil, false
	}
	var s models.Salesman
	if err := db.First(&s, id).Error; err != nil {
		return nil, false
	}
	return &s, true
}
