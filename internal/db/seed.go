package db

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/baraa-scout/salespoint/internal/models"
)

// SeedDefaultAdmin inserts the default admin account the first time the
// salesmen table is observed empty. Idempotent: any existing salesman row,
// active or not, suppresses the insert.
func SeedDefaultAdmin(db *gorm.DB, username, password string) error {
	var count int64
	if err := db.Model(&models.Salesman{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.Salesman{
		Username: username,
		Password: string(hash),
		Role:     models.RoleAdmin,
		Name:     "Administrator",
		Active:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	logrus.WithField("username", username).Info("seeded default admin account")
	return nil
}
