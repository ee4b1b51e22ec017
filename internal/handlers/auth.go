package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/baraa-scout/salespoint/internal/auth"
	"github.com/baraa-scout/salespoint/internal/db"
	"github.com/baraa-scout/salespoint/internal/httpx"
	"github.com/baraa-scout/salespoint/internal/models"
	"github.com/baraa-scout/salespoint/internal/store"
)

type AuthHandler struct {
	Store         *store.Store
	AdminUsername string
	AdminPassword string
}

func NewAuthHandler(s *store.Store, adminUsername, adminPassword string) *AuthHandler {
	return &AuthHandler{Store: s, AdminUsername: adminUsername, AdminPassword: adminPassword}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login: POST /login. Seeds the default admin on an empty salesmen table,
// then verifies the credentials against an active account. Failures are
// reported with one generic message regardless of cause.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var req loginRequest
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_credentials", nil)
		return
	}

	// First login on a fresh deployment creates the default admin.
	if err := db.SeedDefaultAdmin(h.Store.DB, h.AdminUsername, h.AdminPassword); err != nil {
		logrus.WithError(err).Error("default admin bootstrap failed")
	}

	var salesman models.Salesman
	err := h.Store.DB.Where("username = ?", req.Username).First(&salesman).Error
	if err != nil || !salesman.Active || !verifyPassword(h.Store.DB, &salesman, req.Password) {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Error("login lookup failed")
		}
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}

	auth.CreateSession(w, salesman.ID)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"username": salesman.Username,
		"name":     salesman.Name,
		"role":     salesman.Role,
	})
}

// verifyPassword checks bcrypt first, then the legacy unsalted sha256 hex
// digest written by older deployments; a legacy match is upgraded in place.
func verifyPassword(gdb *gorm.DB, salesman *models.Salesman, password string) bool {
	if bcrypt.CompareHashAndPassword([]byte(salesman.Password), []byte(password)) == nil {
		return true
	}
	if len(salesman.Password) != 64 {
		return false
	}
	sum := sha256.Sum256([]byte(password))
	legacy := hex.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(legacy), []byte(strings.ToLower(salesman.Password))) != 1 {
		return false
	}
	if hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost); err == nil {
		if err := gdb.Model(salesman).Update("password", string(hash)).Error; err != nil {
			logrus.WithError(err).Warn("legacy password upgrade failed")
		}
	}
	return true
}

// Logout: POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me: GET /me returns the session's account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	salesman, ok := currentSalesman(h.Store.DB, r)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, salesman)
}
