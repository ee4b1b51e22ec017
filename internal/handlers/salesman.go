package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/baraa-scout/salespoint/internal/httpx"
	"github.com/baraa-scout/salespoint/internal/models"
	"github.com/baraa-scout/salespoint/internal/store"
	"github.com/baraa-scout/salespoint/internal/validation"
)

// SalesmanHandler covers the admin-only account management endpoints. All of
// them sit behind RequireAdmin in the router.
type SalesmanHandler struct {
	Store         *store.Store
	AdminUsername string
}

func NewSalesmanHandler(s *store.Store, adminUsername string) *SalesmanHandler {
	return &SalesmanHandler{Store: s, AdminUsername: adminUsername}
}

// List: GET /salesmen.
func (h *SalesmanHandler) List(w http.ResponseWriter, r *http.Request) {
	var salesmen []models.Salesman
	if err := h.Store.DB.Order("id").Find(&salesmen).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_salesmen", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, salesmen)
}

// Create: POST /salesmen {username, password, name, role}.
func (h *SalesmanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Name = strings.TrimSpace(input.Name)
	if input.Role == "" {
		input.Role = models.RoleSalesman
	}

	v := validation.Violations{}
	validation.Required("username", input.Username, v)
	validation.Required("password", input.Password, v)
	if input.Role != models.RoleAdmin && input.Role != models.RoleSalesman {
		v["role"] = "unknown_role"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var count int64
	if err := h.Store.DB.Model(&models.Salesman{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_check_duplicates", nil)
		return
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "username_taken", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_hash_password", nil)
		return
	}
	salesman := models.Salesman{
		Username: input.Username,
		Password: string(hash),
		Name:     input.Name,
		Role:     input.Role,
		Active:   true,
	}
	if err := h.Store.DB.Create(&salesman).Error; err != nil {
		httpx.JSONError(w, http.StatusConflict, "username_taken", nil)
		return
	}
	h.Store.InvalidateTable(store.TableSalesmen)
	logrus.WithField("username", salesman.Username).Info("salesman created")
	httpx.JSON(w, http.StatusCreated, salesman)
}

// Toggle: POST /salesmen/toggle {id} flips Active. The default admin account
// cannot be deactivated; locking it out would strand fresh deployments.
func (h *SalesmanHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	salesman, ok := h.loadByID(w, r)
	if !ok {
		return
	}
	if salesman.Username == h.AdminUsername && salesman.Active {
		httpx.JSONError(w, http.StatusForbidden, "cannot_deactivate_default_admin", nil)
		return
	}
	if err := h.Store.DB.Model(salesman).Update("active", !salesman.Active).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_salesman", nil)
		return
	}
	h.Store.InvalidateTable(store.TableSalesmen)
	httpx.JSON(w, http.StatusOK, salesman)
}

// Delete: POST /salesmen/delete {id}. The default admin is protected here too.
func (h *SalesmanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	salesman, ok := h.loadByID(w, r)
	if !ok {
		return
	}
	if salesman.Username == h.AdminUsername {
		httpx.JSONError(w, http.StatusForbidden, "cannot_delete_default_admin", nil)
		return
	}
	if err := h.Store.DB.Delete(salesman).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_salesman", nil)
		return
	}
	h.Store.InvalidateTable(store.TableSalesmen)
	logrus.WithField("username", salesman.Username).Info("salesman deleted")
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *SalesmanHandler) loadByID(w http.ResponseWriter, r *http.Request) (*models.Salesman, bool) {
	var input struct {
		ID uint `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return nil, false
	}
	var salesman models.Salesman
	if err := h.Store.DB.First(&salesman, input.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return nil, false
	}
	return &salesman, true
}
