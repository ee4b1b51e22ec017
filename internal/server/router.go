package server

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/baraa-scout/salespoint/internal/auth"
	"github.com/baraa-scout/salespoint/internal/config"
	"github.com/baraa-scout/salespoint/internal/handlers"
	"github.com/baraa-scout/salespoint/internal/httpx"
	"github.com/baraa-scout/salespoint/internal/models"
	"github.com/baraa-scout/salespoint/internal/services"
	"github.com/baraa-scout/salespoint/internal/store"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	mux := http.NewServeMux()
	st := store.New(db)

	// RequireAuth consults this so a deleted or deactivated account loses its
	// session on the next request.
	auth.SetVerifier(func(_ context.Context, id uint) bool {
		var count int64
		err := db.Model(&models.Salesman{}).Where("id = ? AND active = ?", id, true).Limit(1).Count(&count).Error
		return err == nil && count > 0
	})
	auth.SetRoleResolver(func(_ context.Context, id uint) (string, bool) {
		var salesman models.Salesman
		if err := db.First(&salesman, id).Error; err != nil {
			return "", false
		}
		return salesman.Role, true
	})

	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "degraded", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter

	authed := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(auth.RequireAdmin(h)))
	}
	listCreate := func(list, create http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				list(w, r)
			case http.MethodPost:
				create(w, r)
			default:
				w.Header().Set("Allow", "GET,POST")
				httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			}
		}
	}

	ah := handlers.NewAuthHandler(st, cfg.AdminUsername, cfg.AdminPassword)
	mux.HandleFunc("/login", ah.Login)
	mux.HandleFunc("/logout", ah.Logout)
	mux.Handle("/me", authed(ah.Me))

	ch := handlers.NewCustomerHandler(st)
	mux.Handle("/customers", authed(listCreate(ch.List, ch.Create)))

	ph := handlers.NewProductHandler(st)
	mux.Handle("/products", auth.Middleware(auth.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ph.List(w, r)
		case http.MethodPost:
			// Catalog writes are admin-only; reads stay open to every salesman.
			auth.RequireAdmin(http.HandlerFunc(ph.Create)).ServeHTTP(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))))
	mux.Handle("/products/update", admin(ph.Update))
	mux.Handle("/products/delete", admin(ph.Delete))
	mux.Handle("/products/import", admin(ph.Import))

	invSvc := services.NewInvoiceService(db)
	ih := handlers.NewInvoiceHandler(st, invSvc, cfg.InvoiceDir)
	mux.Handle("/invoices", authed(listCreate(ih.List, ih.Create)))
	mux.Handle("/invoices/items", authed(ih.Items))
	mux.Handle("/invoices/delete", authed(ih.Delete))
	mux.Handle("/invoices/whatsapp", authed(ih.WhatsApp))
	mux.Handle("/invoices/html", authed(ih.HTML))
	mux.Handle("/invoices/pdf", authed(ih.PDF))

	sh := handlers.NewSalesmanHandler(st, cfg.AdminUsername)
	mux.Handle("/salesmen", admin(listCreate(sh.List, sh.Create)))
	mux.Handle("/salesmen/toggle", admin(sh.Toggle))
	mux.Handle("/salesmen/delete", admin(sh.Delete))

	rh := handlers.NewReportHandler(st)
	mux.Handle("/reports/sales", admin(rh.Sales))

	return withRecover(withLogging(mux))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logrus.WithField("panic", rec).Error("request panic")
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
