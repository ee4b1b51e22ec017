package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type ctxKey string

const (
	sessionCookieName = "session"
	userIDCtxKey      = ctxKey("salesmanID")
)

// Verifier reports whether the session's salesman still exists and is active.
// Set it during app bootstrap via SetVerifier. If nil, no extra verification happens.
type Verifier func(ctx context.Context, id uint) bool

// RoleResolver returns the role of the given salesman for admin gating.
type RoleResolver func(ctx context.Context, id uint) (string, bool)

var (
	verifier     Verifier
	roleResolver RoleResolver
)

func SetVerifier(v Verifier) { verifier = v }

func SetRoleResolver(r RoleResolver) { roleResolver = r }

// Secret returns SESSION_SECRET or default dev value.
func Secret() string {
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

// CreateSession sets a signed cookie with the salesman id.
func CreateSession(w http.ResponseWriter, salesmanID uint) {
	idStr := strconv.FormatUint(uint64(salesmanID), 10)
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(idStr))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    idStr + "." + sig,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie signature and returns the salesman id.
func ParseSession(r *http.Request) (uint, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 {
		return 0, false
	}
	idStr, sig := parts[0], parts[1]
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(idStr))
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return 0, false
	}
	id64, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id64), true
}

// WithSalesmanID stores the salesman id in context.
func WithSalesmanID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, userIDCtxKey, id)
}

// SalesmanIDFromContext extracts the salesman id.
func SalesmanIDFromContext(ctx context.Context) (uint, bool) {
	v := ctx.Value(userIDCtxKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// Middleware attaches the salesman id to the request context if a valid session exists.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := ParseSession(r); ok {
			r = r.WithContext(WithSalesmanID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}

// RequireAuth rejects requests without a valid session for a still-active salesman.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := SalesmanIDFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if verifier != nil && !verifier(r.Context(), id) {
			// Session refers to a deleted or deactivated salesman: clear it.
			ClearSession(w)
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin additionally checks the salesman's role via the configured resolver.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := SalesmanIDFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if roleResolver == nil {
			unauthorized(w)
			return
		}
		role, ok := roleResolver(r.Context(), id)
		if !ok || role != "admin" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"admin_only"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
