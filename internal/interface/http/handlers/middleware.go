// Package handlers contains HTTP middleware and health check plumbing.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// Role is the access level resolved from an API key. Admin keys may
// manage the curated template catalog; user keys may not.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type roleContextKey struct{}

// RoleFromContext returns the role stored by the auth middleware. Requests
// that never passed through the middleware resolve to RoleUser.
func RoleFromContext(ctx context.Context) Role {
	if role, ok := ctx.Value(roleContextKey{}).(Role); ok {
		return role
	}
	return RoleUser
}

// APIKeyAuth authenticates requests against bcrypt hashes of valid keys.
// Plaintext keys never touch configuration or logs.
type APIKeyAuth struct {
	headerName  string
	hashes      [][]byte
	adminHashes [][]byte
	mu          sync.RWMutex
}

// NewAPIKeyAuth creates an authenticator from bcrypt key hashes. Entries
// that are empty strings are ignored.
func NewAPIKeyAuth(headerName string, hashes, adminHashes []string) *APIKeyAuth {
	return &APIKeyAuth{
		headerName:  headerName,
		hashes:      compactHashes(hashes),
		adminHashes: compactHashes(adminHashes),
	}
}

func compactHashes(hashes []string) [][]byte {
	valid := make([][]byte, 0, len(hashes))
	for _, h := range hashes {
		if h != "" {
			valid = append(valid, []byte(h))
		}
	}
	return valid
}

// AddKeyHash registers another valid user key hash.
func (a *APIKeyAuth) AddKeyHash(hash string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hashes = append(a.hashes, []byte(hash))
}

// AddAdminKeyHash registers another valid admin key hash.
func (a *APIKeyAuth) AddAdminKeyHash(hash string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.adminHashes = append(a.adminHashes, []byte(hash))
}

// Resolve checks a plaintext key against every registered hash and returns
// the role it carries. Admin hashes are checked first so a key listed in
// both sets resolves to admin.
func (a *APIKeyAuth) Resolve(key string) (Role, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, hash := range a.adminHashes {
		if bcrypt.CompareHashAndPassword(hash, []byte(key)) == nil {
			return RoleAdmin, true
		}
	}
	for _, hash := range a.hashes {
		if bcrypt.CompareHashAndPassword(hash, []byte(key)) == nil {
			return RoleUser, true
		}
	}
	return "", false
}

// IsValid checks a plaintext key against every registered hash.
func (a *APIKeyAuth) IsValid(key string) bool {
	_, ok := a.Resolve(key)
	return ok
}

// HashKey produces a bcrypt hash suitable for configuration. Used by
// operator tooling when provisioning keys.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Middleware returns an HTTP middleware that rejects requests without a
// valid API key.
func (a *APIKeyAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(a.headerName)

		// Also check Authorization header with Bearer scheme
		if key == "" {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if key == "" {
			http.Error(w, `{"error":"missing_api_key","message":"API key is required"}`, http.StatusUnauthorized)
			return
		}

		role, ok := a.Resolve(key)
		if !ok {
			http.Error(w, `{"error":"invalid_api_key","message":"Invalid API key"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), roleContextKey{}, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// TIMEOUT MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// TimeoutMiddleware adds a timeout to request contexts.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})

			go func() {
				next.ServeHTTP(w, r.WithContext(ctx))
				close(done)
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					http.Error(w, `{"error":"timeout","message":"Request timeout exceeded"}`, http.StatusGatewayTimeout)
				}
			}
		})
	}
}
