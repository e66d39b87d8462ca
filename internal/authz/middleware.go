package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/atlas-ops/atlas-erp/internal/shared"
)

// userHeader carries the authenticated user id set by the fronting proxy.
// Authentication itself happens upstream; this layer only authorizes.
const userHeader = "X-Atlas-User"

type contextKey struct{ name string }

var capabilityKey = contextKey{"capabilities"}

// Middleware wires capability checks for HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Require ensures the caller holds every listed capability. The resolved
// set is stored on the request context so nested handlers can branch on it
// without re-querying.
func (m Middleware) Require(caps ...Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(caps) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok := currentUserID(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			granted, err := m.Service.CapabilitiesFor(r.Context(), userID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
					return
				}
				if m.Logger != nil {
					m.Logger.Error("authz resolve capabilities", slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			for _, cap := range caps {
				if !granted.Has(cap) {
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
					return
				}
			}
			ctx := context.WithValue(r.Context(), capabilityKey, granted)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CapabilitiesFromContext returns the set resolved by Require, if any.
func CapabilitiesFromContext(ctx context.Context) (CapabilitySet, bool) {
	set, ok := ctx.Value(capabilityKey).(CapabilitySet)
	return set, ok
}

func currentUserID(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(userHeader))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
