package chi

import (
	"context"
	"net/http"
	"strings"

	"github.com/kailas-cloud/advsearch/internal/domain"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// Permissions is the set of actions a caller may perform.
type Permissions map[string]struct{}

// Has reports whether action is granted.
func (p Permissions) Has(action string) bool {
	_, ok := p[action]
	return ok
}

// allPermissions is held by every caller when no keys are configured.
var allPermissions = Permissions{
	domain.PermSearchView: {},
	domain.PermIndexWrite: {},
}

type permsKey struct{}

func withPermissions(ctx context.Context, p Permissions) context.Context {
	return context.WithValue(ctx, permsKey{}, p)
}

// PermissionsFromContext returns the caller's permissions, empty when unauthenticated.
func PermissionsFromContext(ctx context.Context) Permissions {
	if p, ok := ctx.Value(permsKey{}).(Permissions); ok {
		return p
	}
	return Permissions{}
}

// require returns a permission error unless the caller holds action.
func require(r *http.Request, action string) error {
	if !PermissionsFromContext(r.Context()).Has(action) {
		return &domain.PermissionError{Action: action}
	}
	return nil
}

// BearerAuthMiddleware validates Bearer tokens and attaches the permissions of
// the matching key to the request. keys maps API key to granted permissions.
// If keys is empty, authentication is disabled and every caller holds every permission.
func BearerAuthMiddleware(keys map[string][]string) func(http.Handler) http.Handler {
	validKeys := make(map[string]Permissions, len(keys))
	for k, perms := range keys {
		if k == "" {
			continue
		}
		p := make(Permissions, len(perms))
		for _, perm := range perms {
			p[perm] = struct{}{}
		}
		validKeys[k] = p
	}

	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(withPermissions(r.Context(), allPermissions)))
			})
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Exempt paths
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					codeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			perms, ok := validKeys[auth[len(bearerPrefix):]]
			if !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r.WithContext(withPermissions(r.Context(), perms)))
		})
	}
}
