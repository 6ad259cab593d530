package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/churchai-session/auth"
	"github.com/jrsteele09/churchai-session/token"
	"github.com/jrsteele09/churchai-session/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the authenticated *users.User
	ContextKeyUser ContextKey = "user"
	// ContextKeyClaims stores the verified access token claims
	ContextKeyClaims ContextKey = "claims"
)

// RequireAuth is middleware that validates a Bearer access token and loads its user.
// A missing header is 403, a token that fails verification is 401.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeDetail(w, http.StatusForbidden, detailNotAuthenticated)
				return
			}

			user, claims, err := s.auth.Authenticate(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, err, http.StatusUnauthorized, auth.DetailCredentialsNotVerified)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, raw, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// currentUser returns what RequireAuth stored on the request
func currentUser(r *http.Request) (*users.User, *token.Claims, bool) {
	user, ok := r.Context().Value(ContextKeyUser).(*users.User)
	if !ok || user == nil {
		return nil, nil, false
	}
	claims, _ := r.Context().Value(ContextKeyClaims).(*token.Claims)
	return user, claims, true
}
