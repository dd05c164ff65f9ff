package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/brocante/apiserver/internal/store"
	"github.com/brocante/apiserver/types"
)

// Identifier resolves an opaque bearer token to the identity it was
// issued to. Unknown tokens map to store.ErrNotFound.
type Identifier interface {
	Identify(ctx context.Context, token string) (types.Identity, error)
}

// RequireAuth enforces bearer-token authentication. The token is
// matched against the credential store on every request, so a token
// rotated by a password change stops authenticating immediately. On
// success the resolved identity is attached to the request context; on
// a missing, malformed, or unknown token the request is halted with
// 401. A store fault surfaces as 400.
func RequireAuth(accounts Identifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			identity, err := accounts.Identify(r.Context(), token)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), contextIdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
