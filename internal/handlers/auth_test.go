package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brocante/apiserver/internal/store"
	"github.com/brocante/apiserver/types"
)

type stubIdentifier struct {
	identity types.Identity
	err      error
}

func (s stubIdentifier) Identify(_ context.Context, token string) (types.Identity, error) {
	if s.err != nil {
		return types.Identity{}, s.err
	}
	return s.identity, nil
}

func authedHandler(t *testing.T, accounts Identifier) (http.Handler, *types.Identity) {
	t.Helper()
	var seen types.Identity
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromContext(r.Context())
		require.NoError(t, err)
		seen = identity
		w.WriteHeader(http.StatusNoContent)
	})
	return RequireAuth(accounts)(inner), &seen
}

func TestRequireAuth(t *testing.T) {
	identity := types.Identity{ID: 7, Account: types.Account{Username: "sasha"}}
	handler, seen := authedHandler(t, stubIdentifier{identity: identity})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, identity, *seen)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	handler, _ := authedHandler(t, stubIdentifier{identity: types.Identity{ID: 7}})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no scheme", "token-abc"},
		{"wrong scheme", "Basic token-abc"},
		{"empty token", "Bearer "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var resp ErrorResponse
			require.NoError(t, decodeBody(rec, &resp))
			assert.Equal(t, "Unauthorized", resp.Error)
		})
	}
}

func TestRequireAuth_UnknownToken(t *testing.T) {
	handler, _ := authedHandler(t, stubIdentifier{err: store.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_StoreFault(t *testing.T) {
	handler, _ := authedHandler(t, stubIdentifier{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, decodeBody(rec, &resp))
	assert.Equal(t, "connection refused", resp.Error)
}

func TestRequireAuth_CaseInsensitiveScheme(t *testing.T) {
	handler, seen := authedHandler(t, stubIdentifier{identity: types.Identity{ID: 7}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer token-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(7), seen.ID)
}
