package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brocante/apiserver/types"
)

type contextKey string

const contextIdentityKey contextKey = "identity"

// ErrorResponse is the normalized error envelope for every failure path.
type ErrorResponse struct {
	Error string `json:"error"`
}

func identityFromContext(ctx context.Context) (types.Identity, error) {
	identity, ok := ctx.Value(contextIdentityKey).(types.Identity)
	if !ok || identity.ID == 0 {
		return types.Identity{}, errors.New("missing identity")
	}
	return identity, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// Welcome is the liveness endpoint at the root path.
func Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the brocante marketplace API"})
}

// NotFound answers every unmatched route with a JSON body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Page not Found")
}
