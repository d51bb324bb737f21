package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

// NewRouter mounts the HTML storefront at / and the JSON API under /v1.
func NewRouter(store port.Storefront) http.Handler {
	r := mux.NewRouter()
	r.Use(WithVisitor)

	RegisterPage(r, store)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(AllowJSON)
	RegisterCatalog(api, store)
	RegisterCart(api, store)

	return r
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

// writeError maps core errors to status codes.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
		log.Info("not found", "err", err)
	case errors.Is(err, domain.ErrInvalidQuantity):
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		log.Info("invalid quantity", "err", err)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
		log.Error("request failed", "err", err)
	}
}
