package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/niksmo/storefront/internal/core/port"
)

// GET    v1/cart                                (200 OK)
// POST   v1/cart/items        {"id","qty"}      (200 OK, 400 Bad request, 404 Not found)
// PUT    v1/cart/items/{id}   {"qty"}           (200 OK, 400 Bad request, 404 Not found)
// PATCH  v1/cart/items/{id}   {"delta"}         (200 OK, 400 Bad request, 404 Not found)
// DELETE v1/cart/items/{id}                     (200 OK)
// DELETE v1/cart                                (200 OK)
//
// Every successful call responds with the resulting cart.

type cartStore interface {
	port.CartCommander
	port.CartViewer
}

type CartHandler struct {
	store cartStore
}

func RegisterCart(r *mux.Router, store cartStore) {
	h := CartHandler{store}
	r.HandleFunc("/cart", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/cart", h.Clear).Methods(http.MethodDelete)
	r.HandleFunc("/cart/items", h.Add).Methods(http.MethodPost)
	r.HandleFunc("/cart/items/{id}", h.SetQty).Methods(http.MethodPut)
	r.HandleFunc("/cart/items/{id}", h.AdjustQty).Methods(http.MethodPatch)
	r.HandleFunc("/cart/items/{id}", h.Remove).Methods(http.MethodDelete)
}

func (h CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.Get"
	log := slog.With("op", op)
	h.respond(w, r, log)
}

func (h CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.Add"
	log := slog.With("op", op)

	var req AddItemRequest
	if !decodeJSON(w, r, log, &req) {
		return
	}
	if req.Qty == 0 {
		req.Qty = 1
	}

	err := h.store.AddToCart(r.Context(), VisitorID(r.Context()), req.ID, req.Qty)
	if err != nil {
		writeError(w, log, err)
		return
	}
	h.respond(w, r, log)
}

func (h CartHandler) SetQty(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.SetQty"
	log := slog.With("op", op)

	var req SetQtyRequest
	if !decodeJSON(w, r, log, &req) {
		return
	}

	err := h.store.SetQuantity(
		r.Context(), VisitorID(r.Context()), mux.Vars(r)["id"], req.Qty,
	)
	if err != nil {
		writeError(w, log, err)
		return
	}
	h.respond(w, r, log)
}

func (h CartHandler) AdjustQty(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.AdjustQty"
	log := slog.With("op", op)

	var req AdjustQtyRequest
	if !decodeJSON(w, r, log, &req) {
		return
	}

	err := h.store.AdjustQuantity(
		r.Context(), VisitorID(r.Context()), mux.Vars(r)["id"], req.Delta,
	)
	if err != nil {
		writeError(w, log, err)
		return
	}
	h.respond(w, r, log)
}

func (h CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.Remove"
	log := slog.With("op", op)

	err := h.store.RemoveFromCart(r.Context(), VisitorID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, log, err)
		return
	}
	h.respond(w, r, log)
}

func (h CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.Clear"
	log := slog.With("op", op)

	if err := h.store.ClearCart(r.Context(), VisitorID(r.Context())); err != nil {
		writeError(w, log, err)
		return
	}
	h.respond(w, r, log)
}

func (h CartHandler) respond(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	v, err := h.store.CartView(r.Context(), VisitorID(r.Context()))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, fromDomainCart(v))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, log *slog.Logger, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return false
	}
	return true
}
