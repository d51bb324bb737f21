package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/view"
)

// GET v1/catalog?q=&type=&sort=&digital= (200 OK)
// GET v1/catalog/{id} (200 OK, 404 Not found)
// GET v1/site (200 OK)

type CatalogHandler struct {
	browser port.CatalogBrowser
}

func RegisterCatalog(r *mux.Router, browser port.CatalogBrowser) {
	h := CatalogHandler{browser}
	r.HandleFunc("/catalog", h.List).Methods(http.MethodGet)
	r.HandleFunc("/catalog/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/site", h.Site).Methods(http.MethodGet)
}

func (h CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.List"
	log := slog.With("op", op)

	q := view.StateFromValues(r.URL.Query()).Query
	items := h.browser.Browse(r.Context(), q)
	writeJSON(w, log, http.StatusOK, fromDomainItems(items))
}

func (h CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.Get"
	log := slog.With("op", op)

	item, err := h.browser.Item(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, fromDomainItem(item))
}

func (h CatalogHandler) Site(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.Site"
	log := slog.With("op", op)

	writeJSON(w, log, http.StatusOK, fromDomainSite(h.browser.Site()))
}
