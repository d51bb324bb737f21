package httphandler

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/view"
	"github.com/niksmo/storefront/pkg/money"
)

// GET  /                 storefront (q, type, sort, digital, item, cart=open)
// POST /cart/add         id, qty, return
// POST /cart/remove      id, return
// POST /cart/qty         id, delta, return
// POST /cart/clear       return
// POST /checkout         return
//
// Form posts answer 303 See Other back to the storefront state carried in
// the "return" field.

const returnField = "return"

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("storefront.html").Funcs(template.FuncMap{
		"money":     money.Format,
		"typeLabel": view.TypeLabel,
		"sortLabel": view.SortLabel,
	}).ParseFS(templateFS, "templates/storefront.html"),
)

type (
	pageData struct {
		Site      domain.Site
		State     view.State
		Return    string
		Types     []domain.TypeFilter
		Sorts     []domain.SortKey
		Items     []gridItem
		Active    *domain.CatalogItem
		Cart      domain.CartView
		OpenCart  string
		CloseCart string
		CloseItem string
	}

	gridItem struct {
		domain.CatalogItem
		DetailURL string
	}
)

type PageHandler struct {
	store port.Storefront
}

func RegisterPage(r *mux.Router, store port.Storefront) {
	h := PageHandler{store}
	r.HandleFunc("/", h.Storefront).Methods(http.MethodGet)
	r.HandleFunc("/cart/add", h.Add).Methods(http.MethodPost)
	r.HandleFunc("/cart/remove", h.Remove).Methods(http.MethodPost)
	r.HandleFunc("/cart/qty", h.Quantity).Methods(http.MethodPost)
	r.HandleFunc("/cart/clear", h.Clear).Methods(http.MethodPost)
	r.HandleFunc("/checkout", h.Checkout).Methods(http.MethodPost)
}

func (h PageHandler) viewModel(r *http.Request, s view.State) *view.ViewModel {
	vm := view.New(h.store, VisitorID(r.Context()))
	vm.SetState(s)
	return vm
}

func (h PageHandler) Storefront(w http.ResponseWriter, r *http.Request) {
	const op = "PageHandler.Storefront"
	log := slog.With("op", op)

	ctx := r.Context()
	vm := h.viewModel(r, view.StateFromValues(r.URL.Query()))

	cart, err := vm.Cart(ctx)
	if err != nil {
		writeError(w, log, err)
		return
	}

	data := pageData{
		Site:      vm.Site(),
		State:     vm.State,
		Return:    vm.State.Values().Encode(),
		Types:     domain.TypeFilters,
		Sorts:     domain.SortKeys,
		Cart:      cart,
		OpenCart:  stateURL(vm.State, func(s *view.State) { s.DrawerOpen = true }),
		CloseCart: stateURL(vm.State, func(s *view.State) { s.DrawerOpen = false }),
		CloseItem: stateURL(vm.State, func(s *view.State) { s.ActiveItemID = "" }),
	}

	for _, item := range vm.Items(ctx) {
		data.Items = append(data.Items, gridItem{
			CatalogItem: item,
			DetailURL: stateURL(vm.State, func(s *view.State) {
				s.ActiveItemID = item.ID
			}),
		})
	}

	if item, ok := vm.ActiveItem(ctx); ok {
		data.Active = &item
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		writeError(w, log, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

func (h PageHandler) Add(w http.ResponseWriter, r *http.Request) {
	qty, _ := strconv.Atoi(r.PostFormValue("qty"))
	h.apply(w, r, "PageHandler.Add", view.AddToCart{
		ItemID: r.PostFormValue("id"),
		Qty:    qty,
	})
}

func (h PageHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "PageHandler.Remove", view.RemoveLine{
		ItemID: r.PostFormValue("id"),
	})
}

func (h PageHandler) Quantity(w http.ResponseWriter, r *http.Request) {
	const op = "PageHandler.Quantity"

	delta, err := strconv.Atoi(r.PostFormValue("delta"))
	if err != nil {
		http.Error(w, "invalid delta", http.StatusBadRequest)
		slog.Warn("invalid delta", "op", op, "err", err)
		return
	}
	h.apply(w, r, op, view.QuantityDelta{
		ItemID: r.PostFormValue("id"),
		Delta:  delta,
	})
}

func (h PageHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "PageHandler.Clear", view.ClearCart{})
}

func (h PageHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "PageHandler.Checkout", view.Checkout{})
}

// apply runs e against the view model restored from the return field and
// redirects to the resulting location.
func (h PageHandler) apply(w http.ResponseWriter, r *http.Request, op string, e view.Event) {
	log := slog.With("op", op)

	ret, _ := url.ParseQuery(r.PostFormValue(returnField))
	vm := h.viewModel(r, view.StateFromValues(ret))

	eff, err := vm.Apply(r.Context(), e)
	if err != nil {
		writeError(w, log, err)
		return
	}

	location := "/"
	if q := vm.State.Values().Encode(); q != "" {
		location += "?" + q
	}
	if eff.Navigate != "" && !strings.HasPrefix(eff.Navigate, "#") {
		location = eff.Navigate
	}

	http.Redirect(w, r, location, http.StatusSeeOther)
}

func stateURL(s view.State, modify func(*view.State)) string {
	modify(&s)
	q := s.Values().Encode()
	if q == "" {
		return "/"
	}
	return "/?" + q
}
