package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/market"
)

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := a.Store.ListProducts(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	if ps == nil {
		ps = []market.ProductListing{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)

	var in market.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	p, err := a.Store.CreateProduct(r.Context(), actor.UserID, in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)

	var upd market.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	p, err := a.Store.UpdateProduct(r.Context(), actor.UserID, chi.URLParam(r, "id"), upd)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)

	if err := a.Store.DeleteProduct(r.Context(), actor.UserID, chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
