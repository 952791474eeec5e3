package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/market"
)

type addCartReq struct {
	ProductID string `json:"product_id"`
	Quantity  qty    `json:"quantity"`
}

func (a *API) addCartItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)

	var req addCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	it, err := a.Store.AddCartItem(r.Context(), actor.UserID, req.ProductID, req.Quantity.Value())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (a *API) listCart(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)

	lines, err := a.Store.ListCart(r.Context(), actor.UserID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if lines == nil {
		lines = []market.CartLine{}
	}
	writeJSON(w, http.StatusOK, lines)
}

func (a *API) removeCartItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)

	if err := a.Store.RemoveCartItem(r.Context(), actor.UserID, chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
