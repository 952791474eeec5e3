package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/market"
)

func (a *API) sellerOrders(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)

	orders, err := a.Store.ListOrdersBySeller(r.Context(), actor.UserID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if orders == nil {
		orders = []market.OrderView{}
	}
	writeJSON(w, http.StatusOK, orders)
}

type updateStatusReq struct {
	Status market.Status `json:"status"`
}

func (a *API) sellerUpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	// Cancellation has its own endpoint so the restock path stays explicit.
	if req.Status == market.StatusCancelled {
		a.cancelOrder(w, r, "seller")
		return
	}

	orderID := chi.URLParam(r, "id")
	o, err := a.Store.TransitionOrder(r.Context(), orderID, req.Status, actor)
	if err != nil {
		writeErr(w, err)
		return
	}

	a.cacheStatus(r, o.ID, o.Status)
	if a.Producers != nil {
		a.publish(a.Producers.Status, market.EventOrderStatusChanged, o.ID, requestID(r), market.OrderStatusChangedPayload{
			OrderID: o.ID,
			To:      o.Status,
		})
	}
	writeJSON(w, http.StatusOK, o)
}

func (a *API) sellerCancel(w http.ResponseWriter, r *http.Request) {
	a.cancelOrder(w, r, "seller")
}
