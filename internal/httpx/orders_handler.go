package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/market"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/redisx"
)

// qty accepts a JSON number or a numeric string. Absent or non-numeric
// values fall back to 1 (the storefront's historical behavior); explicit zero
// and negatives are preserved so the workflow can reject them.
type qty struct {
	n   int
	set bool
}

func (q *qty) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil // absent and null read the same
	}
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		q.n, q.set = n, true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			q.n, q.set = i, true
		}
	}
	return nil
}

func (q qty) Value() int {
	if !q.set {
		return 1
	}
	return q.n
}

type placeOrderReq struct {
	ProductID     string `json:"product_id"`
	Quantity      qty    `json:"quantity"`
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method"`
}

func (a *API) placeOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)

	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	o, err := a.Store.PlaceOrder(r.Context(), market.PlacementInput{
		BuyerID:       actor.UserID,
		ProductID:     req.ProductID,
		Quantity:      req.Quantity.Value(),
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	ordersPlacedTotal.Inc()
	a.cacheStatus(r, o.ID, o.Status)
	if a.Producers != nil {
		a.publish(a.Producers.Placed, market.EventOrderPlaced, o.ID, requestID(r), market.OrderPlacedPayload{
			OrderID:    o.ID,
			BuyerID:    o.BuyerID,
			ProductID:  o.ProductID,
			Quantity:   o.Quantity,
			TotalCents: o.TotalCents,
		})
	}
	writeJSON(w, http.StatusCreated, o)
}

func (a *API) listMyOrders(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)

	orders, err := a.Store.ListOrdersByBuyer(r.Context(), actor.UserID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if orders == nil {
		orders = []market.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (a *API) buyerCancel(w http.ResponseWriter, r *http.Request) {
	a.cancelOrder(w, r, "buyer")
}

// cancelOrder is shared by the buyer and seller cancellation endpoints; the
// store enforces who may cancel what.
func (a *API) cancelOrder(w http.ResponseWriter, r *http.Request, by string) {
	actor, _ := actorFrom(r)
	orderID := chi.URLParam(r, "id")

	o, err := a.Store.TransitionOrder(r.Context(), orderID, market.StatusCancelled, actor)
	if err != nil {
		writeErr(w, err)
		return
	}

	ordersCancelledTotal.Inc()
	a.cacheStatus(r, o.ID, o.Status)
	if a.Producers != nil {
		a.publish(a.Producers.Cancelled, market.EventOrderCancelled, o.ID, requestID(r), market.OrderCancelledPayload{
			OrderID:     o.ID,
			ProductID:   o.ProductID,
			Quantity:    o.Quantity,
			CancelledBy: by,
		})
	}
	writeJSON(w, http.StatusOK, o)
}

// orderStatus is the public tracking endpoint: status only, cached in Redis
// with a short TTL, DB as fallback.
func (a *API) orderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	if a.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
		if s, err := a.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	st, err := a.Store.OrderStatus(r.Context(), orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	a.cacheStatus(r, orderID, st)
	writeJSON(w, http.StatusOK, map[string]market.Status{"status": st})
}

func (a *API) cacheStatus(r *http.Request, orderID string, st market.Status) {
	if a.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(map[string]market.Status{"status": st})
	_ = a.Redis.Set(r.Context(), key, body, redisx.TTLStatusCache).Err()
}
