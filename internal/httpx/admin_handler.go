package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/audit"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/market"
)

func (a *API) allOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := a.Store.ListAllOrders(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	if orders == nil {
		orders = []market.OrderView{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (a *API) orderAudit(w http.ResponseWriter, r *http.Request) {
	if a.Audit == nil {
		writeErr(w, market.ErrNotFound)
		return
	}
	recs, err := a.Audit.ListByOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if recs == nil {
		recs = []audit.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (a *API) listRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := a.Store.ListRegistrations(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	if regs == nil {
		regs = []market.SellerRegistration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

type reviewReq struct {
	Decision string `json:"decision"` // approved | rejected
}

func (a *API) reviewRegistration(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r)

	var req reviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Decision != string(market.RegistrationApproved) && req.Decision != string(market.RegistrationRejected) {
		writeErr(w, fmt.Errorf("%w: decision must be approved or rejected", market.ErrInvalidInput))
		return
	}

	sellerID := chi.URLParam(r, "id")
	reg, err := a.Store.ReviewRegistration(r.Context(), actor.UserID, sellerID, req.Decision == string(market.RegistrationApproved))
	if err != nil {
		writeErr(w, err)
		return
	}

	if a.Producers != nil {
		a.publish(a.Producers.SellerReviewed, market.EventSellerReviewed, sellerID, requestID(r), market.SellerReviewedPayload{
			SellerID:   sellerID,
			Decision:   reg.Status,
			ReviewerID: actor.UserID,
		})
	}
	writeJSON(w, http.StatusOK, reg)
}
