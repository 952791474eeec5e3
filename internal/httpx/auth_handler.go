package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/identity"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/market"
)

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var in identity.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	u, err := a.Identity.CreateUser(r.Context(), in)
	if err != nil {
		writeErr(w, err)
		return
	}

	// Sellers start pending; the authorizer decides.
	if u.Role == market.RoleSeller {
		if err := a.Store.CreateSellerRegistration(r.Context(), u.ID); err != nil {
			writeErr(w, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, u)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string        `json:"token"`
	User  identity.User `json:"user"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	u, err := a.Identity.VerifyPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	token, err := a.Sessions.Create(r.Context(), u.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: token, User: u})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := a.Sessions.Destroy(r.Context(), token); err != nil {
			writeErr(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	u, err := a.Identity.UserByID(r.Context(), actor.UserID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}
