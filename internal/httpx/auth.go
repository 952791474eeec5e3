package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/identity"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/market"
)

// Identity and Sessions are the account collaborators, satisfied by
// identity.Users and identity.Sessions in production.
type Identity interface {
	CreateUser(ctx context.Context, in identity.RegisterInput) (identity.User, error)
	VerifyPassword(ctx context.Context, email, password string) (identity.User, error)
	UserByID(ctx context.Context, id string) (identity.User, error)
}

type Sessions interface {
	Create(ctx context.Context, userID string) (string, error)
	UserID(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
}

type actorKey struct{}

func actorFrom(r *http.Request) (market.Actor, bool) {
	a, ok := r.Context().Value(actorKey{}).(market.Actor)
	return a, ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// withActor resolves the session token into a market.Actor and stores it in
// the request context. Role and seller approval are read fresh each request
// so demotions and rejections bite immediately. No token is not an error
// here; the role gates decide what anonymous requests may do.
func (a *API) withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := a.Sessions.UserID(r.Context(), token)
		if err != nil {
			if errors.Is(err, market.ErrUnauthenticated) {
				next.ServeHTTP(w, r) // stale token; treat as anonymous
				return
			}
			writeErr(w, err)
			return
		}
		u, err := a.Identity.UserByID(r.Context(), userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		actor := market.Actor{UserID: u.ID, Role: u.Role}
		if u.Role == market.RoleSeller {
			st, err := a.Store.RegistrationStatus(r.Context(), u.ID)
			if err != nil && !errors.Is(err, market.ErrNotFound) {
				writeErr(w, err)
				return
			}
			actor.SellerApproved = st == market.RegistrationApproved
		}
		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole gates a subtree to authenticated actors with one of the given
// roles. Evaluated before any workflow logic runs: a rejected request has no
// side effects.
func requireRole(roles ...market.Role) func(http.Handler) http.Handler {
	allowed := make(map[market.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := actorFrom(r)
			if !ok {
				writeErr(w, market.ErrUnauthenticated)
				return
			}
			if !allowed[actor.Role] {
				writeErr(w, market.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireApprovedSeller additionally rejects sellers whose registration is
// pending or was rejected.
func requireApprovedSeller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeErr(w, market.ErrUnauthenticated)
			return
		}
		if actor.Role != market.RoleSeller || !actor.SellerApproved {
			writeErr(w, market.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
