package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/audit"
	kafkax "github.com/ariefcatur/go-lamp-marketplace.git/internal/kafka"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/market"
)

// AuditLog exposes the order event trail to the authorizer endpoints.
type AuditLog interface {
	ListByOrder(ctx context.Context, orderID string) ([]audit.Record, error)
}

// Producers holds one producer per lifecycle topic. Any of them (or the
// whole struct) may be nil; publishing is then skipped.
type Producers struct {
	Placed         *kafkax.Producer
	Cancelled      *kafkax.Producer
	Status         *kafkax.Producer
	SellerReviewed *kafkax.Producer
}

// All lists the non-nil producers, for lifecycle management in main.
func (p *Producers) All() []*kafkax.Producer {
	var out []*kafkax.Producer
	for _, pr := range []*kafkax.Producer{p.Placed, p.Cancelled, p.Status, p.SellerReviewed} {
		if pr != nil {
			out = append(out, pr)
		}
	}
	return out
}

type API struct {
	Store     market.Store
	Identity  Identity
	Sessions  Sessions
	Audit     AuditLog
	Producers *Producers
	Redis     *redis.Client
	Service   string
}

func (a *API) Register(r *chi.Mux) {
	r.Route("/api", func(r chi.Router) {
		r.Use(a.withActor)

		// public
		r.Post("/register", a.register)
		r.Post("/login", a.login)
		r.Get("/me", a.me)
		r.Get("/products", a.listProducts)
		r.Get("/orders/{id}/status", a.orderStatus)

		// any authenticated user
		r.Group(func(r chi.Router) {
			r.Use(requireRole(market.RoleBuyer, market.RoleSeller, market.RoleAuthorizer))
			r.Post("/logout", a.logout)
		})

		// buyer
		r.Group(func(r chi.Router) {
			r.Use(requireRole(market.RoleBuyer))
			r.Post("/cart", a.addCartItem)
			r.Get("/cart", a.listCart)
			r.Delete("/cart/{id}", a.removeCartItem)
			r.Post("/orders", a.placeOrder)
			r.Get("/orders", a.listMyOrders)
			r.Post("/orders/{id}/cancel", a.buyerCancel)
		})

		// approved seller
		r.Group(func(r chi.Router) {
			r.Use(requireApprovedSeller)
			r.Post("/products", a.createProduct)
			r.Patch("/products/{id}", a.updateProduct)
			r.Delete("/products/{id}", a.deleteProduct)
			r.Get("/seller/orders", a.sellerOrders)
			r.Patch("/seller/orders/{id}/status", a.sellerUpdateStatus)
			r.Post("/seller/orders/{id}/cancel", a.sellerCancel)
		})

		// authorizer
		r.Group(func(r chi.Router) {
			r.Use(requireRole(market.RoleAuthorizer))
			r.Get("/admin/orders", a.allOrders)
			r.Get("/admin/orders/{id}/audit", a.orderAudit)
			r.Get("/admin/registrations", a.listRegistrations)
			r.Post("/admin/registrations/{id}/review", a.reviewRegistration)
		})
	})
}

// publish wraps payload in the versioned envelope and hands it to the topic
// producer. Fire-and-forget: order state is already committed, the event
// stream is the audit feed, not the source of truth.
func (a *API) publish(p *kafkax.Producer, eventType, correlationID, traceID string, payload any) {
	if a.Producers == nil || p == nil {
		return
	}
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      a.Service,
		TraceID:       traceID,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(market.PartitionKey(correlationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func requestID(r *http.Request) string { return r.Header.Get("X-Request-Id") }
