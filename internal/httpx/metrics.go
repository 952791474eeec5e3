package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method and status.",
	}, []string{"method", "status"})

	ordersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketplace",
		Name:      "orders_placed_total",
		Help:      "Successfully placed orders.",
	})

	ordersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketplace",
		Name:      "orders_cancelled_total",
		Help:      "Successfully cancelled orders.",
	})
)

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		requestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
	})
}
