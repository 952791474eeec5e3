package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ariefcatur/go-lamp-marketplace.git/internal/identity"
	"github.com/ariefcatur/go-lamp-marketplace.git/internal/market"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the workflow error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a storage/infra failure: logged, returned as an
// opaque 500.
func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := err.Error()

	switch {
	case errors.Is(err, market.ErrUnauthenticated):
		code = http.StatusUnauthorized
	case errors.Is(err, market.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, market.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, market.ErrInvalidInput), errors.Is(err, identity.ErrInvalidCredentials):
		code = http.StatusBadRequest
	case errors.Is(err, market.ErrInsufficientStock),
		errors.Is(err, market.ErrInvalidTransition),
		errors.Is(err, market.ErrConflict),
		errors.Is(err, identity.ErrEmailTaken):
		code = http.StatusConflict
	default:
		slog.Error("request failed", "err", err)
		msg = "internal error"
	}
	writeJSON(w, code, map[string]string{"error": msg})
}
