package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// requestIDHeader is the header carrying the per-request correlation id.
// It is distinct from the audit trace_id (an integer row id): this is an
// opaque value a caller can quote back when reporting a problem, present
// whether or not the request was ever audited.
const requestIDHeader = "X-Request-Id"

// requestIDMiddleware stamps every response with a generated request id,
// reusing one supplied by the caller instead of generating a new one.
func (h *Handler) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// adminAuthMiddleware enforces the bearer credential required by §6's
// management surface. The decision surface (authorize, authorize_batch)
// is unauthenticated in scope and never wrapped by this middleware.
func (h *Handler) adminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")

		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.adminKey)) != 1 {
			h.respondError(w, http.StatusUnauthorized, "management endpoints require a valid admin bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
