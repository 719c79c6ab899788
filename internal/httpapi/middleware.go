package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Wire headers required by the protocol. UCP-Agent identifies the
// calling agent and doubles as the buyer id; Idempotency-Key must be
// present on every mutating call; Request-Id correlates logs across
// systems.
const (
	HeaderAgent          = "UCP-Agent"
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderSignature      = "Request-Signature"
	HeaderRequestID      = "Request-Id"
)

type ctxKey string

const (
	ctxKeyBuyerID        ctxKey = "buyer_id"
	ctxKeyIdempotencyKey ctxKey = "idempotency_key"
	ctxKeyRequestID      ctxKey = "request_id"
)

// RequestIDMiddleware accepts a caller-supplied Request-Id, generates one
// when absent, and echoes it on the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		w.Header().Set(HeaderRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AgentAuthMiddleware requires the UCP-Agent header on commerce routes
// and exposes it to handlers as the buyer identity.
func AgentAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent := r.Header.Get(HeaderAgent)
		if agent == "" {
			respondError(w, http.StatusUnauthorized, "validation_error", "missing UCP-Agent header")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyBuyerID, agent)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdempotencyKeyMiddleware requires Idempotency-Key on mutating calls.
func IdempotencyKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(HeaderIdempotencyKey)
		if key == "" {
			respondError(w, http.StatusBadRequest, "validation_error", "missing Idempotency-Key header")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyIdempotencyKey, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getBuyerID(ctx context.Context) string {
	if buyerID, ok := ctx.Value(ctxKeyBuyerID).(string); ok {
		return buyerID
	}
	return ""
}

func getIdempotencyKey(ctx context.Context) string {
	if key, ok := ctx.Value(ctxKeyIdempotencyKey).(string); ok {
		return key
	}
	return ""
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}
