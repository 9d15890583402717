package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/lmdah61/Japanese-Text-Server/internal/api/shared"
	"github.com/lmdah61/Japanese-Text-Server/internal/ratelimit"
)

// Response headers describing the rate limit decision.
const (
	rateLimitingTotalRequests = "Rate-Limiting-Total-Requests"
	rateLimitingState         = "Rate-Limiting-State"
	rateLimitingExpiresAt     = "Rate-Limiting-Expires-At"
)

// RateLimitMiddleware enforces per-client request quotas before a request
// reaches its handler. Client identity is the remote IP; chi's RealIP
// middleware must run earlier in the chain so proxied requests carry the
// originating address.
type RateLimitMiddleware struct {
	store   ratelimit.Store
	windows []ratelimit.Window
	logger  *slog.Logger
}

// NewRateLimitMiddleware creates a middleware enforcing the given windows
// against the store.
func NewRateLimitMiddleware(
	store ratelimit.Store,
	windows []ratelimit.Window,
	logger *slog.Logger,
) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		store:   store,
		windows: windows,
		logger:  logger,
	}
}

// Limit wraps a handler with the quota check. Denied requests receive 429
// and never reach the wrapped handler.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)

		result, err := m.store.Allow(r.Context(), key, m.windows)
		if err != nil {
			m.logger.ErrorContext(r.Context(), "rate limit check failed",
				"error", err,
				"client", key)
			shared.RespondWithError(w, r, http.StatusInternalServerError,
				"Failed to process request")
			return
		}

		w.Header().Set(rateLimitingTotalRequests, strconv.FormatUint(result.TotalRequests, 10))
		w.Header().Set(rateLimitingState, ratelimit.StateStrings[result.State])
		w.Header().Set(rateLimitingExpiresAt, result.ExpiresAt.Format(time.RFC3339))

		if result.State == ratelimit.Deny {
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
				"Rate limit exceeded. Please slow down.", ratelimit.ErrRateLimitExceeded)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientKey extracts the client identity from the request's remote address,
// dropping the ephemeral port when present.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
