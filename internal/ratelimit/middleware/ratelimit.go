package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"xcmkit/internal/ratelimit/metrics"
	"xcmkit/internal/ratelimit/models"
	"xcmkit/internal/ratelimit/store/bucket"
	dErrors "xcmkit/pkg/domain-errors"
	"xcmkit/pkg/platform/httputil"
	"xcmkit/pkg/requestcontext"
)

const (
	headerLimit      = "X-RateLimit-Limit"
	headerRemaining  = "X-RateLimit-Remaining"
	headerReset      = "X-RateLimit-Reset"
	headerRetryAfter = "Retry-After"
)

// Middleware limits requests per client IP and endpoint class.
type Middleware struct {
	store    bucket.Store
	limits   map[models.Class]models.Limit
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

// WithDisabled passes every request through.
func WithDisabled(disabled bool) Option {
	return func(mw *Middleware) {
		mw.disabled = disabled
	}
}

func New(store bucket.Store, limits map[models.Class]models.Limit, logger *slog.Logger, opts ...Option) *Middleware {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Middleware{store: store, limits: limits, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// Limit returns middleware enforcing the limit configured for class.
// Classes without a positive limit are not limited. Store failures fail open.
func (m *Middleware) Limit(class models.Class) func(http.Handler) http.Handler {
	limit, ok := m.limits[class]
	return func(next http.Handler) http.Handler {
		if m.disabled || !ok || limit.Requests <= 0 || limit.Window <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, err := m.store.Allow(ctx, models.Key(class, ip), limit.Requests, limit.Window)
			if err != nil {
				m.metrics.IncrementStoreErrors()
				m.logger.ErrorContext(ctx, "rate limit check failed",
					"request_id", requestcontext.RequestID(ctx),
					"class", class,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}
			m.metrics.RecordDecision(string(class), result.Allowed)

			h := w.Header()
			h.Set(headerLimit, strconv.Itoa(result.Limit))
			h.Set(headerRemaining, strconv.Itoa(result.Remaining))
			h.Set(headerReset, strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				h.Set(headerRetryAfter, strconv.Itoa(result.RetryAfter(time.Now())))
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"request_id", requestcontext.RequestID(ctx),
					"class", class,
					"client_ip", ip,
				)
				httputil.WriteError(w, dErrors.Newf(dErrors.CodeRateLimited,
					"rate limit of %d requests per %s exceeded", limit.Requests, limit.Window))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
