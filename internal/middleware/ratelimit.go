package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/framedarchive/internal/errors"
	inHttp "github.com/Alturino/framedarchive/internal/http"
	"github.com/Alturino/framedarchive/internal/log"
	"github.com/Alturino/framedarchive/internal/metrics"
	"github.com/Alturino/framedarchive/internal/otel"
	"github.com/Alturino/framedarchive/internal/ratelimit"
)

// RateLimit lets a request through when the store fails, so an unavailable store never
// takes the storefront down.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			c, span := otel.Tracer.Start(r.Context(), "middleware RateLimit")
			defer span.End()

			ip := ClientIP(r)
			logger := zerolog.Ctx(c).
				With().
				Str(log.KeyTag, "middleware RateLimit").
				Str(log.KeyRateLimitKey, limiter.Name()+":"+ip).
				Logger()

			res, err := limiter.Allow(c, ip)
			if err != nil {
				inErrors.HandleError(err, span)
				logger.Warn().Err(err).Msg("rate limit store unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				metrics.RateLimited.WithLabelValues(limiter.Name()).Inc()
				err := fmt.Errorf("failed rate limiting ip=%s with error=%w", ip, inErrors.ErrRateLimited)
				inErrors.HandleError(err, span)
				logger.Warn().Err(err).Int("count", res.Count).Msg(err.Error())
				retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				inHttp.WriteJsonResponse(c, w,
					map[string]string{inHttp.KEY_HEADER_RETRY_AFTER: strconv.Itoa(retryAfter)},
					map[string]interface{}{
						"status":     "failed",
						"statusCode": http.StatusTooManyRequests,
						"message":    inErrors.ErrRateLimited.Error(),
					})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
