package middleware

import (
	"context"
	"lodge/shared"
	"lodge/shared/constant"
	"lodge/transport/http/response"
	"net"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

const (
	cacheKeyRateLimit = "limiter"
)

// RateLimit counts requests per client in fixed windows that open on the client's
// first request. The client address is taken from RemoteAddr, which chi's RealIP
// middleware has already resolved. A cache outage never blocks traffic.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	limiter := a.config.App.RateLimiter

	return func(next http.Handler) http.Handler {
		if !limiter.Enable {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cacheKey := shared.BuildCacheKey(cacheKeyRateLimit, a.getClientIP(r), a.getUA(r))

			count, counted := a.count(r.Context(), cacheKey, limiter.WindowSeconds)
			if !counted {
				next.ServeHTTP(w, r)

				return
			}

			if count > limiter.MaxRequests {
				response.WithRequestLimitExceeded(w)

				return
			}

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(limiter.MaxRequests))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, limiter.MaxRequests-count)))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(limiter.WindowSeconds))

			next.ServeHTTP(w, r)
		})
	}
}

// count bumps the counter under key and reports false when the cache could not be used.
func (a *appMiddleware) count(ctx context.Context, key string, windowSeconds int) (int, bool) {
	count, err := a.cache.Increment(ctx, key, windowSeconds)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limiter cache unavailable")

		return 0, false
	}

	return int(count), true
}

func (a *appMiddleware) getUA(r *http.Request) string {
	ua := r.Header.Get(constant.RequestHeaderUserAgent)
	if ua == "" {
		ua = "unknown"
	}

	return ua
}

func (a *appMiddleware) getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
