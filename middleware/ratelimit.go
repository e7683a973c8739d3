package middleware

import (
	"context"
	"fmt"

	"gbxremote/session"
	"golang.org/x/time/rate"
)

// RateLimit throttles outbound call/multicall issue through a token
// bucket; Session.Send does not pass through interceptors and is not
// throttled. A dedicated game server enforces its own per-connection command
// budget; this keeps a chatty client under it instead of tripping it.
func RateLimit(r float64, burst int) session.Interceptor {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next session.IssueFunc) session.IssueFunc {
		return func(ctx context.Context, method string, params []any) (any, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("gbxremote: rate limited: %w", err)
			}
			return next(ctx, method, params)
		}
	}
}
