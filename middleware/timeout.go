package middleware

import (
	"context"
	"time"

	"gbxremote/session"
)

// Timeout layers a per-call deadline onto the context. The core protocol
// engine has no built-in timeout, and the session's issue path already
// removes the pending waiter when ctx is done, so this middleware only
// has to set the deadline.
func Timeout(d time.Duration) session.Interceptor {
	return func(next session.IssueFunc) session.IssueFunc {
		return func(ctx context.Context, method string, params []any) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, method, params)
		}
	}
}
