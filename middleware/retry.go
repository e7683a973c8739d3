package middleware

import (
	"context"
	"errors"
	"log"
	"net"
	"time"

	"gbxremote/session"
)

// Retry retries a call whose failure looks like a transient transport
// error — a dial/read/write timeout or a closed connection — never an
// XML-RPC fault, since a fault is an application response, not a
// transport failure.
func Retry(maxRetries int, baseDelay time.Duration) session.Interceptor {
	return func(next session.IssueFunc) session.IssueFunc {
		return func(ctx context.Context, method string, params []any) (any, error) {
			value, err := next(ctx, method, params)
			for i := 0; i < maxRetries && isTransient(err); i++ {
				log.Printf("gbxremote: retry %d for %s after %v", i+1, method, err)
				select {
				case <-time.After(baseDelay * (1 << i)):
				case <-ctx.Done():
					return value, err
				}
				value, err = next(ctx, method, params)
			}
			return value, err
		}
	}
}

// isTransient reports whether err is a transport-level failure worth
// retrying. An XML-RPC fault implements error via *xmlrpc.Fault, which
// never satisfies net.Error, so it is excluded without special-casing.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, net.ErrClosed)
}
