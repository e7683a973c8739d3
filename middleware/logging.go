package middleware

import (
	"context"
	"log"
	"time"

	"gbxremote/session"
)

// Logging logs the method name and duration of every call/multicall
// issue, and the error if any.
func Logging() session.Interceptor {
	return func(next session.IssueFunc) session.IssueFunc {
		return func(ctx context.Context, method string, params []any) (any, error) {
			start := time.Now()
			value, err := next(ctx, method, params)
			log.Printf("gbxremote: %s took %s", method, time.Since(start))
			if err != nil {
				log.Printf("gbxremote: %s error: %v", method, err)
			}
			return value, err
		}
	}
}
