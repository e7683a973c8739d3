// Package middleware wraps a Session's call/multicall issue path with
// ordered concerns — logging, timeout, retry, rate limiting — composed as
// an onion: each middleware runs code before and after the next one in
// the chain.
package middleware

import "gbxremote/session"

// Chain composes middlewares into a single session.Interceptor.
// Chain(A, B, C)(next) == A(B(C(next))); execution order on issue is
// A.before → B.before → C.before → next → C.after → B.after → A.after.
func Chain(middlewares ...session.Interceptor) session.Interceptor {
	return func(next session.IssueFunc) session.IssueFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
