// Package session implements the GBXRemote 2 protocol engine: the
// length-framed receive state machine, the request-handle allocator and
// response correlation table, and the connect/call/send/multicall surface
// a host embeds to talk to a Trackmania/Maniaplanet dedicated server.
package session

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"
)

// ConnState is the session's connection lifecycle state.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Host is the consumer a Session notifies. It never retries or buffers
// these calls; each is delivered at most once per event.
type Host interface {
	OnDisconnect(reason string)
	OnCallback(method string, params []any)
}

// Options configures a Session. The zero value has both show errors and
// throw errors off; WithDefaultErrorPolicy turns throw errors on.
type Options struct {
	// ShowErrors logs request-level faults/decode failures when true.
	ShowErrors bool
	// ThrowErrors, when true (set by WithDefaultErrorPolicy), makes
	// Call/Multicall return an error for a fault or encode/decode failure
	// instead of a sentinel. It is false in the zero Options.
	ThrowErrors bool
	// DialTimeout bounds the initial TCP dial. Defaults to 10s.
	DialTimeout time.Duration
	// Interceptor optionally wraps every Call/Multicall/CallScript issue —
	// see the middleware package. Send does not pass through it. Nil means
	// no wrapping.
	Interceptor Interceptor
	// Logger receives lifecycle and error-path log lines. Defaults to the
	// standard library's default logger.
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.DialTimeout == 0 {
		o.DialTimeout = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	// ThrowErrors has no zero-value default override: the caller asking
	// for the zero Options{} gets ShowErrors=false, ThrowErrors=false,
	// which is not the conventional default for this client.
	// WithDefaultErrorPolicy exists for callers who want
	// {show_errors: false, throw_errors: true} explicitly.
	return o
}

// WithDefaultErrorPolicy returns opts with ThrowErrors set to true —
// the conventional default of {show_errors: false, throw_errors: true} —
// without silently overriding an explicit false on the zero Options{}.
func (o Options) WithDefaultErrorPolicy() Options {
	o.ThrowErrors = true
	return o
}

// Interceptor wraps a single call/multicall issue for logging, timeout,
// retry or rate-limiting concerns; Send bypasses it. See package middleware.
type Interceptor func(next IssueFunc) IssueFunc

// IssueFunc is the shape an interceptor chain wraps: issue one method with
// its params and get back a decoded value or an error.
type IssueFunc func(ctx context.Context, method string, params []any) (any, error)

// notAvailable is the sentinel value returned by call/multicall when the
// session is not Connected, or on a fault/encoding error when ThrowErrors
// is false. Send returns no value, so it never yields the sentinel.
var notAvailable = struct{ notAvailable bool }{true}

// NotAvailable reports whether v is the "not available" sentinel value.
func NotAvailable(v any) bool {
	_, ok := v.(struct{ notAvailable bool })
	return ok
}

// Session is a single GBXRemote 2 client connection. It owns the TCP
// socket exclusively: no external writer is permitted, and only the
// receive state machine mutates the receive buffer.
type Session struct {
	mu    sync.Mutex
	conn  net.Conn
	state ConnState
	host  Host
	opts  Options

	recvBuf     []byte
	expectedLen *uint32

	writeMu sync.Mutex // serializes handle allocation, waiter registration and socket writes
	handles *handleAllocator
	pending *pendingTable

	connectWaiter chan bool

	issue IssueFunc // built once in New: opts.Interceptor wrapping s.issueLocked
}

// New creates a Session bound to host, which receives disconnect and
// callback notifications. opts.WithDefaultErrorPolicy() is a convenient
// way to get the conventional default error policy.
func New(host Host, opts Options) *Session {
	s := &Session{
		host:    host,
		opts:    opts.withDefaults(),
		state:   Disconnected,
		handles: newHandleAllocator(),
		pending: newPendingTable(),
	}
	s.issue = s.issueLocked
	if opts.Interceptor != nil {
		s.issue = opts.Interceptor(s.issue)
	}
	return s
}

// State returns the session's current connection state.
func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) logf(format string, args ...any) {
	s.opts.Logger.Printf(format, args...)
}

// fatal tears the session down for a reason that is not a plain socket
// error — a handshake mismatch or a handle-wrap collision — and notifies
// the host exactly like a transport error would.
func (s *Session) fatal(reason string) {
	s.teardown(fmt.Errorf("gbxremote: %s", reason), reason)
}

// teardown closes the socket (if any), drains the pending table so no
// caller blocks forever, marks the session Disconnected, and notifies the
// host. Safe to call more than once; only the first call has an effect.
func (s *Session) teardown(drainErr error, reason string) {
	s.mu.Lock()
	if s.state == Disconnected {
		s.mu.Unlock()
		return
	}
	conn := s.conn
	s.conn = nil
	s.state = Disconnected
	s.recvBuf = nil
	s.expectedLen = nil
	s.connectWaiter = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	s.pending.drain(drainErr)
	s.host.OnDisconnect(reason)
}
