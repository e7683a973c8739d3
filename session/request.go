package session

import (
	"context"
	"fmt"
	"net"

	"gbxremote/internal/xmlrpc"
	"gbxremote/protocol"
)

// Call encodes method with params, issues it, and awaits the server's
// response. Returns the sentinel NotAvailable value (with a nil error)
// when the session is not Connected. On an XML-RPC fault or encoding
// error, the returned error respects Options.ThrowErrors/ShowErrors.
func (s *Session) Call(ctx context.Context, method string, params ...any) (any, error) {
	return s.issue(ctx, method, params)
}

// CallScript wraps event/params as TriggerModeScriptEventArray(event,
// params), the convention Maniaplanet mode scripts use for client-pushed
// events.
func (s *Session) CallScript(ctx context.Context, event string, params ...any) (any, error) {
	return s.Call(ctx, "TriggerModeScriptEventArray", event, params)
}

// Send issues method fire-and-forget: no waiter is registered, so a
// caller can never learn whether the server later faulted on this call.
// It does not suspend beyond the implicit socket write buffer.
func (s *Session) Send(method string, params ...any) {
	if s.State() != Connected {
		return
	}
	body, err := xmlrpc.EncodeCall(method, params)
	if err != nil {
		s.logEncodingError(err)
		return
	}
	if oversize(body) {
		s.logEncodingError(fmt.Errorf("gbxremote: request too large: %d bytes", len(body)))
		return
	}

	s.writeMu.Lock()
	handle := s.handles.allocate()
	frame := protocol.EncodeRequest(handle, body)
	conn := s.activeConn()
	if conn == nil {
		s.writeMu.Unlock()
		return
	}
	_, writeErr := conn.Write(frame)
	s.writeMu.Unlock()
	if writeErr != nil {
		s.teardown(writeErr, writeErr.Error())
	}
}

// Call describes one sub-call inside a Multicall batch.
type Call struct {
	Method string
	Params []any
}

// Multicall packages calls into a single system.multicall request and
// returns the per-call first-result values in input order. A fault on an
// individual sub-call is returned inline in its slot, not raised for the
// whole batch — system.multicall's own contract.
func (s *Session) Multicall(ctx context.Context, calls []Call) (any, error) {
	packaged := make([]any, len(calls))
	for i, c := range calls {
		packaged[i] = map[string]any{"methodName": c.Method, "params": c.Params}
	}

	raw, err := s.issue(ctx, "system.multicall", []any{packaged})
	if err != nil || NotAvailable(raw) {
		return raw, err
	}

	list, ok := raw.([]any)
	if !ok {
		return notAvailable, fmt.Errorf("gbxremote: unexpected multicall response shape %T", raw)
	}
	results := make([]any, len(list))
	for i, item := range list {
		if inner, ok := item.([]any); ok && len(inner) > 0 {
			results[i] = inner[0]
			continue
		}
		results[i] = item
	}
	return results, nil
}

// oversize reports whether body plus the 8-byte framing (handle + length
// prefix) would exceed the 4 MiB client-origination cap.
func oversize(body []byte) bool {
	return len(body)+protocol.HandleSize+protocol.PrefixSize > protocol.MaxFrameSize
}

func (s *Session) activeConn() net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// issueLocked is the bare protocol-engine issue path: encode, allocate a
// handle, register a waiter, frame, write, await. Options.Interceptor
// wraps this — see package middleware — but never touches the receive
// state machine or callback delivery.
func (s *Session) issueLocked(ctx context.Context, method string, params []any) (any, error) {
	if s.State() != Connected {
		return notAvailable, nil
	}

	body, err := xmlrpc.EncodeCall(method, params)
	if err != nil {
		return s.encodingError(err)
	}
	if oversize(body) {
		return s.encodingError(fmt.Errorf("gbxremote: request too large: %d bytes", len(body)))
	}

	s.writeMu.Lock()
	handle := s.handles.allocate()
	w, collided := s.pending.register(handle)
	if collided {
		s.writeMu.Unlock()
		s.fatal(fmt.Sprintf("handle %#x collided with an outstanding request", handle))
		return notAvailable, fmt.Errorf("gbxremote: handle %#x collided with an outstanding request", handle)
	}
	frame := protocol.EncodeRequest(handle, body)
	conn := s.activeConn()
	if conn == nil {
		s.pending.cancel(handle)
		s.writeMu.Unlock()
		return notAvailable, nil
	}
	_, writeErr := conn.Write(frame)
	s.writeMu.Unlock()
	if writeErr != nil {
		s.pending.cancel(handle)
		s.teardown(writeErr, writeErr.Error())
		return notAvailable, writeErr
	}

	select {
	case r := <-w:
		if r.err != nil {
			return notAvailable, r.err
		}
		if r.fault != nil {
			return s.faultError(r.fault)
		}
		return r.value, nil
	case <-ctx.Done():
		s.pending.cancel(handle)
		return notAvailable, ctx.Err()
	}
}

func (s *Session) encodingError(err error) (any, error) {
	s.logEncodingError(err)
	if s.opts.ThrowErrors {
		return notAvailable, err
	}
	return notAvailable, nil
}

func (s *Session) faultError(f *xmlrpc.Fault) (any, error) {
	if s.opts.ShowErrors {
		s.logf("gbxremote: fault: %v", f)
	}
	if s.opts.ThrowErrors {
		return notAvailable, f
	}
	return notAvailable, nil
}

func (s *Session) logEncodingError(err error) {
	if s.opts.ShowErrors {
		s.logf("gbxremote: encode: %v", err)
	}
}
