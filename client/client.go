// Package client is the host-facing surface of a GBXRemote 2 connection:
// it layers a connect(host?, port?)/disconnect/call/send/multicall/
// callScript API, with sensible defaults, over the session package's
// protocol engine.
package client

import (
	"context"
	"fmt"

	"gbxremote/session"
)

const (
	defaultHost = "127.0.0.1"
	defaultPort = 5000
)

// Options mirrors session.Options — show_errors/throw_errors plus the
// ambient additions (dial timeout, interceptor chain, logger) — so
// callers only ever need to import this package.
type Options = session.Options

// Client is a single GBXRemote 2 connection bound to a Host.
type Client struct {
	s *session.Session
}

// New constructs a Client against host, notified of disconnects and
// server-pushed callbacks. It does not dial — call Connect.
func New(host session.Host, opts Options) *Client {
	return &Client{s: session.New(host, opts)}
}

// Connect dials addr (defaulting to 127.0.0.1:5000 when host/port are the
// zero value) and performs the handshake, returning true on a recognized
// GBXRemote 2 banner.
func (c *Client) Connect(ctx context.Context, host string, port int) (bool, error) {
	if host == "" {
		host = defaultHost
	}
	if port == 0 {
		port = defaultPort
	}
	return c.s.Connect(ctx, fmt.Sprintf("%s:%d", host, port))
}

// Disconnect tears the connection down and always returns true.
func (c *Client) Disconnect() bool {
	return c.s.Disconnect()
}

// Call issues method and awaits its result.
func (c *Client) Call(ctx context.Context, method string, params ...any) (any, error) {
	return c.s.Call(ctx, method, params...)
}

// Send issues method without awaiting a response.
func (c *Client) Send(method string, params ...any) {
	c.s.Send(method, params...)
}

// Multicall batches calls into one system.multicall request.
func (c *Client) Multicall(ctx context.Context, calls []session.Call) (any, error) {
	return c.s.Multicall(ctx, calls)
}

// CallScript issues a Maniaplanet mode-script event.
func (c *Client) CallScript(ctx context.Context, event string, params ...any) (any, error) {
	return c.s.CallScript(ctx, event, params...)
}

// State returns the underlying session's connection state.
func (c *Client) State() session.ConnState {
	return c.s.State()
}

// NotAvailable reports whether v is the sentinel "not available" value
// returned by Call/Multicall/CallScript when the session is not connected.
// Send returns no value.
func NotAvailable(v any) bool {
	return session.NotAvailable(v)
}
