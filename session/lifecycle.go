package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
)

// Connect opens a TCP connection to addr, performs the GBXRemote 2
// handshake, and starts the background read loop. It returns once the
// handshake either succeeds or fails — true on success, false on a
// banner mismatch. A dial failure or context cancellation is returned as
// an error; the session stays Disconnected in both failure cases.
func (s *Session) Connect(ctx context.Context, addr string) (bool, error) {
	s.mu.Lock()
	if s.state != Disconnected {
		s.mu.Unlock()
		return false, fmt.Errorf("gbxremote: connect called in state %s", s.state)
	}
	s.state = Connecting
	cw := make(chan bool, 1)
	s.connectWaiter = cw
	s.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, s.opts.DialTimeout)
	defer cancel()
	conn, err := (&net.Dialer{}).DialContext(dialCtx, "tcp", addr)
	if err != nil {
		s.mu.Lock()
		s.state = Disconnected
		s.connectWaiter = nil
		s.mu.Unlock()
		return false, fmt.Errorf("gbxremote: dial %s: %w", addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAlive(true)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.readLoop(conn)

	select {
	case ok := <-cw:
		return ok, nil
	case <-ctx.Done():
		s.teardown(ctx.Err(), "connect canceled")
		return false, ctx.Err()
	}
}

// readLoop is the session's single reader goroutine. It owns recvBuf and
// expectedLen exclusively (see recv.go) and drives teardown on any socket
// error — including a clean EOF, reported with reason "end" to mirror the
// source's separate "error"/"end" handlers collapsing to the same path.
func (s *Session) readLoop(conn net.Conn) {
	buf := make([]byte, 64*1024)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			s.feed(buf[:n])
		}
		if err != nil {
			reason := "end"
			if !errors.Is(err, io.EOF) {
				reason = err.Error()
			}
			s.teardown(fmt.Errorf("gbxremote: %s", reason), reason)
			return
		}
	}
}

// Disconnect tears the session down synchronously and notifies the host
// with reason "disconnect". Outstanding call/multicall waiters are
// completed with a transport error rather than left to leak, per the
// design notes' recommendation.
func (s *Session) Disconnect() bool {
	s.teardown(fmt.Errorf("gbxremote: disconnect"), "disconnect")
	return true
}
