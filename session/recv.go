package session

import (
	"errors"

	"gbxremote/internal/xmlrpc"
	"gbxremote/protocol"
)

// feed is the receive state machine's entry point: it appends chunk to the
// receive buffer and classifies every complete frame it can find, in a
// loop, so that arbitrary chunking of the underlying byte stream — down to
// one byte at a time — produces exactly the same sequence of classified
// frames. Only this method (and teardown, on its way out) ever mutates
// recvBuf/expectedLen; it runs exclusively on the session's single read
// goroutine, so no lock guards the buffer itself.
func (s *Session) feed(chunk []byte) {
	s.recvBuf = append(s.recvBuf, chunk...)
	for {
		if s.expectedLen == nil {
			if len(s.recvBuf) < protocol.PrefixSize {
				return
			}
			length := protocol.DecodeLengthPrefix(s.recvBuf)
			s.recvBuf = s.recvBuf[protocol.PrefixSize:]

			expected := length
			s.expectedLen = &expected
		}

		if uint32(len(s.recvBuf)) < *s.expectedLen {
			return
		}

		frame := s.recvBuf[:*s.expectedLen]
		s.recvBuf = s.recvBuf[*s.expectedLen:]
		s.expectedLen = nil

		s.handleFrame(frame)

		// handleFrame may have torn the session down (handshake failure,
		// handle collision); recvBuf/expectedLen are nil'd by teardown in
		// that case, and the next loop iteration observes an empty buffer
		// and returns.
	}
}

func (s *Session) currentState() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) handleFrame(frame []byte) {
	if s.currentState() == Connecting {
		s.handleHandshakeFrame(frame)
		return
	}
	s.handlePostHandshakeFrame(frame)
}

func (s *Session) handleHandshakeFrame(frame []byte) {
	if string(frame) == protocol.Banner {
		s.mu.Lock()
		s.state = Connected
		cw := s.connectWaiter
		s.connectWaiter = nil
		s.mu.Unlock()
		if cw != nil {
			cw <- true
		}
		s.logf("gbxremote: handshake ok")
		return
	}

	s.mu.Lock()
	cw := s.connectWaiter
	s.connectWaiter = nil
	s.mu.Unlock()
	if cw != nil {
		cw <- false
	}
	s.teardown(errors.New("gbxremote: GBXRemote 2 protocol not supported"), "GBXRemote 2 protocol not supported")
}

func (s *Session) handlePostHandshakeFrame(frame []byte) {
	if len(frame) < protocol.HandleSize {
		return
	}
	handle, body := protocol.SplitHandle(frame)
	if protocol.IsResponseHandle(handle) {
		s.handleResponseFrame(handle, body)
		return
	}
	s.handleCallbackFrame(body)
}

func (s *Session) handleResponseFrame(handle uint32, body []byte) {
	var value any
	fault, err := xmlrpc.DecodeResponse(body, &value)
	if err != nil {
		if s.opts.ShowErrors {
			s.logf("gbxremote: decode response %#x: %v", handle, err)
		}
		s.pending.complete(handle, result{err: err})
		return
	}
	s.pending.complete(handle, result{value: value, fault: fault})
}

func (s *Session) handleCallbackFrame(body []byte) {
	method, params, err := xmlrpc.DecodeCall(body)
	if err != nil {
		if s.opts.ShowErrors {
			s.logf("gbxremote: decode callback: %v", err)
		}
		return
	}
	s.host.OnCallback(method, params)
}
