package session

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gbxremote/protocol"
)

type recordingHost struct {
	disconnects []string
	callbacks   []callbackRecord
}

type callbackRecord struct {
	method string
	params []any
}

func (h *recordingHost) OnDisconnect(reason string) {
	h.disconnects = append(h.disconnects, reason)
}

func (h *recordingHost) OnCallback(method string, params []any) {
	h.callbacks = append(h.callbacks, callbackRecord{method, params})
}

func newTestSession() (*Session, *recordingHost) {
	host := &recordingHost{}
	s := New(host, Options{}.WithDefaultErrorPolicy())
	return s, host
}

// handshakeFrame builds the exact wire bytes of S1/S2: a bare length
// prefix followed by the raw banner bytes, no handle.
func handshakeFrame(banner string) []byte {
	frame := make([]byte, protocol.PrefixSize+len(banner))
	binary.LittleEndian.PutUint32(frame[:protocol.PrefixSize], uint32(len(banner)))
	copy(frame[protocol.PrefixSize:], banner)
	return frame
}

func TestFeedHandshakeSuccess(t *testing.T) {
	s, host := newTestSession()
	s.state = Connecting
	cw := make(chan bool, 1)
	s.connectWaiter = cw

	s.feed(handshakeFrame(protocol.Banner))

	select {
	case ok := <-cw:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("connect waiter never completed")
	}
	assert.Equal(t, Connected, s.currentState())
	assert.Empty(t, host.disconnects)
}

func TestFeedHandshakeFailure(t *testing.T) {
	s, host := newTestSession()
	s.state = Connecting
	s.conn = nil
	cw := make(chan bool, 1)
	s.connectWaiter = cw

	s.feed(handshakeFrame("Hello"))

	select {
	case ok := <-cw:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("connect waiter never completed")
	}
	assert.Equal(t, Disconnected, s.currentState())
	require.Len(t, host.disconnects, 1)
	assert.Equal(t, "GBXRemote 2 protocol not supported", host.disconnects[0])
}

// postHandshakeFrame builds a frame in the wire shape used once the
// session is Connected: len(4+len(body)) ‖ handle ‖ body.
func postHandshakeFrame(handle uint32, body []byte) []byte {
	return protocol.EncodeRequest(handle, body)
}

func TestFeedCorrelatesResponseToRegisteredWaiter(t *testing.T) {
	s, _ := newTestSession()
	s.state = Connected

	handle := uint32(0x80000005)
	w, collided := s.pending.register(handle)
	require.False(t, collided)

	// Body need not be valid XML-RPC for this property: handleResponseFrame
	// completes the waiter on the decode path either way (value or error),
	// which is exactly the correlation property under test, not the codec.
	s.feed(postHandshakeFrame(handle, []byte("not-xml")))

	select {
	case r := <-w:
		assert.Error(t, r.err, "garbage body decodes to an error, still delivered to the right waiter")
	case <-time.After(time.Second):
		t.Fatal("waiter never completed")
	}
}

func TestFeedResponseWithNoWaiterIsDiscardedSilently(t *testing.T) {
	s, host := newTestSession()
	s.state = Connected

	s.feed(postHandshakeFrame(0x80000099, []byte("not-xml")))

	assert.Empty(t, host.disconnects, "an unmatched response must never tear the session down")
}

func TestFeedChunkIndependence(t *testing.T) {
	handles := []uint32{0x80000001, 0x80000002, 0x80000003}
	var stream []byte
	waiters := make(map[uint32]waiter)

	s, _ := newTestSession()
	s.state = Connected
	for _, h := range handles {
		w, _ := s.pending.register(h)
		waiters[h] = w
		stream = append(stream, postHandshakeFrame(h, []byte("payload"))...)
	}

	// Feed the whole concatenated stream one byte at a time; every frame
	// must still be classified and routed to the correct waiter in order.
	for i := 0; i < len(stream); i++ {
		s.feed(stream[i : i+1])
	}

	for _, h := range handles {
		select {
		case <-waiters[h]:
		case <-time.After(time.Second):
			t.Fatalf("handle %#x never completed under 1-byte chunking", h)
		}
	}
}

func TestFeedCallbackFrameNeverReachesPendingTable(t *testing.T) {
	s, _ := newTestSession()
	s.state = Connected

	handle := uint32(0x00000001) // high bit clear: server-initiated call
	s.feed(postHandshakeFrame(handle, []byte("not-xml")))

	assert.False(t, s.pending.complete(handle, result{value: 1}), "a callback handle must never be installed as a waiter")
}
