package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gbxremote/protocol"
)

func TestHandleAllocatorFirstHandle(t *testing.T) {
	a := newHandleAllocator()
	require.Equal(t, protocol.HandleBit+1, a.allocate(), "S3: first allocated handle is 0x80000001")
}

func TestHandleAllocatorRangeAndMonotonic(t *testing.T) {
	a := newHandleAllocator()
	prev := uint32(0)
	for i := 0; i < 10000; i++ {
		h := a.allocate()
		assert.GreaterOrEqual(t, h, protocol.HandleBit)
		assert.Less(t, h, maxHandle)
		assert.Greater(t, h, prev)
		prev = h
	}
}

func TestHandleAllocatorWraps(t *testing.T) {
	a := newHandleAllocator()
	a.next = maxHandle - 1
	h := a.allocate()
	require.Equal(t, protocol.HandleBit, h, "reaching the wrap boundary resets to HandleBit before it is ever handed out")
}
