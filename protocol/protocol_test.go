package protocol

import (
	"bytes"
	"testing"
)

func TestEncodeRequestRoundTrip(t *testing.T) {
	body := []byte("hello world")
	frame := EncodeRequest(0x80000001, body)

	length := DecodeLengthPrefix(frame)
	if int(length) != HandleSize+len(body) {
		t.Fatalf("length prefix mismatch: got %d, want %d", length, HandleSize+len(body))
	}

	handle, rest := SplitHandle(frame[PrefixSize:])
	if handle != 0x80000001 {
		t.Errorf("handle mismatch: got %#x, want %#x", handle, 0x80000001)
	}
	if !bytes.Equal(rest, body) {
		t.Errorf("body mismatch: got %q, want %q", rest, body)
	}

	t.Logf("round-tripped a %d byte body under handle %#x", len(body), handle)
}

func TestEncodeRequestEmptyBody(t *testing.T) {
	frame := EncodeRequest(0x80000002, nil)
	if len(frame) != PrefixSize+HandleSize {
		t.Fatalf("expected frame of length %d, got %d", PrefixSize+HandleSize, len(frame))
	}
	length := DecodeLengthPrefix(frame)
	if length != HandleSize {
		t.Errorf("length mismatch: got %d, want %d", length, HandleSize)
	}
}

func TestIsResponseHandle(t *testing.T) {
	cases := []struct {
		handle uint32
		want   bool
	}{
		{0, false},
		{1, false},
		{HandleBit - 1, false},
		{HandleBit, true},
		{HandleBit + 1, true},
		{0xFFFFFFFF, true},
	}
	for _, c := range cases {
		if got := IsResponseHandle(c.handle); got != c.want {
			t.Errorf("IsResponseHandle(%#x) = %v, want %v", c.handle, got, c.want)
		}
	}
}

func TestSplitHandleLeavesRemainderUntouched(t *testing.T) {
	frame := append([]byte{0x01, 0x00, 0x00, 0x00}, []byte("<methodCall/>")...)
	handle, body := SplitHandle(frame)
	if handle != 1 {
		t.Fatalf("handle mismatch: got %#x", handle)
	}
	if string(body) != "<methodCall/>" {
		t.Errorf("body mismatch: got %q", body)
	}
}
