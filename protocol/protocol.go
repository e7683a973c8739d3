// Package protocol implements the GBXRemote 2 wire framing.
//
// Every frame on the wire starts with a 4-byte little-endian length prefix.
// Before the handshake completes, the prefix covers the banner bytes alone.
// After the handshake, the prefix covers a 4-byte handle plus the XML-RPC
// body that follows it — the handle identifies which in-flight request a
// response belongs to, or marks a frame as a server-pushed callback.
//
//	handshake:  len(11) ‖ "GBXRemote 2"
//	post-hs:    len(4+len(body)) ‖ handle ‖ body
package protocol

import "encoding/binary"

// Banner is the exact ASCII payload the server sends once, unframed by a
// handle, to announce the protocol version it speaks.
const Banner = "GBXRemote 2"

// HandleBit distinguishes a method response (handle has the high bit set)
// from a server-initiated method call (handle has the high bit clear).
const HandleBit uint32 = 0x80000000

// PrefixSize is the width of the outer length prefix.
const PrefixSize = 4

// HandleSize is the width of the handle field in a post-handshake frame.
const HandleSize = 4

// MaxFrameSize bounds a client-originated frame, handle included.
const MaxFrameSize = 4 * 1024 * 1024

// EncodeRequest frames an outbound method call: the 4-byte length of
// (handle + body), the handle itself, then body. The length prefix does
// not count itself, but it does count the handle — this asymmetry with the
// handshake banner's bare length is load-bearing and intentional.
func EncodeRequest(handle uint32, body []byte) []byte {
	frame := make([]byte, PrefixSize+HandleSize+len(body))
	binary.LittleEndian.PutUint32(frame[0:4], uint32(HandleSize+len(body)))
	binary.LittleEndian.PutUint32(frame[4:8], handle)
	copy(frame[8:], body)
	return frame
}

// DecodeLengthPrefix reads the first 4 bytes of buf as a little-endian
// length. The caller must ensure len(buf) >= PrefixSize.
func DecodeLengthPrefix(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[:PrefixSize])
}

// SplitHandle separates a post-handshake frame body into its handle and
// XML-RPC payload. The caller must ensure len(frame) >= HandleSize.
func SplitHandle(frame []byte) (handle uint32, body []byte) {
	return binary.LittleEndian.Uint32(frame[:HandleSize]), frame[HandleSize:]
}

// IsResponseHandle reports whether handle identifies a response to a
// client-initiated call rather than a server-pushed callback.
func IsResponseHandle(handle uint32) bool {
	return handle >= HandleBit
}
