// Package xmlrpc adapts the external github.com/divan/gorilla-xmlrpc codec
// to the three operations the GBXRemote core needs: encode an outbound
// method call, decode a method response (value or fault), and decode a
// server-pushed method call. Nothing above this package may reach into
// XML structure directly — per the core spec, the XML-RPC value codec is
// an external collaborator, not part of the protocol engine.
package xmlrpc

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/divan/gorilla-xmlrpc/xml"
)

// Fault mirrors an XML-RPC <fault> struct: a numeric code and a message.
type Fault struct {
	Code   int
	String string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xmlrpc fault %d: %s", f.Code, f.String)
}

// EncodeCall marshals a methodCall document for method with the given
// positional params.
func EncodeCall(method string, params []any) ([]byte, error) {
	r, err := xml.NewRequest(method, params)
	if err != nil {
		return nil, fmt.Errorf("xmlrpc: encode %s: %w", method, err)
	}
	return io.ReadAll(r)
}

// DecodeResponse unmarshals a methodResponse document into out. If the
// document carries a <fault>, DecodeResponse returns it instead of an
// error — a fault is a valid application-level response, not a transport
// failure.
func DecodeResponse(body []byte, out any) (*Fault, error) {
	err := xml.DecodeClientResponse(bytes.NewReader(body), out)
	if err == nil {
		return nil, nil
	}
	if fault, ok := asFault(err); ok {
		return fault, nil
	}
	return nil, fmt.Errorf("xmlrpc: decode response: %w", err)
}

// DecodeCall unmarshals a server-pushed methodCall document, returning its
// method name and positional params.
func DecodeCall(body []byte) (method string, params []any, err error) {
	req, err := http.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	codecReq := xml.NewCodec().NewRequest(req)
	method, err = codecReq.Method()
	if err != nil {
		return "", nil, fmt.Errorf("xmlrpc: decode call method: %w", err)
	}
	var args []any
	if err := codecReq.ReadRequest(&args); err != nil {
		return "", nil, fmt.Errorf("xmlrpc: decode call params: %w", err)
	}
	return method, args, nil
}

// asFault reports whether err wraps an XML-RPC fault struct surfaced by
// the underlying codec, translating it to our own Fault type so callers
// never import the codec's error types directly.
func asFault(err error) (*Fault, bool) {
	type serviceError interface {
		error
		FaultCode() int
		FaultString() string
	}
	if se, ok := err.(serviceError); ok {
		return &Fault{Code: se.FaultCode(), String: se.FaultString()}, true
	}
	return nil, false
}
