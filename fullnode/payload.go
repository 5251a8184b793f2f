package fullnode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"
	"unicode/utf16"
)

const JSONRPCVersion = "2.0"

// Payload is one JSON-RPC call. ID is assigned once and must be the same in
// the signed hash and in the transmitted envelope.
type Payload struct {
	Method string
	Params any
	ID     int64
}

type envelope struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

var lastRequestID atomic.Int64

func init() {
	lastRequestID.Store(time.Now().UnixMilli() % 1_000_000)
}

// NextRequestID returns a process-wide unique request id.
func NextRequestID() int64 {
	return lastRequestID.Add(1)
}

// NewPayload builds a payload with a fresh id.
func NewPayload(method string, params any) Payload {
	return Payload{Method: method, Params: params, ID: NextRequestID()}
}

// MarshalCanonical renders the JSON-RPC envelope in the layout the verifier
// hashes: keys in the order jsonrpc, method, params, id; ", " and ": "
// separators; non-ASCII escaped as \uXXXX; no HTML escaping. Map keys inside
// params are sorted. Nil params encode as [].
func (p Payload) MarshalCanonical() ([]byte, error) {
	params := p.Params
	if isNil(params) {
		params = []any{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(envelope{
		JSONRPC: JSONRPCVersion,
		Method:  p.Method,
		Params:  params,
		ID:      p.ID,
	}); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return spaced(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// isNil reports untyped nil and typed nil slices, maps and pointers. All of
// them are sent as an empty params list.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// spaced rewrites compact JSON with item and key separators followed by a
// space, escaping every rune outside printable ASCII.
func spaced(compact []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(compact) + len(compact)/4)
	inString, escaped := false, false
	for _, r := range string(compact) {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			case r > 0x7e:
				writeEscaped(&out, r)
				continue
			}
			out.WriteRune(r)
			continue
		}
		switch r {
		case '"':
			inString = true
		case ',':
			out.WriteString(", ")
			continue
		case ':':
			out.WriteString(": ")
			continue
		}
		out.WriteRune(r)
	}
	return out.Bytes()
}

func writeEscaped(out *bytes.Buffer, r rune) {
	if r > 0xffff {
		hi, lo := utf16.EncodeRune(r)
		fmt.Fprintf(out, `\u%04x\u%04x`, hi, lo)
		return
	}
	fmt.Fprintf(out, `\u%04x`, r)
}
