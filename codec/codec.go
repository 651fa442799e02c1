// Package codec serializes WAMP messages to and from bytes.
//
// On the wire a WAMP message is the flat array [code, args...]; the code is
// the discriminator, everything after it is the payload. Three serialization
// formats are supported — JSON, MessagePack, and CBOR — matching the
// subprotocols a router advertises. Decoding always goes through the message
// model's construction contract, so a frame with an unknown or out-of-range
// code never yields a Message.
package codec

import (
	"fmt"

	"gowamp/wamp"
)

type CodecType byte

const (
	CodecTypeJSON    CodecType = 0
	CodecTypeMsgPack CodecType = 1
	CodecTypeCBOR    CodecType = 2
)

// Codec converts between a validated Message and its byte representation.
type Codec interface {
	Encode(m *wamp.Message) ([]byte, error)
	Decode(data []byte) (*wamp.Message, error)
	Type() CodecType
}

// GetCodec returns the codec for the given type. Unknown types fall back to
// JSON, the format every router supports.
func GetCodec(ct CodecType) Codec {
	switch ct {
	case CodecTypeMsgPack:
		return &MsgPackCodec{}
	case CodecTypeCBOR:
		return &CBORCodec{}
	default:
		return &JSONCodec{}
	}
}

// flatten builds the wire array [code, args...].
func flatten(m *wamp.Message) []any {
	arr := make([]any, 0, len(m.Args)+1)
	arr = append(arr, m.Code)
	return append(arr, m.Args...)
}

// rebuild validates a decoded wire array back into a Message.
func rebuild(arr []any) (*wamp.Message, error) {
	if len(arr) == 0 {
		return nil, fmt.Errorf("codec: empty message array")
	}
	code, ok := wamp.AsID(arr[0])
	if !ok {
		return nil, fmt.Errorf("codec: message code is not an integer: %#v", arr[0])
	}
	return wamp.FromCode(code, arr[1:])
}
