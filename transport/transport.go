// Package transport connects a WAMP client to a router and moves whole
// messages across, hiding whether the link is a WebSocket or a framed raw
// socket. Byte-level concerns (serialization, framing, handshakes) stay down
// here; everything above the transport deals in validated wamp.Message
// values only.
package transport

import (
	"gowamp/codec"
	"gowamp/protocol"
	"gowamp/wamp"
)

// Transport is one established connection to a router.
//
// Recv is meant to be driven by a single reader goroutine (the peer's read
// loop); Send may be called from any goroutine, implementations serialize
// writes internally.
type Transport interface {
	Send(m *wamp.Message) error
	Recv() (*wamp.Message, error)
	Close() error
}

// Serializer names for WebSocket subprotocol negotiation.
func subprotocol(ct codec.CodecType) string {
	switch ct {
	case codec.CodecTypeMsgPack:
		return "wamp.2.msgpack"
	case codec.CodecTypeCBOR:
		return "wamp.2.cbor"
	default:
		return "wamp.2.json"
	}
}

// rawSerializer maps a codec to its raw-socket handshake nibble.
func rawSerializer(ct codec.CodecType) byte {
	switch ct {
	case codec.CodecTypeMsgPack:
		return protocol.SerializerMsgPack
	case codec.CodecTypeCBOR:
		return protocol.SerializerCBOR
	default:
		return protocol.SerializerJSON
	}
}
