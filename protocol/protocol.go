// Package protocol implements the WAMP raw-socket framing.
//
// Raw socket runs WAMP over a bare TCP stream, so it needs its own message
// boundaries: a 4-byte handshake when the connection opens, then a fixed
// 4-byte prefix in front of every frame. The receiver reads the prefix first
// to learn the payload length, then reads exactly that many bytes.
//
// Frame format:
//
//	0     1        4
//	┌─────┬────────┬────────────────┐
//	│type │ length │   payload ...   │
//	│  1B │ 3B BE  │  length bytes   │
//	└─────┴────────┴────────────────┘
//
// Handshake (client → router): [0x7F, maxlen<<4|serializer, 0x00, 0x00].
// The router echoes 0x7F with its own limits, or an error nibble and closes.
package protocol

import (
	"fmt"
	"io"
)

// Magic is the first octet of the raw-socket handshake. A peer that answers
// with anything else is not speaking WAMP raw socket (e.g. an HTTP server on
// the wrong port).
const Magic byte = 0x7F

// Serializer codes carried in the low nibble of the second handshake octet.
const (
	SerializerJSON    byte = 1
	SerializerMsgPack byte = 2
	SerializerCBOR    byte = 3
)

// FrameType distinguishes regular messages from transport-level keepalives.
type FrameType byte

const (
	FrameMessage FrameType = 0 // Serialized WAMP message
	FramePing    FrameType = 1 // Keepalive probe; peer must answer with pong
	FramePong    FrameType = 2 // Keepalive answer, payload echoed from the ping
)

// MaxLenExponent encodes our receive limit: 2^(9+15) = 16MB, the protocol
// maximum.
const MaxLenExponent byte = 15

const prefixSize = 4

// MaxPayload is the largest payload we accept in a single frame.
const MaxPayload = 1 << (9 + MaxLenExponent)

// Handshake error nibbles returned by a router in the second octet.
const (
	errSerializerUnsupported byte = 1
	errMaxLenUnacceptable    byte = 2
	errUseDedicatedTLS       byte = 3
	errMaxConnections        byte = 4
)

// ClientHandshake performs the client side of the raw-socket handshake:
// it offers our receive limit and serializer, then validates the router's
// reply.
func ClientHandshake(rw io.ReadWriter, serializer byte) error {
	offer := [4]byte{Magic, MaxLenExponent<<4 | serializer, 0x00, 0x00}
	if _, err := rw.Write(offer[:]); err != nil {
		return err
	}

	var reply [4]byte
	if _, err := io.ReadFull(rw, reply[:]); err != nil {
		return err
	}
	if reply[0] != Magic {
		return fmt.Errorf("protocol: bad handshake magic: %#x", reply[0])
	}

	// Low nibble zero means the router rejected the offer; the high nibble
	// carries the reason.
	if reply[1]&0x0F == 0 {
		switch reply[1] >> 4 {
		case errSerializerUnsupported:
			return fmt.Errorf("protocol: router does not support serializer %d", serializer)
		case errMaxLenUnacceptable:
			return fmt.Errorf("protocol: router rejected our maximum message length")
		case errUseDedicatedTLS:
			return fmt.Errorf("protocol: router requires a dedicated TLS port")
		case errMaxConnections:
			return fmt.Errorf("protocol: router connection limit reached")
		default:
			return fmt.Errorf("protocol: handshake rejected: %#x", reply[1])
		}
	}
	if reply[1]&0x0F != serializer {
		return fmt.Errorf("protocol: router switched serializer: %#x", reply[1])
	}
	return nil
}

// Encode writes one complete frame (prefix + payload) to w. Callers sharing
// a writer across goroutines must serialize writes, otherwise frames
// interleave and corrupt the stream.
func Encode(w io.Writer, ft FrameType, payload []byte) error {
	if len(payload) > MaxPayload {
		return fmt.Errorf("protocol: payload %d bytes exceeds frame limit %d", len(payload), MaxPayload)
	}

	prefix := [prefixSize]byte{
		byte(ft),
		byte(len(payload) >> 16),
		byte(len(payload) >> 8),
		byte(len(payload)),
	}
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return nil
}

// Decode reads one complete frame from r. io.ReadFull guarantees exactly the
// announced number of payload bytes is consumed, keeping the stream aligned
// on frame boundaries.
func Decode(r io.Reader) (FrameType, []byte, error) {
	var prefix [prefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, nil, err
	}

	ft := FrameType(prefix[0] & 0x07)
	if ft != FrameMessage && ft != FramePing && ft != FramePong {
		return 0, nil, fmt.Errorf("protocol: unknown frame type: %d", prefix[0])
	}

	length := int(prefix[1])<<16 | int(prefix[2])<<8 | int(prefix[3])
	if length > MaxPayload {
		return 0, nil, fmt.Errorf("protocol: announced payload %d bytes exceeds frame limit %d", length, MaxPayload)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return ft, payload, nil
}
