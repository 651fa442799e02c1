package transport

import (
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"gowamp/codec"
	"gowamp/protocol"
	"gowamp/wamp"
)

// RawSocket is a WAMP connection over a framed TCP stream.
type RawSocket struct {
	conn  net.Conn
	codec codec.Codec
	wmu   sync.Mutex // writes from Send and pong replies share the conn
}

// DialRawSocket connects to a raw-socket router endpoint and performs the
// opening handshake with the given serializer.
func DialRawSocket(addr string, ct codec.CodecType, timeout time.Duration) (*RawSocket, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "rawsocket dial %s", addr)
	}

	if err := protocol.ClientHandshake(conn, rawSerializer(ct)); err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "rawsocket handshake with %s", addr)
	}

	return &RawSocket{conn: conn, codec: codec.GetCodec(ct)}, nil
}

func (t *RawSocket) Send(m *wamp.Message) error {
	payload, err := t.codec.Encode(m)
	if err != nil {
		return err
	}
	t.wmu.Lock()
	defer t.wmu.Unlock()
	return protocol.Encode(t.conn, protocol.FrameMessage, payload)
}

// Recv reads frames until a message frame arrives. Pings are answered with
// pongs transparently; pongs are dropped.
func (t *RawSocket) Recv() (*wamp.Message, error) {
	for {
		ft, payload, err := protocol.Decode(t.conn)
		if err != nil {
			return nil, err
		}

		switch ft {
		case protocol.FramePing:
			t.wmu.Lock()
			err = protocol.Encode(t.conn, protocol.FramePong, payload)
			t.wmu.Unlock()
			if err != nil {
				return nil, err
			}
		case protocol.FramePong:
			// Keepalive answer, nothing to deliver
		default:
			return t.codec.Decode(payload)
		}
	}
}

func (t *RawSocket) Close() error {
	return t.conn.Close()
}
