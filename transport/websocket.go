package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"gowamp/codec"
	"gowamp/wamp"
)

// WebSocket is a WAMP connection over a WebSocket. JSON messages travel as
// text frames, msgpack and CBOR as binary frames, per the registered
// wamp.2.* subprotocols.
type WebSocket struct {
	conn  *websocket.Conn
	codec codec.Codec
	wmu   sync.Mutex
}

// DialWebSocket connects to a router's WebSocket endpoint, offering the
// subprotocol that matches the requested serializer.
func DialWebSocket(url string, ct codec.CodecType, timeout time.Duration) (*WebSocket, error) {
	dialer := websocket.Dialer{
		Subprotocols:     []string{subprotocol(ct)},
		HandshakeTimeout: timeout,
	}

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "websocket dial %s", url)
	}

	// A router that picked a different subprotocol would be speaking a
	// serialization we did not ask for.
	if got := conn.Subprotocol(); got != "" && got != subprotocol(ct) {
		conn.Close()
		return nil, errors.Errorf("websocket: router selected subprotocol %q, offered %q", got, subprotocol(ct))
	}

	return &WebSocket{conn: conn, codec: codec.GetCodec(ct)}, nil
}

func (t *WebSocket) Send(m *wamp.Message) error {
	payload, err := t.codec.Encode(m)
	if err != nil {
		return err
	}

	frameType := websocket.BinaryMessage
	if t.codec.Type() == codec.CodecTypeJSON {
		frameType = websocket.TextMessage
	}

	t.wmu.Lock()
	defer t.wmu.Unlock()
	return t.conn.WriteMessage(frameType, payload)
}

func (t *WebSocket) Recv() (*wamp.Message, error) {
	for {
		frameType, payload, err := t.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		// Control frames are handled inside gorilla; anything else carries
		// exactly one serialized WAMP message.
		if frameType == websocket.TextMessage || frameType == websocket.BinaryMessage {
			return t.codec.Decode(payload)
		}
	}
}

func (t *WebSocket) Close() error {
	t.wmu.Lock()
	// Best effort close frame so the router sees a clean shutdown.
	t.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	t.wmu.Unlock()
	return t.conn.Close()
}
