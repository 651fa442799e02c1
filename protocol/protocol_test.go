package protocol

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	payload := []byte(`[1,"realm1",{}]`)

	var buf bytes.Buffer
	if err := Encode(&buf, FrameMessage, payload); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	ft, got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ft != FrameMessage {
		t.Errorf("frame type = %d, want message", ft)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload mismatch: got %s, want %s", got, payload)
	}
}

func TestEncodeDecodeEmptyPing(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, FramePing, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	ft, payload, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ft != FramePing {
		t.Errorf("frame type = %d, want ping", ft)
	}
	if len(payload) != 0 {
		t.Errorf("payload = %v, want empty", payload)
	}
}

func TestDecodeUnknownFrameType(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x07, 0x00, 0x00, 0x00})

	_, _, err := Decode(&buf)
	if err == nil {
		t.Fatal("expected error for unknown frame type, got nil")
	}
	if !strings.Contains(err.Error(), "unknown frame type") {
		t.Errorf("error should mention frame type, got: %v", err)
	}
}

func TestDecodeTruncatedFrame(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x00, 0x00, 0x05})
	buf.Write([]byte("ab")) // only 2 of the announced 5 bytes

	_, _, err := Decode(&buf)
	if err == nil {
		t.Fatal("expected error for truncated frame, got nil")
	}
}

func TestClientHandshake(t *testing.T) {
	// Scripted router: accepts msgpack with a 16MB limit
	router := &scriptedConn{reply: []byte{Magic, 0xF0 | SerializerMsgPack, 0x00, 0x00}}
	if err := ClientHandshake(router, SerializerMsgPack); err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	sent := router.sent.Bytes()
	if len(sent) != 4 || sent[0] != Magic {
		t.Fatalf("bad handshake offer: %v", sent)
	}
	if sent[1]&0x0F != SerializerMsgPack {
		t.Errorf("offer serializer = %d, want msgpack", sent[1]&0x0F)
	}
}

func TestClientHandshakeRejected(t *testing.T) {
	cases := []struct {
		reply []byte
		want  string
	}{
		{[]byte{0x00, 0x00, 0x00, 0x00}, "bad handshake magic"},
		{[]byte{Magic, 0x10, 0x00, 0x00}, "does not support serializer"},
		{[]byte{Magic, 0x40, 0x00, 0x00}, "connection limit"},
		{[]byte{Magic, 0xF0 | SerializerJSON, 0x00, 0x00}, "switched serializer"},
	}

	for _, tc := range cases {
		router := &scriptedConn{reply: tc.reply}
		err := ClientHandshake(router, SerializerCBOR)
		if err == nil {
			t.Errorf("reply %v: expected error, got nil", tc.reply)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("reply %v: error %q should contain %q", tc.reply, err, tc.want)
		}
	}
}

// scriptedConn plays the router side of a handshake: records what the client
// sends and answers with a canned reply.
type scriptedConn struct {
	sent  bytes.Buffer
	reply []byte
}

func (c *scriptedConn) Write(p []byte) (int, error) {
	return c.sent.Write(p)
}

func (c *scriptedConn) Read(p []byte) (int, error) {
	n := copy(p, c.reply)
	c.reply = c.reply[n:]
	return n, nil
}
