package codec

import (
	"errors"
	"testing"

	"gowamp/wamp"
)

func allCodecs() []Codec {
	return []Codec{&JSONCodec{}, &MsgPackCodec{}, &CBORCodec{}}
}

func TestEncodeDecodeSubscribe(t *testing.T) {
	msg := wamp.MustMsg(wamp.Subscribe, int64(713845233), map[string]any{}, "com.myapp.mytopic1")

	for _, c := range allCodecs() {
		data, err := c.Encode(msg)
		if err != nil {
			t.Fatalf("codec %d: Encode failed: %v", c.Type(), err)
		}

		got, err := c.Decode(data)
		if err != nil {
			t.Fatalf("codec %d: Decode failed: %v", c.Type(), err)
		}

		if got.Type != wamp.Subscribe {
			t.Errorf("codec %d: Type = %s, want subscribe", c.Type(), got.Type)
		}
		if got.Code != 32 {
			t.Errorf("codec %d: Code = %d, want 32", c.Type(), got.Code)
		}
		if len(got.Args) != 3 {
			t.Fatalf("codec %d: Args = %v, want 3 elements", c.Type(), got.Args)
		}
		if id, ok := wamp.AsID(got.Args[0]); !ok || id != 713845233 {
			t.Errorf("codec %d: request id = %#v, want 713845233", c.Type(), got.Args[0])
		}
		if topic, ok := got.Args[2].(string); !ok || topic != "com.myapp.mytopic1" {
			t.Errorf("codec %d: topic = %#v", c.Type(), got.Args[2])
		}
	}
}

func TestDecodeNestedPayload(t *testing.T) {
	msg := wamp.MustMsg(wamp.Event,
		int64(5512315355), int64(4429313566), map[string]any{},
		[]any{"hello", true, int64(7)},
		map[string]any{"color": "orange", "sizes": []any{int64(23), int64(42)}},
	)

	for _, c := range allCodecs() {
		data, err := c.Encode(msg)
		if err != nil {
			t.Fatalf("codec %d: Encode failed: %v", c.Type(), err)
		}
		got, err := c.Decode(data)
		if err != nil {
			t.Fatalf("codec %d: Decode failed: %v", c.Type(), err)
		}

		list, ok := got.Args[3].([]any)
		if !ok || len(list) != 3 {
			t.Fatalf("codec %d: args list = %#v", c.Type(), got.Args[3])
		}
		if list[0] != "hello" || list[1] != true {
			t.Errorf("codec %d: list = %#v", c.Type(), list)
		}
		if n, ok := wamp.AsID(list[2]); !ok || n != 7 {
			t.Errorf("codec %d: list int = %#v", c.Type(), list[2])
		}

		kwargs, ok := got.Args[4].(map[string]any)
		if !ok {
			t.Fatalf("codec %d: kwargs = %#v", c.Type(), got.Args[4])
		}
		if kwargs["color"] != "orange" {
			t.Errorf("codec %d: kwargs = %#v", c.Type(), kwargs)
		}
	}
}

func TestDecodeRejectsUnknownCode(t *testing.T) {
	for _, c := range allCodecs() {
		// 7 is in range but unassigned; 2000 is out of range
		for _, raw := range [][]any{{int64(7)}, {int64(2000)}} {
			m := &wamp.Message{Type: "bogus", Code: raw[0].(int64)}
			data, err := c.Encode(m)
			if err != nil {
				t.Fatalf("codec %d: Encode failed: %v", c.Type(), err)
			}
			_, err = c.Decode(data)
			if err == nil {
				t.Errorf("codec %d: Decode accepted code %d", c.Type(), raw[0])
			}
		}
	}
}

func TestDecodeRejectsNonIntegerCode(t *testing.T) {
	c := &JSONCodec{}
	_, err := c.Decode([]byte(`["hello", 1]`))
	if err == nil {
		t.Fatal("Decode accepted a string code")
	}
	if errors.Is(err, wamp.ErrCodeOutOfRange) {
		t.Fatal("non-integer code should not read as out-of-range")
	}
}

func TestDecodeRejectsEmptyArray(t *testing.T) {
	if _, err := (&JSONCodec{}).Decode([]byte(`[]`)); err == nil {
		t.Fatal("Decode accepted an empty array")
	}
}

func TestGetCodec(t *testing.T) {
	if GetCodec(CodecTypeMsgPack).Type() != CodecTypeMsgPack {
		t.Error("GetCodec(msgpack) returned the wrong codec")
	}
	if GetCodec(CodecTypeCBOR).Type() != CodecTypeCBOR {
		t.Error("GetCodec(cbor) returned the wrong codec")
	}
	if GetCodec(CodecTypeJSON).Type() != CodecTypeJSON {
		t.Error("GetCodec(json) returned the wrong codec")
	}
}
