package codec

import (
	"encoding/json"

	"gowamp/wamp"
)

// JSONCodec implements the wamp.2.json serialization.
// Pros: human-readable, every router supports it, easy to debug.
// Cons: slower, larger payloads, and integers survive only up to 2^53 —
// which is exactly why WAMP ids are capped there.
type JSONCodec struct{}

func (c *JSONCodec) Encode(m *wamp.Message) ([]byte, error) {
	return json.Marshal(flatten(m))
}

func (c *JSONCodec) Decode(data []byte) (*wamp.Message, error) {
	var arr []any
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, err
	}
	return rebuild(normalizeArr(arr))
}

func (c *JSONCodec) Type() CodecType {
	return CodecTypeJSON
}
