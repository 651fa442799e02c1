package codec

import (
	"github.com/fxamacker/cbor/v2"

	"gowamp/wamp"
)

// CBORCodec implements the wamp.2.cbor serialization.
type CBORCodec struct{}

func (c *CBORCodec) Encode(m *wamp.Message) ([]byte, error) {
	return cbor.Marshal(flatten(m))
}

func (c *CBORCodec) Decode(data []byte) (*wamp.Message, error) {
	var arr []any
	if err := cbor.Unmarshal(data, &arr); err != nil {
		return nil, err
	}
	return rebuild(normalizeArr(arr))
}

func (c *CBORCodec) Type() CodecType {
	return CodecTypeCBOR
}
