package codec

import (
	"github.com/vmihailenco/msgpack"

	"gowamp/wamp"
)

// MsgPackCodec implements the wamp.2.msgpack serialization: binary, compact,
// and the usual choice when both peers support it.
type MsgPackCodec struct{}

func (c *MsgPackCodec) Encode(m *wamp.Message) ([]byte, error) {
	return msgpack.Marshal(flatten(m))
}

func (c *MsgPackCodec) Decode(data []byte) (*wamp.Message, error) {
	var arr []any
	if err := msgpack.Unmarshal(data, &arr); err != nil {
		return nil, err
	}
	return rebuild(normalizeArr(arr))
}

func (c *MsgPackCodec) Type() CodecType {
	return CodecTypeMsgPack
}
