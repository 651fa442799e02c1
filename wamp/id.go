package wamp

import (
	"crypto/rand"
	"encoding/binary"
)

// MaxID is the largest WAMP id: ids must survive a round trip through a
// double-precision float on any peer, so they are capped at 2^53.
const MaxID int64 = 1 << 53

// NewID returns a random WAMP id in [0, 2^53], suitable for session ids,
// request ids, and subscription ids. Each draw pulls fresh entropy from the
// OS so sequences cannot correlate across process restarts; ids are
// "effectively unique" in that range, not guaranteed distinct.
func NewID() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand reads from the OS pool and does not fail in practice;
		// if it ever does there is no safe id to hand out.
		panic(err)
	}
	return int64(binary.BigEndian.Uint64(buf[:]) % uint64(MaxID+1))
}

// AsID coerces the integer shapes codecs produce (JSON floats, msgpack and
// CBOR signed/unsigned ints) into a WAMP id. Returns false when v is not an
// integral number.
func AsID(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}
