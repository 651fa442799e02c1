package wamp

// MessageType is the symbolic name of a WAMP message kind.
type MessageType string

// The closed set of WAMP message types. Session management, pub/sub, and RPC
// messages all travel over the same connection and are distinguished on the
// wire by their numeric code (see the table below).
const (
	Hello        MessageType = "hello"
	Welcome      MessageType = "welcome"
	Abort        MessageType = "abort"
	Challenge    MessageType = "challenge"
	Authenticate MessageType = "authenticate"
	Goodbye      MessageType = "goodbye"
	Error        MessageType = "error"
	Publish      MessageType = "publish"
	Published    MessageType = "published"
	Subscribe    MessageType = "subscribe"
	Subscribed   MessageType = "subscribed"
	Unsubscribe  MessageType = "unsubscribe"
	Unsubscribed MessageType = "unsubscribed"
	Event        MessageType = "event"
	Call         MessageType = "call"
	Cancel       MessageType = "cancel"
	Result       MessageType = "result"
	Register     MessageType = "register"
	Registered   MessageType = "registered"
	Unregister   MessageType = "unregister"
	Unregistered MessageType = "unregistered"
	Invocation   MessageType = "invocation"
	Interrupt    MessageType = "interrupt"
	Yield        MessageType = "yield"
)

// Valid wire codes lie in [MinCode, MaxCode]. Not every code in range has a
// symbolic type assigned; unassigned codes are numerically valid but unknown.
const (
	MinCode int64 = 1
	MaxCode int64 = 1024
)

// typeToCode is the authoritative type↔code table from the WAMP basic profile.
// codeToType below is derived from it at init so the two can never drift.
var typeToCode = map[MessageType]int64{
	Hello:        1,
	Welcome:      2,
	Abort:        3,
	Challenge:    4,
	Authenticate: 5,
	Goodbye:      6,
	Error:        8,
	Publish:      16,
	Published:    17,
	Subscribe:    32,
	Subscribed:   33,
	Unsubscribe:  34,
	Unsubscribed: 35,
	Event:        36,
	Call:         48,
	Cancel:       49,
	Result:       50,
	Register:     64,
	Registered:   65,
	Unregister:   66,
	Unregistered: 67,
	Invocation:   68,
	Interrupt:    69,
	Yield:        70,
}

var codeToType = make(map[int64]MessageType, len(typeToCode))

func init() {
	for t, c := range typeToCode {
		codeToType[c] = t
	}
}

// CodeForType returns the wire code for a message type, or def when the type
// is not in the table. It never fails, so callers can use it for cheap
// "is this a known type" checks with a sentinel default.
func CodeForType(t MessageType, def int64) int64 {
	if c, ok := typeToCode[t]; ok {
		return c
	}
	return def
}

// TypeForCode returns the message type for a wire code, or def when the code
// has no type assigned.
func TypeForCode(c int64, def MessageType) MessageType {
	if t, ok := codeToType[c]; ok {
		return t
	}
	return def
}
