// Package wamp defines the WAMP message model: the typed representation of a
// single protocol message, the authoritative type↔code table, and the session
// and request identifier generator.
//
// A Message is the "envelope" for everything that crosses a WAMP connection.
// On the wire it is the flat array [code, args...]; the codec layer owns the
// byte format, this package owns validity. A Message is constructed right
// before being sent or right after being decoded, and is immutable afterwards.
package wamp

import (
	"errors"
	"fmt"
)

// Construction errors. All are recoverable and reported to the caller of New;
// MustNew converts any of them into a panic for call sites that consider
// invalid input a programming error.
var (
	ErrMissingTypeOrCode = errors.New("wamp: message needs a type or a code")
	ErrTypeCodeMismatch  = errors.New("wamp: message type and code disagree")
	ErrArgsNotAList      = errors.New("wamp: message args must be a list")
	ErrCodeOutOfRange    = errors.New("wamp: message code out of range")
	ErrCodeBadValue      = errors.New("wamp: message code cannot be resolved")
)

// Message is one WAMP message. Type and Code are always consistent per the
// type↔code table: construction either yields a fully valid Message or an
// error, never a partially valid one.
type Message struct {
	Type MessageType
	Code int64
	Args []any
}

// Template is the input to New. Zero-valued Type means "type omitted";
// Code is a pointer so that an explicit 0 (invalid) is distinguishable from
// "code omitted". Args may be nil, []any, or any list-shaped value.
type Template struct {
	Type MessageType
	Code *int64
	Args any
}

// Code64 is a convenience for filling Template.Code.
func Code64(c int64) *int64 { return &c }

// New validates a Template and builds a Message from it.
//
// Exactly one of Type/Code may be omitted: a missing code is derived from the
// type and vice versa. If both are present they must agree per the table.
// Args defaults to an empty list.
func New(tpl Template) (*Message, error) {
	if tpl.Type == "" && tpl.Code == nil {
		return nil, ErrMissingTypeOrCode
	}

	args, err := listArgs(tpl.Args)
	if err != nil {
		return nil, err
	}

	// Resolve the missing half of the (type, code) pair.
	typ := tpl.Type
	var code int64
	switch {
	case tpl.Code == nil:
		c, ok := typeToCode[typ]
		if !ok {
			return nil, fmt.Errorf("%w: unknown type %q", ErrCodeBadValue, typ)
		}
		code = c
	case typ == "":
		code = *tpl.Code
		if code < MinCode || code > MaxCode {
			return nil, fmt.Errorf("%w: %d", ErrCodeOutOfRange, code)
		}
		t, ok := codeToType[code]
		if !ok {
			return nil, fmt.Errorf("%w: code %d has no type assigned", ErrCodeBadValue, code)
		}
		typ = t
	default:
		code = *tpl.Code
		if code < MinCode || code > MaxCode {
			return nil, fmt.Errorf("%w: %d", ErrCodeOutOfRange, code)
		}
		if want, ok := typeToCode[typ]; !ok || want != code {
			return nil, fmt.Errorf("%w: type %q, code %d", ErrTypeCodeMismatch, typ, code)
		}
	}

	if code < MinCode || code > MaxCode {
		return nil, fmt.Errorf("%w: %d", ErrCodeOutOfRange, code)
	}

	return &Message{Type: typ, Code: code, Args: args}, nil
}

// MustNew is the strict variant of New: it panics on any construction error.
// Both share the same validation, so the two entry points cannot diverge.
func MustNew(tpl Template) *Message {
	m, err := New(tpl)
	if err != nil {
		panic(err)
	}
	return m
}

// Msg builds a message from its type and positional args. This is the common
// producer path (type known at the call site, code derived from the table).
func Msg(t MessageType, args ...any) (*Message, error) {
	return New(Template{Type: t, Args: args})
}

// MustMsg is the strict variant of Msg.
func MustMsg(t MessageType, args ...any) *Message {
	return MustNew(Template{Type: t, Args: args})
}

// FromCode builds a message from its wire code and decoded args. This is the
// consumer path, used by codecs right after reading [code, args...] off the
// wire.
func FromCode(code int64, args []any) (*Message, error) {
	return New(Template{Code: Code64(code), Args: args})
}

// listArgs accepts the list-shaped values a Template may carry.
func listArgs(v any) ([]any, error) {
	switch args := v.(type) {
	case nil:
		return []any{}, nil
	case []any:
		if args == nil {
			return []any{}, nil
		}
		return args, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrArgsNotAList, v)
	}
}

func (m *Message) String() string {
	return fmt.Sprintf("%s(%d) %v", m.Type, m.Code, m.Args)
}
