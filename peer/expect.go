package peer

import (
	"time"

	"gowamp/wamp"
)

// OutcomeKind is the terminal state of one correlation wait. Every call site
// is expected to switch over all four kinds; none of them is a default the
// engine suppresses.
type OutcomeKind int

const (
	Resolved      OutcomeKind = iota // a success rule matched
	ProtocolError                    // the router answered with a WAMP error for this request
	Closed                           // the connection died while waiting
	TimedOut                         // nothing matched before the deadline
)

func (k OutcomeKind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case ProtocolError:
		return "protocol-error"
	case Closed:
		return "closed"
	default:
		return "timed-out"
	}
}

// Outcome is the result of Expect.Wait.
type Outcome struct {
	Kind   OutcomeKind
	Value  any    // handler result on Resolved, or an error rule's result
	ErrURI string // error URI on ProtocolError, e.g. wamp.error.not_authorized
	Detail []any  // raw error payload on ProtocolError
	Reason string // close reason on Closed
}

// Matcher inspects a reply's args. A return of (value, true) means the rule
// matched and value becomes the outcome.
type Matcher func(args []any) (any, bool)

// Rule is one (pattern, handler) pair. Success rules run against replies of
// the expected type; error rules run against the WAMP error shape for it.
type Rule struct {
	onError bool
	match   Matcher
}

// OnSuccess declares a rule for replies of the expected type. Rules are
// evaluated in declaration order and the first match wins, so order specific
// patterns before catch-alls.
func OnSuccess(m Matcher) Rule { return Rule{match: m} }

// OnError declares a rule for the error reply shape. Without one, the raw
// error payload is surfaced on the outcome.
func OnError(m Matcher) Rule { return Rule{onError: true, match: m} }

// DefaultTimeout bounds a wait when the caller does not override it.
const DefaultTimeout = 5 * time.Second

// Expect describes the reply a caller is waiting for after sending a
// request. It lives for exactly one Wait and is then discarded.
type Expect struct {
	Type    wamp.MessageType
	Rules   []Rule
	Timeout time.Duration

	// errCode is derived from Type: an error reply for a subscribe request
	// carries subscribe's own code as its first element.
	errCode int64
}

// For builds an Expect for the given reply type.
func For(t wamp.MessageType, rules ...Rule) *Expect {
	return &Expect{
		Type:    t,
		Rules:   rules,
		Timeout: DefaultTimeout,
		errCode: wamp.CodeForType(t, -1),
	}
}

// Within overrides the wait deadline.
func (e *Expect) Within(d time.Duration) *Expect {
	e.Timeout = d
	return e
}

// Wait blocks the calling goroutine until one of the four outcomes, consuming
// events from the peer's mailbox:
//
//   - a message of the expected type whose args satisfy a success rule
//     resolves the wait with that rule's value;
//   - a WAMP error message whose args begin [errCode, details, ...] ends the
//     wait with a ProtocolError outcome;
//   - a closed-connection event ends the wait immediately, whatever else is
//     queued behind it — a dead connection must never read as a timeout;
//   - deadline expiry ends the wait with TimedOut, and no message is
//     consumed afterwards (a late reply must not reach a caller that has
//     moved on).
//
// Non-matching messages and benign signals are consumed and dropped. The
// engine assumes exactly one live Wait per peer; overlapping waiters on one
// mailbox must be serialized by the caller.
func (e *Expect) Wait(mailbox <-chan Event) Outcome {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case ev, ok := <-mailbox:
			if !ok {
				return Outcome{Kind: Closed, Reason: "mailbox closed"}
			}
			if ev.Closed {
				return Outcome{Kind: Closed, Reason: ev.Reason}
			}
			if ev.Msg == nil {
				continue // benign internal signal
			}
			if out, done := e.examine(ev.Msg); done {
				return out
			}

		case <-deadline.C:
			return Outcome{Kind: TimedOut}
		}
	}
}

// examine applies the outcome rules to one decoded message.
func (e *Expect) examine(m *wamp.Message) (Outcome, bool) {
	if m.Type == e.Type {
		for _, r := range e.Rules {
			if r.onError {
				continue
			}
			if v, ok := r.match(m.Args); ok {
				return Outcome{Kind: Resolved, Value: v}, true
			}
		}
		return Outcome{}, false
	}

	if m.Type == wamp.Error && len(m.Args) >= 2 {
		code, ok := wamp.AsID(m.Args[0])
		if !ok || code != e.errCode {
			return Outcome{}, false
		}

		out := Outcome{Kind: ProtocolError, Detail: m.Args}
		if len(m.Args) >= 3 {
			if uri, ok := m.Args[2].(string); ok {
				out.ErrURI = uri
			}
		}
		for _, r := range e.Rules {
			if !r.onError {
				continue
			}
			if v, ok := r.match(m.Args); ok {
				out.Value = v
				break
			}
		}
		return out, true
	}

	return Outcome{}, false
}
