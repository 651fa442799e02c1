// Package client implements a minimal WAMP session on top of the peer and
// message layers: join a realm, subscribe, publish with acknowledgement, and
// call remote procedures. Each operation is one request/reply correlation;
// the session keeps exactly one wait in flight at a time, so concurrent
// callers must serialize their use of a Session.
package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gowamp/codec"
	"gowamp/peer"
	"gowamp/registry"
	"gowamp/transport"
	"gowamp/wamp"
)

// Options configures a session.
type Options struct {
	Codec       codec.CodecType
	Timeout     time.Duration // per-request correlation timeout, default 5s
	DialTimeout time.Duration
	Logger      *zap.Logger
}

func (o *Options) withDefaults() {
	if o.Timeout <= 0 {
		o.Timeout = peer.DefaultTimeout
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Session is an established connection to a realm on a router.
type Session struct {
	peer    *peer.Peer
	realm   string
	id      int64
	timeout time.Duration
	log     *zap.Logger
}

// Dial connects to a router endpoint and joins the realm. ws:// and wss://
// URLs use the WebSocket transport; tcp:// uses raw socket.
func Dial(url, realm string, opts Options) (*Session, error) {
	opts.withDefaults()

	var (
		tr  transport.Transport
		err error
	)
	switch {
	case strings.HasPrefix(url, "ws://"), strings.HasPrefix(url, "wss://"):
		tr, err = transport.DialWebSocket(url, opts.Codec, opts.DialTimeout)
	case strings.HasPrefix(url, "tcp://"):
		tr, err = transport.DialRawSocket(strings.TrimPrefix(url, "tcp://"), opts.Codec, opts.DialTimeout)
	default:
		return nil, errors.Errorf("client: unsupported endpoint url %q", url)
	}
	if err != nil {
		return nil, err
	}

	return Attach(tr, realm, opts)
}

// DialRealm discovers a router endpoint for the realm from the registry and
// connects to it.
func DialRealm(reg registry.Registry, realm string, opts Options) (*Session, error) {
	eps, err := reg.Discover(realm)
	if err != nil {
		return nil, errors.Wrapf(err, "discover routers for realm %q", realm)
	}
	ep, ok := registry.Pick(eps)
	if !ok {
		return nil, errors.Errorf("client: no router advertises realm %q", realm)
	}
	return Dial(ep.URL, realm, opts)
}

// Attach joins a realm over an already established transport.
func Attach(tr transport.Transport, realm string, opts Options) (*Session, error) {
	opts.withDefaults()

	s := &Session{
		peer:    peer.New(realm, tr, peer.WithLogger(opts.Logger)),
		realm:   realm,
		timeout: opts.Timeout,
		log:     opts.Logger,
	}
	if err := s.join(); err != nil {
		s.peer.Close()
		return nil, err
	}
	return s, nil
}

// roles we announce in HELLO. The router only routes what we declare.
func helloDetails() map[string]any {
	return map[string]any{
		"roles": map[string]any{
			"subscriber": map[string]any{},
			"publisher":  map[string]any{},
			"caller":     map[string]any{},
		},
	}
}

func (s *Session) join() error {
	hello, err := wamp.Msg(wamp.Hello, s.realm, helloDetails())
	if err != nil {
		return err
	}
	if err := s.peer.Send(hello); err != nil {
		return err
	}

	out := peer.For(wamp.Welcome,
		peer.OnSuccess(func(args []any) (any, bool) {
			if len(args) < 1 {
				return nil, false
			}
			id, ok := wamp.AsID(args[0])
			return id, ok
		}),
	).Within(s.timeout).Wait(s.peer.Mailbox())

	id, err := s.settle("join", out)
	if err != nil {
		return err
	}
	s.id = id.(int64)
	s.log.Info("joined realm",
		zap.String("realm", s.realm), zap.Int64("session", s.id))
	return nil
}

// ID is the session id the router assigned in WELCOME.
func (s *Session) ID() int64 { return s.id }

// Subscribe registers interest in a topic and returns the subscription id.
func (s *Session) Subscribe(topic string) (int64, error) {
	reqID := wamp.NewID()
	msg, err := wamp.Msg(wamp.Subscribe, reqID, map[string]any{}, topic)
	if err != nil {
		return 0, err
	}
	if err := s.peer.Send(msg); err != nil {
		return 0, err
	}

	out := peer.For(wamp.Subscribed,
		peer.OnSuccess(replyFor(reqID)),
	).Within(s.timeout).Wait(s.peer.Mailbox())

	v, err := s.settle("subscribe "+topic, out)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// Unsubscribe withdraws a subscription.
func (s *Session) Unsubscribe(subscription int64) error {
	reqID := wamp.NewID()
	msg, err := wamp.Msg(wamp.Unsubscribe, reqID, subscription)
	if err != nil {
		return err
	}
	if err := s.peer.Send(msg); err != nil {
		return err
	}

	out := peer.For(wamp.Unsubscribed,
		peer.OnSuccess(func(args []any) (any, bool) {
			if len(args) < 1 {
				return nil, false
			}
			id, ok := wamp.AsID(args[0])
			return struct{}{}, ok && id == reqID
		}),
	).Within(s.timeout).Wait(s.peer.Mailbox())

	_, err = s.settle("unsubscribe", out)
	return err
}

// Publish sends an acknowledged publication and returns the publication id.
func (s *Session) Publish(topic string, args ...any) (int64, error) {
	reqID := wamp.NewID()
	msg, err := wamp.Msg(wamp.Publish, reqID, map[string]any{"acknowledge": true}, topic, args)
	if err != nil {
		return 0, err
	}
	if err := s.peer.Send(msg); err != nil {
		return 0, err
	}

	out := peer.For(wamp.Published,
		peer.OnSuccess(replyFor(reqID)),
	).Within(s.timeout).Wait(s.peer.Mailbox())

	v, err := s.settle("publish "+topic, out)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// Call invokes a remote procedure and returns the result arguments.
func (s *Session) Call(procedure string, args ...any) ([]any, error) {
	reqID := wamp.NewID()
	msg, err := wamp.Msg(wamp.Call, reqID, map[string]any{}, procedure, args)
	if err != nil {
		return nil, err
	}
	if err := s.peer.Send(msg); err != nil {
		return nil, err
	}

	out := peer.For(wamp.Result,
		peer.OnSuccess(func(args []any) (any, bool) {
			if len(args) < 2 {
				return nil, false
			}
			if id, ok := wamp.AsID(args[0]); !ok || id != reqID {
				return nil, false
			}
			if len(args) >= 3 {
				if res, ok := args[2].([]any); ok {
					return res, true
				}
			}
			return []any{}, true
		}),
	).Within(s.timeout).Wait(s.peer.Mailbox())

	v, err := s.settle("call "+procedure, out)
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

// Leave says goodbye to the router and closes the connection.
func (s *Session) Leave() error {
	msg, err := wamp.Msg(wamp.Goodbye, map[string]any{}, wamp.CloseRealm)
	if err != nil {
		return err
	}
	if err := s.peer.Send(msg); err != nil {
		s.peer.Close()
		return err
	}

	out := peer.For(wamp.Goodbye,
		peer.OnSuccess(func(args []any) (any, bool) { return struct{}{}, true }),
	).Within(s.timeout).Wait(s.peer.Mailbox())

	closeErr := s.peer.Close()
	if _, err := s.settle("leave", out); err != nil {
		return err
	}
	return closeErr
}

// replyFor matches the common [requestID, id] reply shape and yields the id.
func replyFor(reqID int64) peer.Matcher {
	return func(args []any) (any, bool) {
		if len(args) < 2 {
			return nil, false
		}
		if id, ok := wamp.AsID(args[0]); !ok || id != reqID {
			return nil, false
		}
		v, ok := wamp.AsID(args[1])
		return v, ok
	}
}

// settle turns a correlation outcome into the session's result, handling all
// four terminal kinds explicitly.
func (s *Session) settle(op string, out peer.Outcome) (any, error) {
	switch out.Kind {
	case peer.Resolved:
		return out.Value, nil
	case peer.ProtocolError:
		s.log.Warn("router reported error",
			zap.String("op", op), zap.String("uri", out.ErrURI))
		return nil, fmt.Errorf("client: %s failed: %s", op, out.ErrURI)
	case peer.Closed:
		return nil, fmt.Errorf("client: %s failed: connection closed: %s", op, out.Reason)
	case peer.TimedOut:
		return nil, fmt.Errorf("client: %s timed out", op)
	default:
		return nil, fmt.Errorf("client: %s ended in unknown state", op)
	}
}
