// Package peer runs one WAMP connection: a Peer owns the transport, reads
// incoming messages in a single goroutine, and delivers them into a mailbox
// channel. The correlation engine (expect.go) consumes that mailbox to match
// replies to the request a caller just sent.
//
//	caller ──Send(subscribe)──→ Peer ──→ transport ──→ router
//	caller ──Expect(subscribed).Wait(mailbox)──┐
//	                                           │ blocks until a matching
//	readLoop: transport.Recv → mailbox ────────┘ reply, error, close, or
//	                                             timeout
package peer

import (
	"sync"

	"go.uber.org/zap"

	"gowamp/transport"
	"gowamp/wamp"
)

// Event is one item delivered into a peer's mailbox: a decoded message, a
// closed-connection notification, or a benign internal signal (Msg nil and
// Closed false) that waiters must absorb silently.
type Event struct {
	Msg    *wamp.Message
	Closed bool
	Reason string // close reason, set when Closed
	From   string // name of the peer that delivered the event
}

// Peer is the per-connection actor. The read loop is the only reader of the
// transport; Send may be called from any goroutine.
type Peer struct {
	name    string
	tr      transport.Transport
	mailbox chan Event
	log     *zap.Logger

	closeOnce sync.Once
}

// Option configures a Peer.
type Option func(*Peer)

// WithLogger attaches a structured logger; the default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Peer) { p.log = log }
}

// mailboxDepth absorbs short bursts from the router (e.g. queued events
// arriving with a reply) without stalling the read loop.
const mailboxDepth = 32

// New starts the read loop for an established transport and returns the
// peer that owns it.
func New(name string, tr transport.Transport, opts ...Option) *Peer {
	p := &Peer{
		name:    name,
		tr:      tr,
		mailbox: make(chan Event, mailboxDepth),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.readLoop()
	return p
}

// Name identifies this peer in events it delivers.
func (p *Peer) Name() string { return p.name }

// Mailbox is the stream the correlation engine consumes. At most one
// correlation wait may be live on it at a time; concurrent callers must
// serialize (see Expect).
func (p *Peer) Mailbox() <-chan Event { return p.mailbox }

// Send writes one message to the router. A send failure is reported here,
// synchronously; it never surfaces through the mailbox.
func (p *Peer) Send(m *wamp.Message) error {
	p.log.Debug("send", zap.String("peer", p.name), zap.String("type", string(m.Type)))
	return p.tr.Send(m)
}

// Close tears down the transport. The read loop notices and delivers the
// final Closed event.
func (p *Peer) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.tr.Close()
	})
	return err
}

// readLoop delivers every decoded message into the mailbox in arrival order.
// On a transport error it delivers exactly one Closed event and exits; the
// mailbox is then closed so late waiters do not block forever.
func (p *Peer) readLoop() {
	for {
		m, err := p.tr.Recv()
		if err != nil {
			p.log.Debug("connection closed",
				zap.String("peer", p.name), zap.Error(err))
			p.mailbox <- Event{Closed: true, Reason: err.Error(), From: p.name}
			close(p.mailbox)
			return
		}
		p.log.Debug("recv",
			zap.String("peer", p.name), zap.String("type", string(m.Type)))
		p.mailbox <- Event{Msg: m, From: p.name}
	}
}
