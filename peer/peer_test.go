package peer

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowamp/wamp"
)

// fakeTransport feeds canned messages to the read loop and records sends.
type fakeTransport struct {
	in   chan *wamp.Message
	mu   sync.Mutex
	sent []*wamp.Message
	once sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{in: make(chan *wamp.Message, 16)}
}

func (t *fakeTransport) Send(m *wamp.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, m)
	return nil
}

func (t *fakeTransport) Recv() (*wamp.Message, error) {
	m, ok := <-t.in
	if !ok {
		return nil, io.EOF
	}
	return m, nil
}

func (t *fakeTransport) Close() error {
	t.once.Do(func() { close(t.in) })
	return nil
}

func (t *fakeTransport) deliver(m *wamp.Message) { t.in <- m }

func TestPeerDeliversInArrivalOrder(t *testing.T) {
	tr := newFakeTransport()
	p := New("router", tr)
	defer p.Close()

	tr.deliver(wamp.MustMsg(wamp.Welcome, int64(1), map[string]any{}))
	tr.deliver(wamp.MustMsg(wamp.Subscribed, int64(2), int64(3)))

	ev := <-p.Mailbox()
	require.NotNil(t, ev.Msg)
	assert.Equal(t, wamp.Welcome, ev.Msg.Type)
	assert.Equal(t, "router", ev.From)

	ev = <-p.Mailbox()
	require.NotNil(t, ev.Msg)
	assert.Equal(t, wamp.Subscribed, ev.Msg.Type)
}

func TestPeerCloseDeliversClosedEvent(t *testing.T) {
	tr := newFakeTransport()
	p := New("router", tr)

	require.NoError(t, p.Close())

	select {
	case ev := <-p.Mailbox():
		assert.True(t, ev.Closed)
		assert.NotEmpty(t, ev.Reason)
		assert.Equal(t, "router", ev.From)
	case <-time.After(time.Second):
		t.Fatal("no closed event after transport shutdown")
	}

	// The mailbox is closed after the final event
	_, open := <-p.Mailbox()
	assert.False(t, open)
}

func TestPeerSendAndWait(t *testing.T) {
	tr := newFakeTransport()
	p := New("router", tr)
	defer p.Close()

	req := wamp.MustMsg(wamp.Subscribe, int64(77), map[string]any{}, "com.example.topic")
	require.NoError(t, p.Send(req))
	tr.deliver(wamp.MustMsg(wamp.Subscribed, int64(77), int64(42)))

	out := For(wamp.Subscribed, subscriptionRule(77)).Wait(p.Mailbox())
	require.Equal(t, Resolved, out.Kind)
	assert.Equal(t, int64(42), out.Value)

	tr.mu.Lock()
	defer tr.mu.Unlock()
	require.Len(t, tr.sent, 1)
	assert.Equal(t, wamp.Subscribe, tr.sent[0].Type)
}
