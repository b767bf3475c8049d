package notify

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func recv(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestMemory_FanOutByKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(4)

	a1, err := m.Subscribe(ctx, TableMessages, "u1")
	require.NoError(t, err)
	a2, err := m.Subscribe(ctx, TableMessages, "u1")
	require.NoError(t, err)
	b, err := m.Subscribe(ctx, TableMessages, "u2")
	require.NoError(t, err)
	defer b.Close()

	ev := Event{Table: TableMessages, Op: "insert", Key: "u1", ID: "m1"}
	require.NoError(t, m.Publish(ctx, ev))

	assert.Equal(t, ev, recv(t, a1))
	assert.Equal(t, ev, recv(t, a2))
	select {
	case got := <-b.C:
		t.Fatalf("unexpected event for other key: %+v", got)
	default:
	}

	a1.Close()
	a1.Close()
	_, ok := <-a1.C
	assert.False(t, ok)
	assert.Equal(t, 1, m.Subscribers(TableMessages, "u1"))

	a2.Close()
	assert.Equal(t, 0, m.Subscribers(TableMessages, "u1"))
}

func TestMemory_FullBufferDropsEvent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(1)
	sub, err := m.Subscribe(ctx, TableMessages, "u1")
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Publish(ctx, Event{Table: TableMessages, Key: "u1"}))
	}
	recv(t, sub)
	select {
	case <-sub.C:
		t.Fatal("expected buffered events beyond capacity to be dropped")
	default:
	}
}

func TestMemory_Close(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	sub, err := m.Subscribe(ctx, TableMessages, "u1")
	require.NoError(t, err)

	m.Close()
	_, ok := <-sub.C
	assert.False(t, ok)
	sub.Close()

	_, err = m.Subscribe(ctx, TableMessages, "u1")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemory(1).Subscribe(ctx, TableMessages, "u1")
	assert.ErrorIs(t, err, context.Canceled)
}

type doneToken struct {
	err  error
	done chan struct{}
}

func newToken(err error) *doneToken {
	t := &doneToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{}          { return t.done }
func (t *doneToken) Error() error                   { return t.err }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

// fakeBroker routes published payloads straight to subscribed handlers.
type fakeBroker struct {
	mu           sync.Mutex
	handlers     map[string]mqtt.MessageHandler
	subscribes   int
	unsubscribes []string
	disconnected bool
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{handlers: make(map[string]mqtt.MessageHandler)}
}

func (b *fakeBroker) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	b.mu.Lock()
	h := b.handlers[topic]
	b.mu.Unlock()
	if h != nil {
		h(nil, fakeMessage{topic: topic, payload: payload.([]byte)})
	}
	return newToken(nil)
}

func (b *fakeBroker) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribes++
	b.handlers[topic] = cb
	return newToken(nil)
}

func (b *fakeBroker) Unsubscribe(topics ...string) mqtt.Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, topic := range topics {
		delete(b.handlers, topic)
		b.unsubscribes = append(b.unsubscribes, topic)
	}
	return newToken(nil)
}

func (b *fakeBroker) Disconnect(uint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = true
}

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestMQTT_PublishSubscribe(t *testing.T) {
	ctx := context.Background()
	broker := newFakeBroker()
	m := newMQTT(broker, "inventory/", testLogger())

	s1, err := m.Subscribe(ctx, TableMessages, "u1")
	require.NoError(t, err)
	s2, err := m.Subscribe(ctx, TableMessages, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, broker.subscribes)

	ev := Event{Table: TableMessages, Op: "insert", Key: "u1", ID: "m9"}
	require.NoError(t, m.Publish(ctx, ev))
	assert.Equal(t, ev, recv(t, s1))
	assert.Equal(t, ev, recv(t, s2))

	s1.Close()
	assert.Empty(t, broker.unsubscribes)
	s2.Close()
	assert.Equal(t, []string{"inventory/messages/u1"}, broker.unsubscribes)

	m.Close()
	assert.True(t, broker.disconnected)
}

func TestMQTT_TopicOverridesPayload(t *testing.T) {
	ctx := context.Background()
	broker := newFakeBroker()
	m := newMQTT(broker, "inventory", testLogger())
	defer m.Close()

	sub, err := m.Subscribe(ctx, TableMessages, "u1")
	require.NoError(t, err)
	defer sub.Close()

	payload, _ := json.Marshal(Event{Op: "update"})
	m.handle(nil, fakeMessage{topic: "inventory/messages/u1", payload: payload})
	got := recv(t, sub)
	assert.Equal(t, "u1", got.Key)
	assert.Equal(t, TableMessages, got.Table)

	m.handle(nil, fakeMessage{topic: "inventory/messages/u1", payload: []byte("{")})
	select {
	case ev := <-sub.C:
		t.Fatalf("malformed payload delivered: %+v", ev)
	default:
	}
}
