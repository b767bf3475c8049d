package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ConnectTimeout bounds the initial broker connection.
const ConnectTimeout = 10 * time.Second

// mqttClient is the subset of mqtt.Client used here.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTT carries events over a broker on topics <prefix>/<table>/<key>. Broker
// subscriptions are shared by every local subscriber of the same topic.
type MQTT struct {
	client mqttClient
	prefix string
	qos    byte
	local  *Memory
	log    logrus.FieldLogger

	mu   sync.Mutex
	refs map[string]int
}

// DialMQTT connects to brokerURL with a unique client id.
func DialMQTT(brokerURL, prefix string, log logrus.FieldLogger) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID("inventory-" + uuid.NewString()).
		SetAutoReconnect(true).
		SetConnectTimeout(ConnectTimeout)
	client := mqtt.NewClient(opts)

	tok := client.Connect()
	if !tok.WaitTimeout(ConnectTimeout) {
		return nil, fmt.Errorf("connect to %s: timed out", brokerURL)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", brokerURL, err)
	}
	return newMQTT(client, prefix, log), nil
}

func newMQTT(client mqttClient, prefix string, log logrus.FieldLogger) *MQTT {
	return &MQTT{
		client: client,
		prefix: strings.TrimSuffix(prefix, "/"),
		qos:    1,
		local:  NewMemory(DefaultBuffer),
		log:    log,
		refs:   make(map[string]int),
	}
}

func (m *MQTT) topic(table, key string) string {
	return m.prefix + "/" + table + "/" + key
}

// Publish sends ev to the broker and waits for acknowledgement.
func (m *MQTT) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return wait(ctx, m.client.Publish(m.topic(ev.Table, ev.Key), m.qos, false, payload))
}

// Subscribe opens a stream for table/key, subscribing on the broker when it
// is the first local subscriber of that topic.
func (m *MQTT) Subscribe(ctx context.Context, table, key string) (*Subscription, error) {
	topic := m.topic(table, key)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refs[topic] == 0 {
		if err := wait(ctx, m.client.Subscribe(topic, m.qos, m.handle)); err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	inner, err := m.local.Subscribe(ctx, table, key)
	if err != nil {
		if m.refs[topic] == 0 {
			m.client.Unsubscribe(topic)
		}
		return nil, err
	}
	m.refs[topic]++

	return &Subscription{C: inner.C, release: func() {
		inner.Close()
		m.unref(topic)
	}}, nil
}

func (m *MQTT) unref(topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[topic]--
	if m.refs[topic] > 0 {
		return
	}
	delete(m.refs, topic)
	m.client.Unsubscribe(topic)
}

func (m *MQTT) handle(_ mqtt.Client, msg mqtt.Message) {
	var ev Event
	if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
		m.log.WithError(err).WithField("topic", msg.Topic()).Warn("Dropping malformed notification")
		return
	}
	parts := strings.Split(strings.TrimPrefix(msg.Topic(), m.prefix+"/"), "/")
	if len(parts) == 2 {
		ev.Table, ev.Key = parts[0], parts[1]
	}
	_ = m.local.Publish(context.Background(), ev)
}

// Close releases local subscriptions and disconnects from the broker.
func (m *MQTT) Close() {
	m.local.Close()
	m.client.Disconnect(250)
}

func wait(ctx context.Context, tok mqtt.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
