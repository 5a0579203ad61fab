package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// bufferCapacity bounds how many messages are held while the broker is away.
const bufferCapacity = 64

// BufferedPublisher publishes to an MQTT broker. While the connection is
// down, messages are queued in a fixed-capacity ring buffer and replayed in
// order on reconnect; the oldest are dropped on overflow.
type BufferedPublisher struct {
	client paho.Client

	mu     sync.Mutex
	buffer *ringBuffer
}

// NewBufferedPublisher creates a publisher connected to the given broker.
// The broker keeps a retained OFFLINE last-will on the system topic so
// subscribers can tell a crashed daemon from a quiet one.
func NewBufferedPublisher(broker string) (*BufferedPublisher, error) {
	p := &BufferedPublisher{buffer: newRingBuffer(bufferCapacity)}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "OFFLINE",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("microwaved").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	client := paho.NewClient(opts)
	p.client = client

	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends an appliance event to the MQTT broker.
func (p *BufferedPublisher) Publish(event Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.publish(Topic, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *BufferedPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for system events - we want to ensure delivery
	return p.publish(TopicSystem, 1, event.Retained, payload)
}

func (p *BufferedPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.buffer.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		n := p.buffer.len()
		p.mu.Unlock()
		log.Debugf("mqtt: broker away, buffered message (%d queued)", n)
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// onConnect replays any messages buffered while the broker was away.
func (p *BufferedPublisher) onConnect(client paho.Client) {
	p.mu.Lock()
	queued := p.buffer.drainAll()
	p.mu.Unlock()

	if len(queued) == 0 {
		return
	}

	log.Infof("mqtt: reconnected, replaying %d buffered messages", len(queued))
	for _, msg := range queued {
		token := client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		if !token.WaitTimeout(5 * time.Second) {
			log.Warnf("mqtt: replay timeout on %s", msg.topic)
			continue
		}
		if err := token.Error(); err != nil {
			log.Warnf("mqtt: replay failed on %s: %v", msg.topic, err)
		}
	}
}

func (p *BufferedPublisher) onConnectionLost(_ paho.Client, err error) {
	log.Warnf("mqtt: connection lost: %v", err)
}

// IsConnected reports whether the broker connection is up.
func (p *BufferedPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *BufferedPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
