package bus

import (
	"encoding/json"
	"errors"

	"github.com/nats-io/nats.go"
)

// Subjects published by the patrol log store. External consumers and the
// SSE endpoint subscribe to SubjectLogAll.
const (
	SubjectLogCreated  = "sentrylog.logs.created"
	SubjectLogResolved = "sentrylog.logs.resolved"
	SubjectLogAll      = "sentrylog.logs.>"
)

// Bus publishes patrol events over NATS. A nil *Bus is a valid no-op
// publisher so eventing stays optional.
type Bus struct {
	conn *nats.Conn
}

// Connect dials the NATS endpoint.
func Connect(url string, opts ...nats.Option) (*Bus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &Bus{conn: nc}, nil
}

// Close drains and shuts down the underlying connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// Publish encodes v as JSON and publishes it to the given subject.
func (b *Bus) Publish(subject string, v any) error {
	if b == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.conn.Publish(subject, data)
}

// Subscribe delivers raw messages for subject on a buffered channel.
// The returned cancel func unsubscribes and must be called by the consumer.
func (b *Bus) Subscribe(subject string) (<-chan *nats.Msg, func(), error) {
	if b == nil {
		return nil, nil, errors.New("bus not configured")
	}
	ch := make(chan *nats.Msg, 64)
	sub, err := b.conn.ChanSubscribe(subject, ch)
	if err != nil {
		return nil, nil, err
	}
	cancel := func() {
		_ = sub.Unsubscribe()
	}
	return ch, cancel, nil
}
