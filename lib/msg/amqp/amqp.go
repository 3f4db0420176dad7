// Package amqp implements the message broker interface for AMQP compliant brokers (ie RabbitMQ)
package amqp

import (
	"encoding/json"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/tarancss/supply/lib/msg"
	"github.com/tarancss/supply/lib/store"
)

// channel is the subset of *amqp.Channel used by the publisher.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Amqp implements a connection to a broker and a channel for reuse. The channel is guarded by a mutex since
// concurrent recomputations may publish at the same time.
type Amqp struct {
	conn *amqp.Connection
	mu   sync.Mutex
	ch   channel
}

// New instantiates a new amqp broker.
func New(uri string) (*Amqp, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to amqp broker: %w", err)
	}

	log.Printf("Connected to amqp broker")

	return &Amqp{conn: conn}, nil
}

// Setup obtains an amqp channel and declares the topic exchange "supply" where snapshots are published.
func (r *Amqp) Setup() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.channel(); err != nil {
		return err
	}

	return r.ch.ExchangeDeclare(msg.Exchange, "topic", true, false, false, false, nil)
}

// channel obtains a channel if not present. Must be called with the mutex locked.
func (r *Amqp) channel() error {
	if r.ch != nil {
		return nil
	}

	if r.conn == nil {
		return amqp.ErrClosed
	}

	ch, err := r.conn.Channel()
	if err != nil {
		return err
	}

	r.ch = ch

	return nil
}

// Close terminates gracefully the connection to the AMQP message broker
func (r *Amqp) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ch != nil {
		if err := r.ch.Close(); err != nil {
			log.Printf("Error closing amqp.Channel:%v", err)
		}

		r.ch = nil

		log.Printf("amqp.Channel closed!")
	}

	if r.conn == nil {
		return nil
	}

	return r.conn.Close()
}

// SendSnapshot publishes the snapshot to the "supply" exchange with routing key <symbol>.snapshot.
func (r *Amqp) SendSnapshot(s store.Snapshot) error {
	jsonDoc, err := json.Marshal(s)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err = r.channel(); err != nil {
		return err
	}

	m := amqp.Publishing{
		Headers:     amqp.Table{"x-snapshot-id": s.ID},
		Body:        jsonDoc,
		ContentType: "application/json",
	}

	if err = r.ch.Publish(msg.Exchange, msg.RoutingKey(s.Symbol), false, false, m); err != nil {
		// drop the channel, a new one is obtained on next publish
		r.ch = nil

		return fmt.Errorf("[%s] error sending snapshot to message broker: %w", s.Symbol, err)
	}

	return nil
}

var _ msg.Publisher = (*Amqp)(nil)
