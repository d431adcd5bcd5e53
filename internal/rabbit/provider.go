package rabbit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

var ErrNotConnected = errors.New("rabbit is not connected")

type Config struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Queue    string
	// Durable queues and persistent messages survive a broker restart.
	Durable bool
}

type Provider struct {
	mu        sync.Mutex
	conn      *amqp.Connection
	channel   *amqp.Channel
	queue     amqp.Queue
	url       string
	queueName string
	durable   bool
}

func New(config Config) *Provider {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(config.User, config.Password),
		Host:   net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		Path:   "/",
	}
	return &Provider{url: u.String(), queueName: config.Queue, durable: config.Durable}
}

func (r *Provider) Connect() error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return fmt.Errorf("failed to dial rabbit: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	queue, err := channel.QueueDeclare(r.queueName, r.durable, !r.durable, false, false, nil)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to declare queue %s: %w", r.queueName, err)
	}

	r.mu.Lock()
	r.conn, r.channel, r.queue = conn, channel, queue
	r.mu.Unlock()
	log.WithField("queue", queue.Name).Info("connected to rabbit")
	return nil
}

func (r *Provider) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return
	}
	if err := r.conn.Close(); err != nil {
		log.Warnf("failed to close rabbit connection: %v", err)
	}
	r.conn, r.channel = nil, nil
}

func (r *Provider) Publish(body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.channel == nil {
		return ErrNotConnected
	}

	mode := amqp.Transient
	if r.durable {
		mode = amqp.Persistent
	}
	err := r.channel.Publish("", r.queue.Name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: mode,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", r.queue.Name, err)
	}
	return nil
}

// MessageProcess handles one delivery. A returned error rejects the delivery
// without requeueing it.
type MessageProcess = func(msg amqp.Delivery) error

// Consume blocks until ctx is done or the delivery channel closes.
func (r *Provider) Consume(ctx context.Context, process MessageProcess) error {
	r.mu.Lock()
	channel, queue := r.channel, r.queue
	r.mu.Unlock()
	if channel == nil {
		return ErrNotConnected
	}

	msgs, err := channel.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", queue.Name, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			settle(m, process(m))
		}
	}
}

func settle(m amqp.Delivery, processErr error) {
	var err error
	if processErr != nil {
		log.Errorf("reject message %d: %v", m.DeliveryTag, processErr)
		err = m.Nack(false, false)
	} else {
		err = m.Ack(false)
	}
	if err != nil {
		log.Errorf("failed to settle message %d: %v", m.DeliveryTag, err)
	}
}
