package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/lomoval/personal-calendar/internal/app"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

var ErrNotConnected = errors.New("rabbit provider is not connected")

type Config struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Queue    string
}

// Message is the body published for every change of an event.
type Message struct {
	Action    string `json:"action"`
	ID        int64  `json:"id"`
	Title     string `json:"title,omitempty"`
	StartDate string `json:"start_date,omitempty"`
}

func NewMessage(change app.Change) Message {
	return Message{
		Action:    change.Action,
		ID:        change.Event.ID,
		Title:     change.Event.Title,
		StartDate: change.Event.StartDate,
	}
}

func DecodeMessage(body []byte) (Message, error) {
	m := Message{}
	if err := json.Unmarshal(body, &m); err != nil {
		return Message{}, fmt.Errorf("failed to parse message: %w", err)
	}
	if m.Action == "" || m.ID == 0 {
		return Message{}, fmt.Errorf("failed to parse message: action and id are required")
	}
	return m, nil
}

type Provider struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	queue      amqp.Queue
	channel    *amqp.Channel
	connString string
	queueName  string
}

func New(config Config) *Provider {
	return &Provider{
		connString: fmt.Sprintf(
			"amqp://%s:%s@%s:%d/",
			config.User,
			config.Password,
			config.Host,
			config.Port,
		),
		queueName: config.Queue,
	}
}

func (r *Provider) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	r.conn, err = amqp.Dial(r.connString)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbit: %w", err)
	}

	r.channel, err = r.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open rabbit channel: %w", err)
	}
	r.queue, err = r.channel.QueueDeclare(
		r.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %q: %w", r.queueName, err)
	}
	return nil
}

func (r *Provider) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn, r.channel = nil, nil
	return err
}

func (r *Provider) Publish(body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel == nil {
		return ErrNotConnected
	}
	return r.channel.Publish(
		"",           // exchange
		r.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
}

// Notify publishes change. It satisfies app.Notifier.
func (r *Provider) Notify(_ context.Context, change app.Change) error {
	body, err := json.Marshal(NewMessage(change))
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	return r.Publish(body)
}

type MessageProcess = func(msg Message)

// Consume delivers decoded messages to process until ctx is done or the
// channel is closed. Malformed messages are logged and dropped.
func (r *Provider) Consume(ctx context.Context, process MessageProcess) error {
	r.mu.Lock()
	channel := r.channel
	r.mu.Unlock()
	if channel == nil {
		return ErrNotConnected
	}

	msgs, err := channel.Consume(
		r.queue.Name, // queue
		"",           // consumer
		true,         // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to consume %q: %w", r.queue.Name, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			m, err := DecodeMessage(d.Body)
			if err != nil {
				log.Errorf("%v", err)
				continue
			}
			process(m)
		}
	}
}
