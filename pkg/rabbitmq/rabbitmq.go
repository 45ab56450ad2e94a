// Package rabbitmq publishes and consumes checkout events.
package rabbitmq

import (
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// DefaultQueue receives one message per completed checkout.
const DefaultQueue = "checkout_queue"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CheckoutEvent describes a completed purchase.
type CheckoutEvent struct {
	TransactionID uint                `json:"transactionId"`
	UserID        uint                `json:"userId"`
	TotalPrice    string              `json:"totalPrice"`
	Direct        bool                `json:"direct"`
	Items         []CheckoutEventItem `json:"items"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// CheckoutEventItem is one purchased line.
type CheckoutEventItem struct {
	ProductID uint   `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// Publisher is what the store needs from a broker.
type Publisher interface {
	PublishCheckout(event CheckoutEvent) error
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
	// amqp channels are not safe for concurrent publishing
	mu sync.Mutex
}

// NewClient connects and declares the durable checkout queue.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := declare(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	logger.Info("rabbitmq connected", zap.String("queue", cfg.Queue))
	return &Client{conn: conn, channel: ch, queue: cfg.Queue, logger: logger}, nil
}

func declare(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return q, fmt.Errorf("failed to declare %s: %w", queue, err)
	}
	return q, nil
}

// Close closes the channel and then the connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("rabbitmq close: %v", errs)
	}
	return nil
}

// PublishCheckout sends a persistent JSON message to the checkout queue.
func (c *Client) PublishCheckout(event CheckoutEvent) error {
	body, err := Encode(event)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	err = c.channel.Publish(
		"",      // default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish checkout %d: %w", event.TransactionID, err)
	}
	c.logger.Debug("checkout event sent", zap.Uint("transaction_id", event.TransactionID))
	return nil
}

// ConsumeCheckouts delivers decoded events to handler in a goroutine. Events
// that fail to decode are dropped; handler errors requeue the message.
func (c *Client) ConsumeCheckouts(handler func(CheckoutEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}
	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			event, err := Decode(msg.Body)
			if err != nil {
				c.logger.Warn("dropping undecodable checkout event", zap.Uint64("tag", msg.DeliveryTag), zap.Error(err))
				if err := msg.Nack(false, false); err != nil {
					c.logger.Error("nack failed", zap.Error(err))
				}
				continue
			}
			if err := handler(event); err != nil {
				c.logger.Error("checkout handler failed", zap.Uint("transaction_id", event.TransactionID), zap.Error(err))
				if err := msg.Nack(false, true); err != nil {
					c.logger.Error("nack failed", zap.Error(err))
				}
				continue
			}
			if err := msg.Ack(false); err != nil {
				c.logger.Error("ack failed", zap.Error(err))
			}
		}
	}()
	return nil
}

// Encode marshals an event to its wire form.
func Encode(event CheckoutEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout event: %w", err)
	}
	return body, nil
}

// Decode parses a wire event.
func Decode(body []byte) (CheckoutEvent, error) {
	var event CheckoutEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal checkout event: %w", err)
	}
	return event, nil
}
