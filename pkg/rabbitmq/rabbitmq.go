package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// Message is the command envelope exchanged between services: a named
// pattern plus its JSON payload. This is the wire shape every service in the
// mesh speaks.
type Message struct {
	Pattern string          `json:"pattern"`
	Data    json.RawMessage `json:"data"`
}

// ErrorPayload is the error half of a reply envelope. Status carries the
// HTTP-style classification (400, 404) the mesh uses for RPC failures.
type ErrorPayload struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error implements the error interface so a remote failure can be returned
// directly from Request.
func (e *ErrorPayload) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Status, e.Message)
}

// Reply is the response envelope: exactly one of Data or Error is set.
type Reply struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *ErrorPayload   `json:"error,omitempty"`
}

// Handler processes one inbound command and returns either a reply payload
// or an error envelope.
type Handler func(pattern string, data json.RawMessage) (any, *ErrorPayload)

// NewClient creates a new RabbitMQ client.
// It connects to RabbitMQ and sets up a channel.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	log.Println("RabbitMQ client connected.")

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
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
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Request sends a command to the given queue and waits for the correlated
// reply, request/reply style: an exclusive auto-delete callback queue
// receives the answer, matched by correlation id. The wait is bounded by the
// caller's context; expiry or a dropped connection surfaces as an error.
//
// A fresh channel is opened per request so concurrent callers never share
// consumer state.
func (c *Client) Request(ctx context.Context, queue, pattern string, payload any, out any) error {
	if c.conn == nil {
		return fmt.Errorf("RabbitMQ connection is not available")
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel for request: %w", err)
	}
	defer ch.Close()

	// Server-named, exclusive, auto-delete callback queue for the reply.
	replyQueue, err := ch.QueueDeclare(
		"",    // name: let the broker generate one
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare reply queue: %w", err)
	}

	deliveries, err := ch.Consume(
		replyQueue.Name, // queue
		"",              // consumer tag
		true,            // auto-ack: replies are fire-and-forget
		true,            // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // args
	)
	if err != nil {
		return fmt.Errorf("failed to consume reply queue: %w", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request payload: %w", err)
	}
	body, err := json.Marshal(Message{Pattern: pattern, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal request envelope: %w", err)
	}

	correlationID := uuid.New().String()
	err = ch.Publish(
		"",    // exchange: default exchange
		queue, // routing key: the peer's command queue
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			Body:          body,
			CorrelationId: correlationID,
			ReplyTo:       replyQueue.Name,
			DeliveryMode:  amqp.Persistent,
			Timestamp:     time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish request: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("request %q timed out: %w", pattern, ctx.Err())
		case msg, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("reply channel closed before response for %q", pattern)
			}
			if msg.CorrelationId != correlationID {
				continue // stale reply from an earlier request
			}

			var reply Reply
			if err := json.Unmarshal(msg.Body, &reply); err != nil {
				return fmt.Errorf("failed to unmarshal reply: %w", err)
			}
			if reply.Error != nil {
				return reply.Error
			}
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(reply.Data, out); err != nil {
				return fmt.Errorf("failed to unmarshal reply data: %w", err)
			}
			return nil
		}
	}
}

// Serve consumes commands from the given queue and dispatches each one to
// the handler, publishing a correlated reply when the sender asked for one.
// Malformed envelopes are dropped (nack without requeue); handler failures
// are delivered back as error envelopes and the message is acked.
func (c *Client) Serve(queue string, handler Handler) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	q, err := c.channel.QueueDeclare(
		queue, // name
		true,  // durable (persists messages across broker restarts)
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	msgs, err := c.channel.Consume(
		q.Name, // queue
		"",     // consumer tag
		false,  // auto-ack: set to false to manually acknowledge messages
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf(" [*] Waiting for commands on queue %s", queue)

	go func() {
		for msg := range msgs {
			c.dispatch(msg, handler)
		}
	}()

	return nil
}

// dispatch handles a single delivery: decode, invoke, reply, ack.
func (c *Client) dispatch(msg amqp.Delivery, handler Handler) {
	var envelope Message
	if err := json.Unmarshal(msg.Body, &envelope); err != nil {
		log.Printf("Dropping malformed message %d: %v", msg.DeliveryTag, err)
		if nackErr := msg.Nack(false, false); nackErr != nil {
			log.Printf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
		}
		return
	}

	result, handlerErr := handler(envelope.Pattern, envelope.Data)

	if msg.ReplyTo != "" {
		reply := Reply{Error: handlerErr}
		if handlerErr == nil {
			data, err := json.Marshal(result)
			if err != nil {
				log.Printf("Failed to marshal reply for %q: %v", envelope.Pattern, err)
				reply = Reply{Error: &ErrorPayload{Status: 400, Message: "failed to encode response"}}
			} else {
				reply.Data = data
			}
		}
		c.publishReply(msg, envelope.Pattern, reply)
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
	}
}

func (c *Client) publishReply(msg amqp.Delivery, pattern string, reply Reply) {
	body, err := json.Marshal(reply)
	if err != nil {
		log.Printf("Failed to marshal reply envelope for %q: %v", pattern, err)
		return
	}
	err = c.channel.Publish(
		"",          // exchange: default exchange
		msg.ReplyTo, // routing key: the caller's callback queue
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			Body:          body,
			CorrelationId: msg.CorrelationId,
			Timestamp:     time.Now(),
		})
	if err != nil {
		log.Printf("Failed to publish reply for %q: %v", pattern, err)
	}
}
