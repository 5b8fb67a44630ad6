package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the interface implemented by types that can deliver a message
// to a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, body interface{}) error
	Close()
}

// QueueProducer publishes messages to durable RabbitMQ queues. The channel
// name in Publish maps directly to the queue name; consumers bind to the
// same name (e.g. "emailQueue").
type QueueProducer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	// If any stray characters precede the scheme, slice from first occurrence of amqp
	idx := strings.Index(strings.ToLower(clean), "amqp")
	if idx > 0 {
		clean = clean[idx:]
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewQueueProducer creates and returns a new QueueProducer.
// It establishes a connection and channel to RabbitMQ.
func NewQueueProducer(amqpURL string) (*QueueProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	// Use a bounded dial timeout so startup does not hang indefinitely
	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &QueueProducer{conn: conn, channel: ch}, nil
}

// Publish sends a persistent JSON message to the named queue via the default
// exchange, declaring the queue first so delivery never races consumer
// startup.
func (p *QueueProducer) Publish(ctx context.Context, channel string, body interface{}) error {
	if err := p.declareQueue(channel); err != nil {
		log.Printf("Failed to declare queue '%s': %v. Attempting channel reopen...", channel, err)
		// Attempt simple channel reopen once
		if p.conn == nil {
			return err
		}
		ch, chErr := p.conn.Channel()
		if chErr != nil {
			return chErr
		}
		p.channel = ch
		if err := p.declareQueue(channel); err != nil {
			return err
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		log.Printf("Error marshalling JSON body: %v", err)
		return err
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         jsonBody,
	}

	err = p.channel.PublishWithContext(ctx,
		"",      // default exchange routes by queue name
		channel, // routing key
		false,   // mandatory
		false,   // immediate
		publishing,
	)
	if err != nil {
		log.Printf("Failed to publish a message to queue '%s': %v", channel, err)
		// One-shot retry: reopen channel and try again
		if p.conn != nil {
			if ch, chErr := p.conn.Channel(); chErr == nil {
				p.channel = ch
				if declErr := p.declareQueue(channel); declErr == nil {
					err = p.channel.PublishWithContext(ctx, "", channel, false, false, publishing)
					if err == nil {
						log.Printf("Successfully published message to queue '%s' after retry", channel)
						return nil
					}
				}
			}
		}
		return err
	}

	return nil
}

func (p *QueueProducer) declareQueue(name string) error {
	_, err := p.channel.QueueDeclare(
		name,  // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	return err
}

// Close closes the RabbitMQ connection and channel.
func (p *QueueProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
