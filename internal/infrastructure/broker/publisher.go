// Package broker публикует события сделок в RabbitMQ.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	reconnectDelay       = 5 * time.Second
	maxReconnectAttempts = 10
)

var ErrNotConnected = errors.New("broker: нет соединения с RabbitMQ")

// Publisher отправляет JSON-сообщения в topic exchange. Ключ маршрутизации
// совпадает с именем события.
type Publisher struct {
	url      string
	exchange string
	log      *logrus.Entry

	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewPublisher(url, exchange string, log *logrus.Logger) (*Publisher, error) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Publisher{
		url:      url,
		exchange: exchange,
		log:      log.WithField("component", "broker"),
		ctx:      ctx,
		cancel:   cancel,
	}

	if err := p.connect(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		p.exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.mu.Lock()
	p.conn = conn
	p.channel = ch
	p.mu.Unlock()

	p.log.WithField("exchange", p.exchange).Info("connected to RabbitMQ")

	go p.monitorConnection(conn)
	return nil
}

func (p *Publisher) monitorConnection(conn *amqp.Connection) {
	notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))

	select {
	case err := <-notifyClose:
		if err != nil {
			p.log.WithError(err).Error("RabbitMQ connection closed unexpectedly")
			p.reconnect()
		}
	case <-p.ctx.Done():
	}
}

func (p *Publisher) reconnect() {
	p.mu.Lock()
	p.channel = nil
	p.conn = nil
	p.mu.Unlock()

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		if err := p.connect(); err == nil {
			p.log.WithField("attempt", attempt).Info("successfully reconnected to RabbitMQ")
			return
		}

		delay := reconnectDelay * time.Duration(attempt)
		p.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"delay":   delay,
		}).Warn("reconnection failed, retrying")

		select {
		case <-time.After(delay):
		case <-p.ctx.Done():
			return
		}
	}

	p.log.Error("max reconnection attempts reached, giving up")
}

// Publish сериализует payload в JSON и публикует его с ключом routingKey.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("broker: не удалось сериализовать сообщение: %w", err)
	}

	p.mu.RLock()
	ch := p.channel
	p.mu.RUnlock()
	if ch == nil {
		return ErrNotConnected
	}

	return ch.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Type:         routingKey,
			Body:         body,
		},
	)
}

func (p *Publisher) Close() error {
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
		p.channel = nil
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
		p.conn = nil
	}
	return errors.Join(errs...)
}
