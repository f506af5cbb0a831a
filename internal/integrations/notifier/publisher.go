package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// dialTimeout ограничивает установку соединения, в том числе при переподключении из Publish
const dialTimeout = 5 * time.Second

// amqpChannel часть *amqp.Channel, используемая при публикации
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type session struct {
	conn io.Closer
	ch   amqpChannel
}

func (s *session) close() error {
	err := s.ch.Close()
	if cerr := s.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

// Publisher публикует события бронирований в topic exchange RabbitMQ.
// Канал AMQP не потокобезопасен, поэтому публикация сериализуется мьютексом.
// После разрыва соединения или ошибки публикации следующий Publish подключается заново.
type Publisher struct {
	mu       sync.Mutex
	dial     func() (*session, error)
	sess     *session
	closed   bool
	exchange string
}

// NewPublisher подключается к брокеру и объявляет durable topic exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
	p := &Publisher{
		exchange: exchange,
		dial: func() (*session, error) {
			return dialSession(url, exchange)
		},
	}

	sess, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.sess = sess
	return p, nil
}

func dialSession(url, exchange string) (*session, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %v", ErrConnect, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %v", ErrConnect, err)
	}

	if err := ch.ExchangeDeclare(
		exchange, // name
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,   // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%w: declare exchange %s: %v", ErrConnect, exchange, err)
	}

	return &session{conn: conn, ch: ch}, nil
}

// Publish отправляет событие с routing key = event.Type
func (p *Publisher) Publish(ctx context.Context, event BookingEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return fmt.Errorf("%w: %s for booking %s: %w", ErrPublish, event.Type, event.BookingID, err)
	}

	if err := ch.PublishWithContext(ctx,
		p.exchange, // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		msg,
	); err != nil {
		p.reset()
		return fmt.Errorf("%w: %s for booking %s: %v", ErrPublish, event.Type, event.BookingID, err)
	}

	return nil
}

// channel возвращает открытый канал, переподключаясь при необходимости. Вызывается под p.mu.
func (p *Publisher) channel() (amqpChannel, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if p.sess != nil && !p.sess.ch.IsClosed() {
		return p.sess.ch, nil
	}

	p.reset()
	sess, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.sess = sess
	return sess.ch, nil
}

// reset закрывает текущую сессию. Вызывается под p.mu.
func (p *Publisher) reset() {
	if p.sess == nil {
		return
	}
	_ = p.sess.close()
	p.sess = nil
}

// Close закрывает канал и соединение, после чего Publish не переподключается
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.sess == nil {
		return nil
	}
	err := p.sess.close()
	p.sess = nil
	return err
}

func newPublishing(event BookingEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, err
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.BookingID.String() + ":" + event.Type,
		Timestamp:    event.OccurredAt.UTC(),
		Type:         event.Type,
		Body:         body,
	}, nil
}

// Nop используется, когда брокер отключён в конфигурации
type Nop struct{}

func (Nop) Publish(context.Context, BookingEvent) error { return nil }
