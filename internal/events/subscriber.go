package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// Handler processes one message body. Returning a PermanentError drops the
// message; any other error requeues it.
type Handler func(ctx context.Context, body []byte) error

// PermanentError marks a message that must not be redelivered.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err as non-retriable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

const maxBackoff = 30 * time.Second

// Subscriber consumes one durable queue bound to a set of routing keys.
type Subscriber struct {
	url      string
	exchange string
	queue    string
	handlers map[string]Handler
	log      zerolog.Logger
}

// NewSubscriber creates a subscriber. Nothing is dialled until Run.
func NewSubscriber(url, exchange, queue string, handlers map[string]Handler, log zerolog.Logger) *Subscriber {
	return &Subscriber{
		url:      url,
		exchange: exchange,
		queue:    queue,
		handlers: handlers,
		log:      log.With().Str("component", "amqp-subscriber").Str("queue", queue).Logger(),
	}
}

// Run consumes until ctx is cancelled, reconnecting with exponential backoff.
func (s *Subscriber) Run(ctx context.Context) {
	backoff := time.Second
	for {
		err := s.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		s.log.Warn().Err(err).Dur("backoff", backoff).Msg("consumer stopped, reconnecting")
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

func (s *Subscriber) consume(ctx context.Context) error {
	conn, err := amqp.Dial(s.url)
	if err != nil {
		return fmt.Errorf("connect to rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := declareExchange(ch, s.exchange); err != nil {
		return err
	}
	q, err := ch.QueueDeclare(s.queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	for key := range s.handlers {
		if err := ch.QueueBind(q.Name, key, s.exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	if err := ch.Qos(16, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	s.log.Info().Msg("consuming")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cerr := <-closed:
			return fmt.Errorf("connection closed: %v", cerr)
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			s.ack(d, s.dispatch(ctx, d.RoutingKey, d.Body))
		}
	}
}

func (s *Subscriber) ack(d amqp.Delivery, err error) {
	var ackErr error
	switch {
	case err == nil:
		ackErr = d.Ack(false)
	default:
		var perm *PermanentError
		requeue := !errors.As(err, &perm) && !d.Redelivered
		s.log.Error().Err(err).Str("routing_key", d.RoutingKey).Bool("requeue", requeue).Msg("handle message")
		ackErr = d.Nack(false, requeue)
	}
	if ackErr != nil {
		s.log.Error().Err(ackErr).Msg("ack message")
	}
}

// dispatch runs the handler for routingKey, converting panics to permanent errors.
func (s *Subscriber) dispatch(ctx context.Context, routingKey string, body []byte) (err error) {
	h, ok := s.handlers[routingKey]
	if !ok {
		return Permanent(fmt.Errorf("no handler for %q", routingKey))
	}
	defer func() {
		if r := recover(); r != nil {
			err = Permanent(fmt.Errorf("handler panic: %v", r))
		}
	}()
	return h(ctx, body)
}

// DecodeJSON decodes body into v, marking malformed payloads permanent.
func DecodeJSON(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return Permanent(fmt.Errorf("decode message: %w", err))
	}
	return nil
}
