package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"swachhsetu/internal/events"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

// SystemClock returns the current UTC time.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// Page is a slice of results with the total number of matches.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// notFound maps a missing-row error to sentinel and passes others through.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// busEvent is a message waiting to go out on the event bus.
type busEvent struct {
	key     string
	payload interface{}
}

// busDispatcher publishes bus events from a single goroutine so request
// handlers never wait on the broker.
type busDispatcher struct {
	publisher events.Publisher
	queue     chan busEvent
	log       zerolog.Logger
	done      chan struct{}

	mu     sync.Mutex
	closed bool
}

func newBusDispatcher(publisher events.Publisher, log zerolog.Logger) *busDispatcher {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	d := &busDispatcher{
		publisher: publisher,
		queue:     make(chan busEvent, 256),
		log:       log,
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *busDispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := d.publisher.Publish(ctx, ev.key, ev.payload); err != nil {
			d.log.Warn().Err(err).Str("routing_key", ev.key).Msg("publish event")
		}
		cancel()
	}
}

func (d *busDispatcher) enqueue(key string, payload interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.log.Warn().Str("routing_key", key).Msg("event bus closed, dropping")
		return
	}
	select {
	case d.queue <- busEvent{key: key, payload: payload}:
	default:
		d.log.Warn().Str("routing_key", key).Msg("event queue full, dropping")
	}
}

// close drains queued events and stops the worker. Later enqueues are dropped.
func (d *busDispatcher) close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}
