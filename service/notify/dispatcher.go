package notify

import (
	"context"
	"fmt"
	"github.com/cenkalti/backoff/v4"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher delivers the notifications in background. Delivery failures are logged and never returned.
type Dispatcher interface {
	io.Closer
	Notify(ctx context.Context, n Notification)
}

type BackoffConfig struct {
	Init       time.Duration
	MaxElapsed time.Duration
}

type dispatcher struct {
	pub        Publisher
	queue      chan Notification
	cfgBackoff BackoffConfig
	log        *slog.Logger
	lock       *sync.RWMutex
	closed     *bool
	wg         *sync.WaitGroup
}

func NewDispatcher(pub Publisher, queueLen uint32, cfgBackoff BackoffConfig, log *slog.Logger) Dispatcher {
	d := dispatcher{
		pub:        pub,
		queue:      make(chan Notification, queueLen),
		cfgBackoff: cfgBackoff,
		log:        log,
		lock:       &sync.RWMutex{},
		closed:     new(bool),
		wg:         &sync.WaitGroup{},
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d dispatcher) Notify(ctx context.Context, n Notification) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	if *d.closed {
		d.log.Warn(fmt.Sprintf("notify.Notify(%s, chat=%s): dispatcher is closed, dropping", n.Kind, n.Chat))
		return
	}
	select {
	case d.queue <- n:
	default:
		d.log.Warn(fmt.Sprintf("notify.Notify(%s, chat=%s): queue is full, dropping", n.Kind, n.Chat))
	}
}

// Close stops accepting new notifications, waits until the queued ones are delivered and closes the publisher.
func (d dispatcher) Close() error {
	d.lock.Lock()
	if !*d.closed {
		*d.closed = true
		close(d.queue)
	}
	d.lock.Unlock()
	d.wg.Wait()
	return d.pub.Close()
}

func (d dispatcher) run() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d dispatcher) deliver(n Notification) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.cfgBackoff.Init
	b.MaxElapsedTime = d.cfgBackoff.MaxElapsed
	err := backoff.RetryNotify(
		func() error {
			return d.pub.Publish(context.Background(), n)
		},
		b,
		func(err error, dur time.Duration) {
			d.log.Warn(fmt.Sprintf("Failed to publish %s notification for chat %s, cause: %s, retrying in %s...", n.Kind, n.Chat, err, dur))
		},
	)
	if err != nil {
		d.log.Error(fmt.Sprintf("Failed to publish %s notification for chat %s, giving up: %s", n.Kind, n.Chat, err))
	}
}
