package chats

import (
	"context"
	"fmt"
	"github.com/awakari/venue-chat/model/chat"
	"log/slog"
	"time"
)

// Sweeper expires the chats which stay exhausted longer than the expiry window.
type Sweeper interface {
	SweepOnce(ctx context.Context, now time.Time) (count int64, err error)

	// Run sweeps every interval until the context is done.
	Run(ctx context.Context)
}

type sweeper struct {
	stor     Storage
	window   time.Duration
	interval time.Duration
	log      *slog.Logger
}

func NewSweeper(stor Storage, window, interval time.Duration, log *slog.Logger) Sweeper {
	return sweeper{
		stor:     stor,
		window:   window,
		interval: interval,
		log:      log,
	}
}

func (s sweeper) SweepOnce(ctx context.Context, now time.Time) (count int64, err error) {
	count, err = s.stor.ExpireExhausted(ctx, now.Add(-s.window), now)
	if count > 0 {
		metricTransitions.WithLabelValues(chat.StatusExpired.String()).Add(float64(count))
	}
	return
}

func (s sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info(fmt.Sprintf("Chat expiry sweeper stopped: %s", ctx.Err()))
			return
		case now := <-t.C:
			count, err := s.SweepOnce(ctx, now.UTC())
			switch {
			case err != nil:
				s.log.Error(fmt.Sprintf("Chat expiry sweep failure: %s", err))
			case count > 0:
				s.log.Info(fmt.Sprintf("Expired %d exhausted chats", count))
			}
		}
	}
}
