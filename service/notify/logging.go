package notify

import (
	"context"
	"fmt"
	"github.com/awakari/venue-chat/util"
	"log/slog"
)

type publisherLogging struct {
	pub Publisher
	log *slog.Logger
}

func NewPublisherLogging(pub Publisher, log *slog.Logger) Publisher {
	return publisherLogging{
		pub: pub,
		log: log,
	}
}

func (pl publisherLogging) Close() error {
	return pl.pub.Close()
}

func (pl publisherLogging) Publish(ctx context.Context, n Notification) (err error) {
	err = pl.pub.Publish(ctx, n)
	pl.log.Log(ctx, util.LogLevel(err), fmt.Sprintf("notify.Publish(%s, chat=%s, recipients=%v): err=%s", n.Kind, n.Chat, n.Recipients, err))
	return
}
