package blocks

import (
	"context"
	"fmt"
	"github.com/awakari/venue-chat/util"
	"log/slog"
)

type logging struct {
	r   Registry
	log *slog.Logger
}

func NewLogging(r Registry, log *slog.Logger) Registry {
	return logging{
		r:   r,
		log: log,
	}
}

func (l logging) Close() error {
	return l.r.Close()
}

func (l logging) IsBlocked(ctx context.Context, blocker, blocked string) (ok bool, err error) {
	ok, err = l.r.IsBlocked(ctx, blocker, blocked)
	l.log.Log(ctx, util.LogLevel(err), fmt.Sprintf("blocks.IsBlocked(%s, %s): %t, err=%s", blocker, blocked, ok, err))
	return
}
