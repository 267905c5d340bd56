package chats

import (
	"context"
	"fmt"
	"github.com/awakari/venue-chat/model/chat"
	"github.com/awakari/venue-chat/util"
	"log/slog"
	"time"
)

type storageLogging struct {
	stor Storage
	log  *slog.Logger
}

func NewStorageLogging(stor Storage, log *slog.Logger) Storage {
	return storageLogging{
		stor: stor,
		log:  log,
	}
}

func (sl storageLogging) Close() error {
	return sl.stor.Close()
}

func (sl storageLogging) Create(ctx context.Context, c chat.Chat) (err error) {
	err = sl.stor.Create(ctx, c)
	sl.log.Log(ctx, util.LogLevel(err, ErrAlreadyExists), fmt.Sprintf("chats.Storage.Create(id=%s, venue=%s, members=%v): err=%s", c.Id, c.Venue, c.UserIds(), err))
	return
}

func (sl storageLogging) Read(ctx context.Context, id string) (c chat.Chat, err error) {
	c, err = sl.stor.Read(ctx, id)
	sl.log.Log(ctx, util.LogLevel(err, ErrNotFound), fmt.Sprintf("chats.Storage.Read(%s): status=%s, version=%d, err=%s", id, c.Status, c.Version, err))
	return
}

func (sl storageLogging) FindMostRecent(ctx context.Context, userIds []string, venue string) (c chat.Chat, err error) {
	c, err = sl.stor.FindMostRecent(ctx, userIds, venue)
	sl.log.Log(ctx, util.LogLevel(err, ErrNotFound), fmt.Sprintf("chats.Storage.FindMostRecent(%v, %s): id=%s, err=%s", userIds, venue, c.Id, err))
	return
}

func (sl storageLogging) Update(ctx context.Context, c chat.Chat) (err error) {
	err = sl.stor.Update(ctx, c)
	sl.log.Log(ctx, util.LogLevel(err, ErrConflict, ErrNotFound), fmt.Sprintf("chats.Storage.Update(id=%s, status=%s, version=%d): err=%s", c.Id, c.Status, c.Version, err))
	return
}

func (sl storageLogging) List(ctx context.Context, q chat.Query) (page []chat.Chat, err error) {
	page, err = sl.stor.List(ctx, q)
	sl.log.Log(ctx, util.LogLevel(err), fmt.Sprintf("chats.Storage.List(%+v): %d, err=%s", q, len(page), err))
	return
}

func (sl storageLogging) ExpireExhausted(ctx context.Context, before, now time.Time) (count int64, err error) {
	count, err = sl.stor.ExpireExhausted(ctx, before, now)
	sl.log.Log(ctx, util.LogLevel(err), fmt.Sprintf("chats.Storage.ExpireExhausted(%s): %d, err=%s", before, count, err))
	return
}
