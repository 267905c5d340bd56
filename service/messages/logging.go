package messages

import (
	"context"
	"fmt"
	"github.com/awakari/venue-chat/model/chat"
	"github.com/awakari/venue-chat/util"
	"log/slog"
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

func (sl storageLogging) Create(ctx context.Context, m chat.Message) (err error) {
	err = sl.stor.Create(ctx, m)
	sl.log.Log(ctx, util.LogLevel(err, ErrAlreadyExists), fmt.Sprintf("messages.Create(id=%s, chat=%s, user=%s): err=%s", m.Id, m.Chat, m.User, err))
	return
}

func (sl storageLogging) Delete(ctx context.Context, chatId, id string) (err error) {
	err = sl.stor.Delete(ctx, chatId, id)
	sl.log.Log(ctx, util.LogLevel(err), fmt.Sprintf("messages.Delete(%s, %s): err=%s", chatId, id, err))
	return
}

func (sl storageLogging) CountByUser(ctx context.Context, chatId, userId string) (count int64, err error) {
	count, err = sl.stor.CountByUser(ctx, chatId, userId)
	sl.log.Log(ctx, sl.logLevelRead(err), fmt.Sprintf("messages.CountByUser(%s, %s): %d, err=%s", chatId, userId, count, err))
	return
}

func (sl storageLogging) CountAll(ctx context.Context, chatId string) (count int64, err error) {
	count, err = sl.stor.CountAll(ctx, chatId)
	sl.log.Log(ctx, sl.logLevelRead(err), fmt.Sprintf("messages.CountAll(%s): %d, err=%s", chatId, count, err))
	return
}

func (sl storageLogging) List(ctx context.Context, chatId string, q chat.MessageQuery) (page []chat.Message, err error) {
	page, err = sl.stor.List(ctx, chatId, q)
	sl.log.Log(ctx, sl.logLevelRead(err), fmt.Sprintf("messages.List(%s, %+v): %d, err=%s", chatId, q, len(page), err))
	return
}

func (sl storageLogging) logLevelRead(err error) (lvl slog.Level) {
	switch err {
	case nil:
		lvl = slog.LevelDebug
	default:
		lvl = slog.LevelError
	}
	return
}
