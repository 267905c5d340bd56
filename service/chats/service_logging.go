package chats

import (
	"context"
	"fmt"
	"github.com/awakari/venue-chat/model/chat"
	"github.com/awakari/venue-chat/util"
	"log/slog"
)

type serviceLogging struct {
	svc Service
	log *slog.Logger
}

func NewServiceLogging(svc Service, log *slog.Logger) Service {
	return serviceLogging{
		svc: svc,
		log: log,
	}
}

func (sl serviceLogging) Create(ctx context.Context, req chat.Requester, members []chat.Member, venue, text string) (c chat.Chat, err error) {
	c, err = sl.svc.Create(ctx, req, members, venue, text)
	sl.log.Log(ctx, util.LogLevel(err, businessErrors...), fmt.Sprintf("chats.Create(%+v, %+v, %s, %d): id=%s, status=%s, err=%s", req, members, venue, len(text), c.Id, c.Status, err))
	metricRequests.WithLabelValues("create", Kind(err)).Inc()
	return
}

func (sl serviceLogging) Read(ctx context.Context, req chat.Requester, id string) (c chat.Chat, err error) {
	c, err = sl.svc.Read(ctx, req, id)
	sl.log.Log(ctx, util.LogLevel(err, businessErrors...), fmt.Sprintf("chats.Read(%+v, %s): status=%s, err=%s", req, id, c.Status, err))
	metricRequests.WithLabelValues("read", Kind(err)).Inc()
	return
}

func (sl serviceLogging) List(ctx context.Context, req chat.Requester, q chat.Query) (page []chat.Chat, err error) {
	page, err = sl.svc.List(ctx, req, q)
	sl.log.Log(ctx, util.LogLevel(err, businessErrors...), fmt.Sprintf("chats.List(%+v, %+v): %d, err=%s", req, q, len(page), err))
	metricRequests.WithLabelValues("list", Kind(err)).Inc()
	return
}

func (sl serviceLogging) PostMessage(ctx context.Context, req chat.Requester, chatId, text string) (m chat.Message, err error) {
	m, err = sl.svc.PostMessage(ctx, req, chatId, text)
	sl.log.Log(ctx, util.LogLevel(err, businessErrors...), fmt.Sprintf("chats.PostMessage(%+v, %s, %d): id=%s, err=%s", req, chatId, len(text), m.Id, err))
	metricRequests.WithLabelValues("postMessage", Kind(err)).Inc()
	return
}

func (sl serviceLogging) ListMessages(ctx context.Context, req chat.Requester, chatId string, q chat.MessageQuery) (page []chat.Message, err error) {
	page, err = sl.svc.ListMessages(ctx, req, chatId, q)
	sl.log.Log(ctx, util.LogLevel(err, businessErrors...), fmt.Sprintf("chats.ListMessages(%+v, %s, %+v): %d, err=%s", req, chatId, q, len(page), err))
	metricRequests.WithLabelValues("listMessages", Kind(err)).Inc()
	return
}

func (sl serviceLogging) Reject(ctx context.Context, req chat.Requester, chatId string) (c chat.Chat, err error) {
	c, err = sl.svc.Reject(ctx, req, chatId)
	sl.log.Log(ctx, util.LogLevel(err, businessErrors...), fmt.Sprintf("chats.Reject(%+v, %s): status=%s, err=%s", req, chatId, c.Status, err))
	metricRequests.WithLabelValues("reject", Kind(err)).Inc()
	return
}
