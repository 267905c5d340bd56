package chats

import (
	"errors"
	"fmt"
	"github.com/awakari/venue-chat/api/http/auth"
	"github.com/awakari/venue-chat/model/chat"
	svcChats "github.com/awakari/venue-chat/service/chats"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"net/http"
)

type Handler interface {
	Create(ctx *gin.Context)
	List(ctx *gin.Context)
	Read(ctx *gin.Context)
	PostMessage(ctx *gin.Context)
	ListMessages(ctx *gin.Context)
	Reject(ctx *gin.Context)
}

type handler struct {
	svc svcChats.Service
}

const paramId = "id"

func NewHandler(svc svcChats.Service) Handler {
	return handler{
		svc: svc,
	}
}

// Register binds the handler to the router group.
func Register(g *gin.RouterGroup, h Handler) {
	g.
		POST("/chats", h.Create).
		GET("/chats", h.List).
		GET("/chats/:id", h.Read).
		POST("/chats/:id/messages", h.PostMessage).
		GET("/chats/:id/messages", h.ListMessages).
		POST("/chats/:id/reject", h.Reject)
}

func (h handler) Create(ctx *gin.Context) {
	req, ok := requester(ctx)
	if !ok {
		return
	}
	var payload createRequest
	err := ctx.ShouldBindJSON(&payload)
	if err != nil {
		respondError(ctx, fmt.Errorf("%w: %s", svcChats.ErrInvalid, err))
		return
	}
	var c chat.Chat
	c, err = h.svc.Create(ctx, req, decodeMembers(payload.Members), payload.Venue, payload.Message)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, encodeChat(c))
}

func (h handler) List(ctx *gin.Context) {
	req, ok := requester(ctx)
	if !ok {
		return
	}
	var payload listChatsRequest
	err := ctx.ShouldBindQuery(&payload)
	if err != nil {
		respondError(ctx, fmt.Errorf("%w: %s", svcChats.ErrInvalid, err))
		return
	}
	q := chat.Query{
		Venue:  payload.Venue,
		Status: chat.ParseStatus(payload.Status),
		Sort:   chat.ParseSort(payload.Sort),
		Cursor: payload.Cursor,
		Limit:  payload.Limit,
	}
	var page []chat.Chat
	page, err = h.svc.List(ctx, req, q)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, lo.Map(page, func(c chat.Chat, _ int) chatPayload { return encodeChat(c) }))
}

func (h handler) Read(ctx *gin.Context) {
	req, ok := requester(ctx)
	if !ok {
		return
	}
	c, err := h.svc.Read(ctx, req, ctx.Param(paramId))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, encodeChat(c))
}

func (h handler) PostMessage(ctx *gin.Context) {
	req, ok := requester(ctx)
	if !ok {
		return
	}
	var payload postMessageRequest
	err := ctx.ShouldBindJSON(&payload)
	if err != nil {
		respondError(ctx, fmt.Errorf("%w: %s", svcChats.ErrInvalid, err))
		return
	}
	var m chat.Message
	m, err = h.svc.PostMessage(ctx, req, ctx.Param(paramId), payload.Message)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, encodeMessage(m))
}

func (h handler) ListMessages(ctx *gin.Context) {
	req, ok := requester(ctx)
	if !ok {
		return
	}
	var payload listMessagesRequest
	err := ctx.ShouldBindQuery(&payload)
	if err != nil {
		respondError(ctx, fmt.Errorf("%w: %s", svcChats.ErrInvalid, err))
		return
	}
	q := chat.MessageQuery{
		User:  payload.User,
		Since: payload.Since,
		Until: payload.Until,
		Sort:  chat.ParseSort(payload.Sort),
		Limit: payload.Limit,
	}
	var page []chat.Message
	page, err = h.svc.ListMessages(ctx, req, ctx.Param(paramId), q)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, lo.Map(page, func(m chat.Message, _ int) messagePayload { return encodeMessage(m) }))
}

func (h handler) Reject(ctx *gin.Context) {
	req, ok := requester(ctx)
	if !ok {
		return
	}
	c, err := h.svc.Reject(ctx, req, ctx.Param(paramId))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, encodeChat(c))
}

func requester(ctx *gin.Context) (req chat.Requester, ok bool) {
	req, ok = auth.GetRequester(ctx)
	if !ok {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorPayload{
			Kind:    "Unauthenticated",
			Message: auth.ErrUnauthenticated.Error(),
		})
	}
	return
}

func respondError(ctx *gin.Context, err error) {
	p := errorPayload{
		Kind:    svcChats.Kind(err),
		Message: err.Error(),
	}
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		p.Message = svcChats.ErrInternal.Error()
	}
	ctx.AbortWithStatusJSON(code, p)
}

func statusCode(err error) (code int) {
	switch {
	case errors.Is(err, svcChats.ErrForbidden), errors.Is(err, svcChats.ErrBlocked):
		code = http.StatusForbidden
	case errors.Is(err, svcChats.ErrCooldown),
		errors.Is(err, svcChats.ErrNotYetAccepted),
		errors.Is(err, svcChats.ErrExhausted),
		errors.Is(err, svcChats.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, svcChats.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, svcChats.ErrInvalid):
		code = http.StatusBadRequest
	default:
		code = http.StatusInternalServerError
	}
	return
}
