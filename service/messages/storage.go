package messages

import (
	"context"
	"errors"
	"github.com/awakari/venue-chat/model/chat"
	"io"
)

type Storage interface {
	io.Closer
	Create(ctx context.Context, m chat.Message) (err error)

	// Delete removes the message of the chat. Deleting a missing message is not an error.
	Delete(ctx context.Context, chatId, id string) (err error)

	CountByUser(ctx context.Context, chatId, userId string) (count int64, err error)
	CountAll(ctx context.Context, chatId string) (count int64, err error)
	List(ctx context.Context, chatId string, q chat.MessageQuery) (page []chat.Message, err error)
}

var ErrAlreadyExists = errors.New("message already exists")
var ErrInternal = errors.New("messages: internal failure")
