package chats

import (
	"context"
	"github.com/awakari/venue-chat/model/chat"
	"io"
	"time"
)

type Storage interface {
	io.Closer

	Create(ctx context.Context, c chat.Chat) (err error)

	Read(ctx context.Context, id string) (c chat.Chat, err error)

	// FindMostRecent returns the latest created chat having all the specified members.
	// Empty venue matches any venue. Returns ErrNotFound when there's no such chat.
	FindMostRecent(ctx context.Context, userIds []string, venue string) (c chat.Chat, err error)

	// Update replaces the chat members and status if the stored version equals to c.Version.
	// The stored version is incremented. Returns ErrConflict when the version doesn't match.
	Update(ctx context.Context, c chat.Chat) (err error)

	List(ctx context.Context, q chat.Query) (page []chat.Chat, err error)

	// ExpireExhausted moves the chats exhausted before the specified time to the expired status.
	ExpireExhausted(ctx context.Context, before, now time.Time) (count int64, err error)
}
