package chats

import (
	"context"
	"fmt"
	"github.com/awakari/venue-chat/model/chat"
	"github.com/samber/lo"
	"sort"
	"sync"
	"time"
)

type storageMock struct {
	lock  *sync.Mutex
	chats map[string]chat.Chat
}

// NewStorageMock returns the in-memory storage. The "fail" chat id and venue cause the internal failure.
func NewStorageMock(chats ...chat.Chat) Storage {
	sm := storageMock{
		lock:  &sync.Mutex{},
		chats: map[string]chat.Chat{},
	}
	for _, c := range chats {
		sm.chats[c.Id] = copyChat(c)
	}
	return sm
}

func (sm storageMock) Close() error {
	return nil
}

func (sm storageMock) Create(ctx context.Context, c chat.Chat) (err error) {
	sm.lock.Lock()
	defer sm.lock.Unlock()
	switch {
	case c.Id == "fail", c.Venue == "fail":
		err = ErrInternal
	default:
		if _, found := sm.chats[c.Id]; found {
			err = fmt.Errorf("%w: %s", ErrAlreadyExists, c.Id)
		} else {
			sm.chats[c.Id] = copyChat(c)
		}
	}
	return
}

func (sm storageMock) Read(ctx context.Context, id string) (c chat.Chat, err error) {
	sm.lock.Lock()
	defer sm.lock.Unlock()
	if id == "fail" {
		err = ErrInternal
		return
	}
	var found bool
	c, found = sm.chats[id]
	if found {
		c = copyChat(c)
	} else {
		err = ErrNotFound
	}
	return
}

func (sm storageMock) FindMostRecent(ctx context.Context, userIds []string, venue string) (c chat.Chat, err error) {
	sm.lock.Lock()
	defer sm.lock.Unlock()
	if venue == "fail" {
		err = ErrInternal
		return
	}
	err = ErrNotFound
	for _, candidate := range sm.chats {
		switch {
		case venue != "" && candidate.Venue != venue:
		case !lo.Every(candidate.UserIds(), userIds):
		case err == nil && !candidate.CreatedAt.After(c.CreatedAt):
		default:
			c = copyChat(candidate)
			err = nil
		}
	}
	return
}

func (sm storageMock) Update(ctx context.Context, c chat.Chat) (err error) {
	sm.lock.Lock()
	defer sm.lock.Unlock()
	if c.Id == "fail" {
		err = ErrInternal
		return
	}
	stored, found := sm.chats[c.Id]
	switch {
	case !found:
		err = ErrNotFound
	case stored.Version != c.Version:
		err = fmt.Errorf("%w: id=%s, version=%d", ErrConflict, c.Id, c.Version)
	default:
		stored.Members = copyChat(c).Members
		stored.Status = c.Status
		stored.UpdatedAt = c.UpdatedAt
		stored.Version++
		sm.chats[c.Id] = stored
	}
	return
}

func (sm storageMock) List(ctx context.Context, q chat.Query) (page []chat.Chat, err error) {
	sm.lock.Lock()
	defer sm.lock.Unlock()
	asc := q.Sort.Resolve(chat.SortDesc) == chat.SortAsc
	for _, c := range sm.chats {
		switch {
		case !c.IsMember(q.Member):
		case q.Venue != "" && c.Venue != q.Venue:
		case q.Status != chat.StatusUndefined && c.Status != q.Status:
		case !q.Cursor.IsZero() && asc && !c.CreatedAt.After(q.Cursor):
		case !q.Cursor.IsZero() && !asc && !c.CreatedAt.Before(q.Cursor):
		default:
			page = append(page, copyChat(c))
		}
	}
	sort.Slice(page, func(i, j int) bool {
		if asc {
			return page[i].CreatedAt.Before(page[j].CreatedAt)
		}
		return page[i].CreatedAt.After(page[j].CreatedAt)
	})
	if limit := int(chat.Limit(q.Limit)); len(page) > limit {
		page = page[:limit]
	}
	return
}

func (sm storageMock) ExpireExhausted(ctx context.Context, before, now time.Time) (count int64, err error) {
	sm.lock.Lock()
	defer sm.lock.Unlock()
	for id, c := range sm.chats {
		if c.Status == chat.StatusExhausted && c.UpdatedAt.Before(before) {
			c.Status = chat.StatusExpired
			c.UpdatedAt = now
			c.Version++
			sm.chats[id] = c
			count++
		}
	}
	return
}

func copyChat(src chat.Chat) (dst chat.Chat) {
	dst = src
	dst.Members = append([]chat.Member{}, src.Members...)
	return
}
