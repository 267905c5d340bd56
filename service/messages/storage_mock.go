package messages

import (
	"context"
	"fmt"
	"github.com/awakari/venue-chat/model/chat"
	"sort"
	"sync"
)

type storageMock struct {
	lock *sync.Mutex
	msgs map[string][]chat.Message
}

// NewStorageMock returns the in-memory storage. The "fail" chat id causes the internal failure.
func NewStorageMock() Storage {
	return storageMock{
		lock: &sync.Mutex{},
		msgs: map[string][]chat.Message{},
	}
}

func (sm storageMock) Close() error {
	return nil
}

func (sm storageMock) Create(ctx context.Context, m chat.Message) (err error) {
	sm.lock.Lock()
	defer sm.lock.Unlock()
	switch m.Chat {
	case "fail":
		err = ErrInternal
	default:
		for _, existing := range sm.msgs[m.Chat] {
			if existing.Id == m.Id {
				err = fmt.Errorf("%w: %s", ErrAlreadyExists, m.Id)
				return
			}
		}
		sm.msgs[m.Chat] = append(sm.msgs[m.Chat], m)
	}
	return
}

func (sm storageMock) Delete(ctx context.Context, chatId, id string) (err error) {
	sm.lock.Lock()
	defer sm.lock.Unlock()
	if chatId == "fail" {
		err = ErrInternal
		return
	}
	msgs := sm.msgs[chatId]
	for i, m := range msgs {
		if m.Id == id {
			sm.msgs[chatId] = append(msgs[:i:i], msgs[i+1:]...)
			break
		}
	}
	return
}

func (sm storageMock) CountByUser(ctx context.Context, chatId, userId string) (count int64, err error) {
	sm.lock.Lock()
	defer sm.lock.Unlock()
	if chatId == "fail" {
		err = ErrInternal
		return
	}
	for _, m := range sm.msgs[chatId] {
		if m.User == userId {
			count++
		}
	}
	return
}

func (sm storageMock) CountAll(ctx context.Context, chatId string) (count int64, err error) {
	sm.lock.Lock()
	defer sm.lock.Unlock()
	if chatId == "fail" {
		err = ErrInternal
		return
	}
	count = int64(len(sm.msgs[chatId]))
	return
}

func (sm storageMock) List(ctx context.Context, chatId string, q chat.MessageQuery) (page []chat.Message, err error) {
	sm.lock.Lock()
	defer sm.lock.Unlock()
	if chatId == "fail" {
		err = ErrInternal
		return
	}
	for _, m := range sm.msgs[chatId] {
		switch {
		case q.User != "" && m.User != q.User:
		case !q.Since.IsZero() && m.CreatedAt.Before(q.Since):
		case !q.Until.IsZero() && !m.CreatedAt.Before(q.Until):
		default:
			page = append(page, m)
		}
	}
	desc := q.Sort.Resolve(chat.SortAsc) == chat.SortDesc
	sort.SliceStable(page, func(i, j int) bool {
		if desc {
			return page[i].CreatedAt.After(page[j].CreatedAt)
		}
		return page[i].CreatedAt.Before(page[j].CreatedAt)
	})
	if limit := int(chat.Limit(q.Limit)); len(page) > limit {
		page = page[:limit]
	}
	return
}
