package messages

import (
	"context"
	"github.com/awakari/venue-chat/model/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestStorageMock_List(t *testing.T) {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewStorageLogging(NewStorageMock(), log)
	ctx := context.TODO()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, u := range []string{"user0", "user1", "user0"} {
		require.Nil(t, s.Create(ctx, chat.Message{
			Id:        string(rune('a' + i)),
			Chat:      "chat0",
			User:      u,
			CreatedAt: t0.Add(time.Duration(i) * time.Minute),
		}))
	}
	assert.ErrorIs(t, s.Create(ctx, chat.Message{Id: "a", Chat: "chat0"}), ErrAlreadyExists)
	//
	cases := map[string]struct {
		q   chat.MessageQuery
		ids []string
	}{
		"default asc": {
			ids: []string{"a", "b", "c"},
		},
		"desc": {
			q: chat.MessageQuery{
				Sort: chat.SortDesc,
			},
			ids: []string{"c", "b", "a"},
		},
		"by user": {
			q: chat.MessageQuery{
				User: "user0",
			},
			ids: []string{"a", "c"},
		},
		"time range": {
			q: chat.MessageQuery{
				Since: t0.Add(time.Minute),
				Until: t0.Add(2 * time.Minute),
			},
			ids: []string{"b"},
		},
		"limit": {
			q: chat.MessageQuery{
				Limit: 2,
			},
			ids: []string{"a", "b"},
		},
	}
	for k, c := range cases {
		t.Run(k, func(t *testing.T) {
			page, err := s.List(ctx, "chat0", c.q)
			assert.Nil(t, err)
			var ids []string
			for _, m := range page {
				ids = append(ids, m.Id)
			}
			assert.Equal(t, c.ids, ids)
		})
	}
	//
	count, err := s.CountByUser(ctx, "chat0", "user0")
	assert.Nil(t, err)
	assert.Equal(t, int64(2), count)
	count, err = s.CountAll(ctx, "chat0")
	assert.Nil(t, err)
	assert.Equal(t, int64(3), count)
	_, err = s.CountAll(ctx, "fail")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestStorageMock_Delete(t *testing.T) {
	s := NewStorageMock()
	ctx := context.TODO()
	for _, id := range []string{"a", "b", "c"} {
		require.Nil(t, s.Create(ctx, chat.Message{
			Id:   id,
			Chat: "chat0",
			User: "user0",
		}))
	}
	cases := map[string]struct {
		chatId string
		id     string
		count  int64
		err    error
	}{
		"ok": {
			chatId: "chat0",
			id:     "b",
			count:  2,
		},
		"missing": {
			chatId: "chat0",
			id:     "z",
			count:  2,
		},
		"other chat": {
			chatId: "chat1",
			id:     "a",
			count:  2,
		},
		"fail": {
			chatId: "fail",
			id:     "a",
			count:  2,
			err:    ErrInternal,
		},
	}
	for _, k := range []string{"ok", "missing", "other chat", "fail"} {
		c := cases[k]
		t.Run(k, func(t *testing.T) {
			assert.ErrorIs(t, s.Delete(ctx, c.chatId, c.id), c.err)
			count, err := s.CountAll(ctx, "chat0")
			require.Nil(t, err)
			assert.Equal(t, c.count, count)
		})
	}
	page, err := s.List(ctx, "chat0", chat.MessageQuery{})
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "c"}, []string{page[0].Id, page[1].Id})
}
