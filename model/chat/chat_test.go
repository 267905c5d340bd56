package chat

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestChat_Creator(t *testing.T) {
	cases := map[string]struct {
		members []Member
		creator string
		ok      bool
	}{
		"first": {
			members: []Member{
				{User: "user0", Creator: true},
				{User: "user1"},
			},
			creator: "user0",
			ok:      true,
		},
		"second": {
			members: []Member{
				{User: "user0"},
				{User: "user1", Creator: true},
			},
			creator: "user1",
			ok:      true,
		},
		"missing": {
			members: []Member{
				{User: "user0"},
			},
		},
	}
	for k, c := range cases {
		t.Run(k, func(t *testing.T) {
			ch := Chat{Members: c.members}
			m, ok := ch.Creator()
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.creator, m.User)
			if c.ok {
				assert.True(t, ch.IsCreator(c.creator))
			}
		})
	}
}

func TestChat_SetLastMessageSeen(t *testing.T) {
	ch := Chat{
		Members: []Member{
			{User: "user0", Creator: true},
			{User: "user1"},
		},
	}
	assert.True(t, ch.SetLastMessageSeen("user1", "msg0"))
	assert.Equal(t, "msg0", ch.Members[1].LastMessageSeen)
	assert.Equal(t, "", ch.Members[0].LastMessageSeen)
	assert.False(t, ch.SetLastMessageSeen("user2", "msg1"))
}

func TestStatus(t *testing.T) {
	for _, s := range []Status{StatusCreated, StatusAccepted, StatusRejected, StatusExhausted, StatusExpired} {
		assert.Equal(t, s, ParseStatus(s.String()))
	}
	assert.Equal(t, StatusUndefined, ParseStatus("unknown"))
	assert.Equal(t, "undefined", Status(42).String())
	assert.False(t, StatusCreated.Closed())
	assert.False(t, StatusAccepted.Closed())
	assert.True(t, StatusRejected.Closed())
	assert.True(t, StatusExhausted.Closed())
	assert.True(t, StatusExpired.Closed())
}

func TestLimit(t *testing.T) {
	assert.Equal(t, LimitDefault, Limit(0))
	assert.Equal(t, uint32(10), Limit(10))
	assert.Equal(t, LimitMax, Limit(LimitMax+1))
	assert.Equal(t, SortDesc, ParseSort("x").Resolve(SortDesc))
	assert.Equal(t, SortAsc, ParseSort("asc").Resolve(SortDesc))
}
