package chat

import (
	"time"
)

type Member struct {

	// User is the member's user id.
	User string `validate:"required"`

	// Creator is set for the member who requested the chat.
	Creator bool

	// LastMessageSeen is the id of the last message the member has posted or seen, empty if none.
	LastMessageSeen string
}

type Chat struct {
	Id      string
	Venue   string
	Members []Member
	Status  Status

	CreatedAt time.Time
	UpdatedAt time.Time

	// Version is incremented by the storage on every update and used for the conditional writes.
	Version int64
}

func (c Chat) Creator() (m Member, ok bool) {
	for _, m = range c.Members {
		if m.Creator {
			ok = true
			return
		}
	}
	return Member{}, false
}

func (c Chat) IsCreator(userId string) bool {
	m, ok := c.Creator()
	return ok && m.User == userId
}

func (c Chat) IsMember(userId string) bool {
	for _, m := range c.Members {
		if m.User == userId {
			return true
		}
	}
	return false
}

func (c Chat) UserIds() (ids []string) {
	for _, m := range c.Members {
		ids = append(ids, m.User)
	}
	return
}

// SetLastMessageSeen updates the member's last seen message id, returns false when the user is not a member.
func (c *Chat) SetLastMessageSeen(userId, msgId string) (ok bool) {
	for i := range c.Members {
		if c.Members[i].User == userId {
			c.Members[i].LastMessageSeen = msgId
			ok = true
			break
		}
	}
	return
}
