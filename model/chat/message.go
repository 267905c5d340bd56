package chat

import "time"

type Message struct {
	Id        string
	Chat      string
	User      string
	Message   string
	CreatedAt time.Time
}
