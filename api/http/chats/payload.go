package chats

import (
	"github.com/awakari/venue-chat/model/chat"
	"time"
)

type memberPayload struct {
	User            string `json:"user" binding:"required"`
	Creator         bool   `json:"creator"`
	LastMessageSeen string `json:"lastMessageSeen,omitempty"`
}

type createRequest struct {
	Venue   string          `json:"venue" binding:"required"`
	Members []memberPayload `json:"members" binding:"required,min=1,dive"`
	Message string          `json:"message"`
}

type chatPayload struct {
	Id        string          `json:"id"`
	Venue     string          `json:"venue"`
	Members   []memberPayload `json:"members"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Version   int64           `json:"version"`
}

type listChatsRequest struct {
	Venue  string    `form:"venue"`
	Status string    `form:"status" binding:"omitempty,oneof=created accepted rejected exhausted expired"`
	Sort   string    `form:"sort" binding:"omitempty,oneof=asc desc"`
	Limit  uint32    `form:"limit" binding:"omitempty,max=1000"`
	Cursor time.Time `form:"cursor"`
}

type postMessageRequest struct {
	Message string `json:"message"`
}

type messagePayload struct {
	Id        string    `json:"id"`
	Chat      string    `json:"chat"`
	User      string    `json:"user"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type listMessagesRequest struct {
	User  string    `form:"user"`
	Since time.Time `form:"since"`
	Until time.Time `form:"until"`
	Sort  string    `form:"sort" binding:"omitempty,oneof=asc desc"`
	Limit uint32    `form:"limit" binding:"omitempty,max=1000"`
}

type errorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func decodeMembers(src []memberPayload) (dst []chat.Member) {
	for _, m := range src {
		dst = append(dst, chat.Member{
			User:    m.User,
			Creator: m.Creator,
		})
	}
	return
}

func encodeChat(src chat.Chat) (dst chatPayload) {
	dst = chatPayload{
		Id:        src.Id,
		Venue:     src.Venue,
		Members:   []memberPayload{},
		Status:    src.Status.String(),
		CreatedAt: src.CreatedAt,
		UpdatedAt: src.UpdatedAt,
		Version:   src.Version,
	}
	for _, m := range src.Members {
		dst.Members = append(dst.Members, memberPayload{
			User:            m.User,
			Creator:         m.Creator,
			LastMessageSeen: m.LastMessageSeen,
		})
	}
	return
}

func encodeMessage(src chat.Message) messagePayload {
	return messagePayload{
		Id:        src.Id,
		Chat:      src.Chat,
		User:      src.User,
		Message:   src.Message,
		CreatedAt: src.CreatedAt,
	}
}
