package chat

import "time"

type Sort int

const (
	SortDefault Sort = iota
	SortAsc
	SortDesc
)

func ParseSort(src string) (s Sort) {
	switch src {
	case "asc":
		s = SortAsc
	case "desc":
		s = SortDesc
	}
	return
}

// Resolve returns the sort to apply when the caller has not requested one.
func (s Sort) Resolve(def Sort) Sort {
	if s == SortDefault {
		return def
	}
	return s
}

const LimitDefault uint32 = 100
const LimitMax uint32 = 1_000

func Limit(l uint32) uint32 {
	switch {
	case l == 0:
		return LimitDefault
	case l > LimitMax:
		return LimitMax
	}
	return l
}

// Query selects the chats. Member is always set by the service to the requester id.
type Query struct {
	Member string
	Venue  string
	Status Status

	// Sort by the creation time, descending when undefined.
	Sort Sort
	// Cursor is the creation time of the last chat in the previous page.
	Cursor time.Time
	Limit  uint32
}

// MessageQuery selects the messages of a single chat.
type MessageQuery struct {
	User  string
	Since time.Time
	Until time.Time

	// Sort by the creation time, ascending when undefined.
	Sort  Sort
	Limit uint32
}
