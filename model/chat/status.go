package chat

type Status int

const (
	StatusUndefined Status = iota
	StatusCreated
	StatusAccepted
	StatusRejected
	StatusExhausted
	StatusExpired
)

var statusNames = [...]string{
	"undefined",
	"created",
	"accepted",
	"rejected",
	"exhausted",
	"expired",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return statusNames[StatusUndefined]
	}
	return statusNames[s]
}

// Closed reports whether no more messages may be posted to a chat in this status.
func (s Status) Closed() bool {
	switch s {
	case StatusRejected, StatusExhausted, StatusExpired:
		return true
	}
	return false
}

func ParseStatus(src string) (s Status) {
	for i, name := range statusNames {
		if name == src {
			s = Status(i)
			break
		}
	}
	return
}
