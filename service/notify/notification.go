package notify

type Kind int

const (
	KindUndefined Kind = iota
	KindChatCreated
	KindMessageCreated
	KindChatRejected
)

var kindNames = [...]string{
	"undefined",
	"chatCreated",
	"messageCreated",
	"chatRejected",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUndefined]
	}
	return kindNames[k]
}

type Notification struct {
	Kind       Kind
	Chat       string
	Venue      string
	Sender     string
	Recipients []string

	// Message is the id of the message which caused the notification, if any.
	Message string
	Text    string
}
