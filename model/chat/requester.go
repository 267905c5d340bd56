package chat

// Requester is the authenticated caller of a chat operation.
type Requester struct {
	Id    string
	Admin bool
}
