package chat

// Block is a directional relationship: UserBlocks doesn't want to be contacted by UserBlocked.
type Block struct {
	UserBlocks  string
	UserBlocked string
	Active      bool
}
