package blocks

import (
	"context"
	"github.com/awakari/venue-chat/model/chat"
)

type registryMock struct {
	blocks []chat.Block
}

// NewRegistryMock returns the registry answering from the given blocks.
// The "fail" blocker id causes the internal failure.
func NewRegistryMock(blocks ...chat.Block) Registry {
	return registryMock{
		blocks: blocks,
	}
}

func (rm registryMock) Close() error {
	return nil
}

func (rm registryMock) IsBlocked(ctx context.Context, blocker, blocked string) (ok bool, err error) {
	if blocker == "fail" {
		err = ErrInternal
		return
	}
	for _, b := range rm.blocks {
		if b.Active && b.UserBlocks == blocker && b.UserBlocked == blocked {
			ok = true
			break
		}
	}
	return
}
