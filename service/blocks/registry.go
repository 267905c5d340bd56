package blocks

import (
	"context"
	"errors"
	"io"
)

type Registry interface {
	io.Closer

	// IsBlocked returns true when there's an active block created by the blocker against the blocked user.
	IsBlocked(ctx context.Context, blocker, blocked string) (ok bool, err error)
}

var ErrInternal = errors.New("blocks: internal failure")
