package lock

import (
	"context"
	"errors"
)

// Locker serializes the operations sharing the same key.
type Locker interface {

	// Lock blocks until the key is acquired or the context is done. The returned func releases the key.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

var ErrTimeout = errors.New("lock acquisition timeout")
var ErrInternal = errors.New("lock: internal failure")
