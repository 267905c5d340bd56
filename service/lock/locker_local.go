package lock

import (
	"context"
	"fmt"
	"sync"
)

type local struct {
	lock *sync.Mutex
	held map[string]chan struct{}
}

// NewLocal returns the in-process locker, suitable for a single service replica only.
func NewLocal() Locker {
	return local{
		lock: &sync.Mutex{},
		held: map[string]chan struct{}{},
	}
}

func (l local) Lock(ctx context.Context, key string) (unlock func(), err error) {
	for {
		l.lock.Lock()
		released, busy := l.held[key]
		if !busy {
			released = make(chan struct{})
			l.held[key] = released
			l.lock.Unlock()
			unlock = l.unlockFunc(key, released)
			return
		}
		l.lock.Unlock()
		select {
		case <-released:
		case <-ctx.Done():
			err = fmt.Errorf("%w: %s, %s", ErrTimeout, key, ctx.Err())
			return
		}
	}
}

func (l local) unlockFunc(key string, released chan struct{}) func() {
	once := &sync.Once{}
	return func() {
		once.Do(func() {
			l.lock.Lock()
			defer l.lock.Unlock()
			delete(l.held, key)
			close(released)
		})
	}
}
