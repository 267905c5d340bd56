package notify

import (
	"context"
	"sync"
)

// DispatcherMock records the notifications instead of delivering them.
type DispatcherMock struct {
	lock *sync.Mutex
	ns   []Notification
}

func NewDispatcherMock() *DispatcherMock {
	return &DispatcherMock{
		lock: &sync.Mutex{},
	}
}

func (dm *DispatcherMock) Close() error {
	return nil
}

func (dm *DispatcherMock) Notify(ctx context.Context, n Notification) {
	dm.lock.Lock()
	defer dm.lock.Unlock()
	dm.ns = append(dm.ns, n)
}

func (dm *DispatcherMock) Notifications() (ns []Notification) {
	dm.lock.Lock()
	defer dm.lock.Unlock()
	ns = append(ns, dm.ns...)
	return
}
