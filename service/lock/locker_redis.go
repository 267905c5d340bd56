package lock

import (
	"context"
	"errors"
	"fmt"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"log/slog"
	"sync"
	"time"
)

type lockRedis struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

const keyPrefix = "lock:"
const backOffInit = 5 * time.Millisecond
const backOffMax = 200 * time.Millisecond

var errBusy = errors.New("key is busy")

// scriptUnlock deletes the key only if it's still held by the same owner token.
var scriptUnlock = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// scriptExtend prolongs the key expiration only while it's still held by the same owner token.
var scriptExtend = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`)

// NewRedis returns the locker shared by all service replicas. The lease is renewed every ttl/3 while the lock is held,
// so the key expires after ttl only if the owner dies.
func NewRedis(client *redis.Client, ttl time.Duration, log *slog.Logger) Locker {
	return lockRedis{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (lr lockRedis) Lock(ctx context.Context, key string) (unlock func(), err error) {
	k := keyPrefix + key
	token := uuid.NewString()
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = backOffInit
	b.MaxInterval = backOffMax
	b.MaxElapsedTime = lr.ttl
	err = backoff.Retry(
		func() (err error) {
			var ok bool
			ok, err = lr.client.SetNX(ctx, k, token, lr.ttl).Result()
			switch {
			case ctx.Err() != nil:
				err = backoff.Permanent(fmt.Errorf("%w: %s, %s", ErrTimeout, key, ctx.Err()))
			case err != nil:
				err = backoff.Permanent(fmt.Errorf("%w: %s", ErrInternal, err))
			case !ok:
				err = errBusy
			}
			return
		},
		backoff.WithContext(b, ctx),
	)
	switch {
	case err == nil:
		stop := make(chan struct{})
		go lr.keepAlive(k, token, stop)
		var once sync.Once
		unlock = func() {
			once.Do(func() {
				close(stop)
				errUnlock := scriptUnlock.Run(context.Background(), lr.client, []string{k}, token).Err()
				if errUnlock != nil {
					lr.log.Warn(fmt.Sprintf("Failed to release the lock %s, cause: %s", k, errUnlock))
				}
			})
		}
	case errors.Is(err, errBusy), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		err = fmt.Errorf("%w: %s", ErrTimeout, key)
	}
	return
}

func (lr lockRedis) keepAlive(k, token string, stop <-chan struct{}) {
	t := time.NewTicker(lr.ttl / 3)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			extended, err := scriptExtend.Run(context.Background(), lr.client, []string{k}, token, lr.ttl.Milliseconds()).Int()
			switch {
			case err != nil:
				lr.log.Warn(fmt.Sprintf("Failed to renew the lock %s, cause: %s", k, err))
			case extended == 0:
				lr.log.Warn(fmt.Sprintf("Lock %s is lost before release", k))
				return
			}
		}
	}
}
