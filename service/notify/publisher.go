package notify

import (
	"context"
	"errors"
	"io"
)

type Publisher interface {
	io.Closer
	Publish(ctx context.Context, n Notification) (err error)
}

var ErrInvalidFormat = errors.New("unsupported notification format")
var ErrPublish = errors.New("failed to publish notification")
