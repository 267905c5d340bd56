package notify

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"log/slog"
	"os"
	"testing"
	"time"
)

type publisherMock struct {
	mock.Mock
}

func (pm *publisherMock) Publish(ctx context.Context, n Notification) error {
	args := pm.Called(ctx, n)
	return args.Error(0)
}

func (pm *publisherMock) Close() error {
	return pm.Called().Error(0)
}

var log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

var cfgBackoffTest = BackoffConfig{
	Init:       time.Millisecond,
	MaxElapsed: 100 * time.Millisecond,
}

func TestDispatcher_Notify(t *testing.T) {
	n0 := Notification{
		Kind:       KindChatCreated,
		Chat:       "chat0",
		Sender:     "user0",
		Recipients: []string{"user1"},
	}
	n1 := Notification{
		Kind:       KindMessageCreated,
		Chat:       "chat0",
		Sender:     "user1",
		Recipients: []string{"user0"},
	}
	pm := &publisherMock{}
	pm.On("Publish", mock.Anything, n0).Return(errors.New("temporary failure")).Once()
	pm.On("Publish", mock.Anything, n0).Return(nil).Once()
	pm.On("Publish", mock.Anything, n1).Return(nil).Once()
	pm.On("Close").Return(nil).Once()
	d := NewDispatcher(NewPublisherLogging(pm, log), 16, cfgBackoffTest, log)
	d.Notify(context.TODO(), n0)
	d.Notify(context.TODO(), n1)
	assert.Nil(t, d.Close())
	pm.AssertExpectations(t)
}

func TestDispatcher_Notify_GiveUp(t *testing.T) {
	n := Notification{
		Kind: KindChatRejected,
		Chat: "chat1",
	}
	pm := &publisherMock{}
	pm.On("Publish", mock.Anything, n).Return(errors.New("permanent failure"))
	pm.On("Close").Return(nil).Once()
	d := NewDispatcher(pm, 16, cfgBackoffTest, log)
	d.Notify(context.TODO(), n)
	assert.Nil(t, d.Close())
	pm.AssertCalled(t, "Publish", mock.Anything, n)
}

func TestDispatcher_Notify_Closed(t *testing.T) {
	pm := &publisherMock{}
	pm.On("Close").Return(nil).Once()
	d := NewDispatcher(pm, 16, cfgBackoffTest, log)
	assert.Nil(t, d.Close())
	d.Notify(context.TODO(), Notification{Kind: KindChatCreated, Chat: "chat2"})
	pm.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
