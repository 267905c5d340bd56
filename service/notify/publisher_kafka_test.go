package notify

import (
	"context"
	"errors"
	"github.com/bytedance/sonic"
	"github.com/cloudevents/sdk-go/binding/format/protobuf/v2/pb"
	ce "github.com/cloudevents/sdk-go/v2/event"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"testing"
)

type writerMock struct {
	msgs []kafka.Message
	err  error
}

func (wm *writerMock) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if wm.err != nil {
		return wm.err
	}
	wm.msgs = append(wm.msgs, msgs...)
	return nil
}

func (wm *writerMock) Close() error {
	return nil
}

func TestNewPublisher(t *testing.T) {
	_, err := newPublisher(&writerMock{}, "xml", "venue-chat")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPublisherKafka_Publish_Json(t *testing.T) {
	w := &writerMock{}
	p, err := newPublisher(w, FormatJson, "venue-chat")
	require.Nil(t, err)
	n := Notification{
		Kind:       KindMessageCreated,
		Chat:       "chat0",
		Venue:      "venue0",
		Sender:     "user0",
		Recipients: []string{"user1"},
		Message:    "msg0",
		Text:       "hello",
	}
	err = p.Publish(context.TODO(), n)
	require.Nil(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("chat0"), w.msgs[0].Key)
	//
	evt := ce.New()
	err = evt.UnmarshalJSON(w.msgs[0].Value)
	require.Nil(t, err)
	assert.NotEmpty(t, evt.ID())
	assert.Equal(t, "venue-chat", evt.Source())
	assert.Equal(t, "com.github.awakari.venue-chat.v1.messageCreated", evt.Type())
	assert.Equal(t, "chat0", evt.Subject())
	assert.Equal(t, "venue0", evt.Extensions()[ceKeyVenue])
	assert.Equal(t, "user0", evt.Extensions()[ceKeySender])
	var pl payload
	err = sonic.Unmarshal(evt.Data(), &pl)
	require.Nil(t, err)
	assert.Equal(t, []string{"user1"}, pl.Recipients)
	assert.Equal(t, "msg0", pl.Message)
	assert.Equal(t, "hello", pl.Text)
}

func TestPublisherKafka_Publish_Proto(t *testing.T) {
	w := &writerMock{}
	p, err := newPublisher(w, FormatProto, "venue-chat")
	require.Nil(t, err)
	err = p.Publish(context.TODO(), Notification{
		Kind:       KindChatRejected,
		Chat:       "chat1",
		Venue:      "venue0",
		Sender:     "user1",
		Recipients: []string{"user0"},
	})
	require.Nil(t, err)
	require.Len(t, w.msgs, 1)
	var evtProto pb.CloudEvent
	err = proto.Unmarshal(w.msgs[0].Value, &evtProto)
	require.Nil(t, err)
	assert.NotEmpty(t, evtProto.Id)
	assert.Equal(t, "venue-chat", evtProto.Source)
	assert.Equal(t, "com.github.awakari.venue-chat.v1.chatRejected", evtProto.Type)
	assert.Equal(t, "chat1", evtProto.Attributes["subject"].GetCeString())
	assert.Equal(t, "venue0", evtProto.Attributes[ceKeyVenue].GetCeString())
}

func TestPublisherKafka_Publish_Fail(t *testing.T) {
	p, err := newPublisher(&writerMock{err: errors.New("broker unavailable")}, FormatJson, "venue-chat")
	require.Nil(t, err)
	err = p.Publish(context.TODO(), Notification{Kind: KindChatCreated, Chat: "chat0"})
	assert.ErrorIs(t, err, ErrPublish)
}
