package notify

import (
	"context"
	"fmt"
	"github.com/segmentio/kafka-go"
	"time"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type publisherKafka struct {
	w   messageWriter
	enc encoder
}

func NewKafkaPublisher(brokers []string, topic, format, source string) (p Publisher, err error) {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	p, err = newPublisher(w, format, source)
	return
}

func newPublisher(w messageWriter, format, source string) (p Publisher, err error) {
	var enc encoder
	enc, err = newEncoder(format, source)
	if err == nil {
		p = publisherKafka{
			w:   w,
			enc: enc,
		}
	}
	return
}

func (pk publisherKafka) Close() error {
	return pk.w.Close()
}

// Publish writes the notification keyed by the chat id, so the notifications of the same chat keep the order.
func (pk publisherKafka) Publish(ctx context.Context, n Notification) (err error) {
	var data []byte
	data, err = pk.enc.encode(n)
	if err == nil {
		err = pk.w.WriteMessages(ctx, kafka.Message{
			Key:   []byte(n.Chat),
			Value: data,
			Time:  time.Now(),
		})
		if err != nil {
			err = fmt.Errorf("%w: %s", ErrPublish, err)
		}
	}
	return
}
