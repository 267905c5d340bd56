package notify

import (
	"encoding/json"
	"fmt"
	"github.com/bytedance/sonic"
	ceProto "github.com/cloudevents/sdk-go/binding/format/protobuf/v2"
	ce "github.com/cloudevents/sdk-go/v2/event"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"time"
)

const FormatJson = "json"
const FormatProto = "proto"

const ceTypePrefix = "com.github.awakari.venue-chat.v1."
const ceKeyVenue = "venue"
const ceKeySender = "sender"

type payload struct {
	Recipients []string `json:"recipients"`
	Message    string   `json:"message,omitempty"`
	Text       string   `json:"text,omitempty"`
}

type encoder struct {
	format string
	source string
}

func newEncoder(format, source string) (e encoder, err error) {
	switch format {
	case FormatJson, FormatProto:
		e = encoder{
			format: format,
			source: source,
		}
	default:
		err = fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}
	return
}

func (e encoder) toEvent(n Notification) (evt ce.Event, err error) {
	evt = ce.New()
	evt.SetID(uuid.NewString())
	evt.SetSource(e.source)
	evt.SetType(ceTypePrefix + n.Kind.String())
	evt.SetSubject(n.Chat)
	evt.SetTime(time.Now().UTC())
	evt.SetExtension(ceKeyVenue, n.Venue)
	evt.SetExtension(ceKeySender, n.Sender)
	var data []byte
	data, err = sonic.Marshal(payload{
		Recipients: n.Recipients,
		Message:    n.Message,
		Text:       n.Text,
	})
	if err == nil {
		err = evt.SetData(ce.ApplicationJSON, json.RawMessage(data))
	}
	return
}

func (e encoder) encode(n Notification) (data []byte, err error) {
	var evt ce.Event
	evt, err = e.toEvent(n)
	if err == nil {
		switch e.format {
		case FormatProto:
			var evtProto proto.Message
			evtProto, err = ceProto.ToProto(&evt)
			if err == nil {
				data, err = proto.Marshal(evtProto)
			}
		default:
			data, err = evt.MarshalJSON()
		}
	}
	return
}
