package messaging

import (
	"encoding/json"
	"log/slog"

	"github.com/pixil98/go-wordle/internal/protocol"
)

type Publisher interface {
	Publish(subject string, data []byte) error
}

type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// Bus is what sessions need from the message server.
type Bus interface {
	Publisher
	Subscriber
}

// ConnSubject is the subject a connection's events are delivered on.
func ConnSubject(connId string) string {
	return "conn." + connId
}

// Outbox publishes a connection's events as framed JSON. Send never blocks on
// the client; the subscriber on ConnSubject writes them out.
type Outbox struct {
	id  string
	pub Publisher
}

func NewOutbox(connId string, pub Publisher) *Outbox {
	return &Outbox{id: connId, pub: pub}
}

func (o *Outbox) Id() string {
	return o.id
}

func (o *Outbox) Send(ev protocol.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("encoding event", "connId", o.id, "type", ev.Type, "error", err)
		return
	}
	if err := o.pub.Publish(ConnSubject(o.id), data); err != nil {
		slog.Warn("publishing event", "connId", o.id, "type", ev.Type, "error", err)
	}
}
