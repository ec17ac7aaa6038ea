package messaging

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
)

type natsMessage struct {
	msg        *nats.Msg
	receivedAt time.Time
	headers    map[string]string

	responded atomic.Bool
}

func newNATSMessage(m *nats.Msg, receivedAt time.Time) *natsMessage {
	var headers map[string]string
	if len(m.Header) > 0 {
		headers = make(map[string]string, len(m.Header))
		for k := range m.Header {
			headers[k] = m.Header.Get(k)
		}
	}
	return &natsMessage{msg: m, receivedAt: receivedAt, headers: headers}
}

func (m *natsMessage) Body() []byte { return m.msg.Data }
func (m *natsMessage) Header(key string) string { return m.headers[key] }
func (m *natsMessage) Headers() map[string]string { return m.headers }
func (m *natsMessage) ID() string { return m.headers[nats.MsgIdHdr] }
func (m *natsMessage) Source() string { return m.msg.Subject }
func (m *natsMessage) Timestamp() time.Time { return m.receivedAt }

func (m *natsMessage) Attempts() int {
	if md, err := m.msg.Metadata(); err == nil && md.NumDelivered > 0 {
		return int(md.NumDelivered)
	}
	return 1
}

func (m *natsMessage) Ack(ctx context.Context) error {
	return m.respond(ctx, m.msg.Ack)
}

func (m *natsMessage) Nack(ctx context.Context) error {
	return m.respond(ctx, m.msg.Nak)
}

func (m *natsMessage) respond(ctx context.Context, fn func(...nats.AckOpt) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.responded.Swap(true) {
		return nil
	}
	// Core subscriptions have no reply subject to ack on.
	if err := fn(); err != nil && !errors.Is(err, nats.ErrMsgNoReply) && !errors.Is(err, nats.ErrMsgNotBound) {
		return err
	}
	return nil
}
