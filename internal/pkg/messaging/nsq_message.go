package messaging

import (
	"context"
	"sync/atomic"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

type nsqMessage struct {
	topic   string
	msg     *nsq.Message
	body    []byte
	headers map[string]string

	responded atomic.Bool
}

func newNSQMessage(topic string, m *nsq.Message) *nsqMessage {
	body, headers := decodeEnvelope(m.Body)
	return &nsqMessage{topic: topic, msg: m, body: body, headers: headers}
}

func (m *nsqMessage) Body() []byte { return m.body }
func (m *nsqMessage) Header(key string) string { return m.headers[key] }
func (m *nsqMessage) Headers() map[string]string { return m.headers }
func (m *nsqMessage) ID() string { return string(m.msg.ID[:]) }
func (m *nsqMessage) Source() string { return m.topic }
func (m *nsqMessage) Attempts() int { return max(int(m.msg.Attempts), 1) }
func (m *nsqMessage) Timestamp() time.Time { return time.Unix(0, m.msg.Timestamp) }

func (m *nsqMessage) Ack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.responded.Swap(true) {
		m.msg.Finish()
	}
	return nil
}

func (m *nsqMessage) Nack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.responded.Swap(true) {
		m.msg.Requeue(-1)
	}
	return nil
}
