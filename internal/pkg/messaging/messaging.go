package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrUnsupported is returned when the selected broker cannot honor a publish option.
var ErrUnsupported = errors.New("messaging: unsupported operation")

// HeaderCorrelationID carries the request correlation id across the broker.
const HeaderCorrelationID = "cID"

// Messaging is a broker-agnostic client that can publish and consume messages.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher publishes messages to a destination (NSQ topic or NATS subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer blocks handling messages from source until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message. With auto-ack a nil return acks
// and an error nacks; otherwise the handler owns the response.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a payload plus string headers.
type OutgoingMessage struct {
	Body    []byte
	Headers map[string]string
	// Delay defers delivery; only NSQ supports it.
	Delay time.Duration
}

// PublishResult describes an accepted publish.
type PublishResult struct {
	Destination string
	Timestamp   time.Time
}

// Message is a received message.
type Message interface {
	Body() []byte
	// Header returns the value for key, or "".
	Header(key string) string
	Headers() map[string]string
	// ID is the broker message id when the broker assigns one.
	ID() string
	Source() string
	// Attempts counts deliveries including this one; 1 when unknown.
	Attempts() int
	Timestamp() time.Time

	Ack(ctx context.Context) error
	Nack(ctx context.Context) error
}
