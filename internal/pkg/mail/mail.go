package mail

import (
	"context"
	"io"
)

// Message is one outgoing email. When both bodies are set the message is
// sent as multipart/alternative.
type Message struct {
	// From overrides the transport's default sender.
	From    string
	To      []string
	Cc      []string
	Bcc     []string
	Subject string

	TextBody string
	HTMLBody string
}

// Recipients returns every envelope recipient, Bcc included.
func (m Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	return append(out, m.Bcc...)
}

// Mail sends messages.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
