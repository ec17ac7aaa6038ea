package messaging

import (
	"context"

	"go.opentelemetry.io/otel/propagation"
)

var propagator = propagation.TraceContext{}

// InjectTrace writes the W3C trace context of ctx into headers, allocating
// the map when needed, and returns it.
func InjectTrace(ctx context.Context, headers map[string]string) map[string]string {
	if headers == nil {
		headers = make(map[string]string, 2)
	}
	propagator.Inject(ctx, propagation.MapCarrier(headers))
	return headers
}

// ExtractTrace returns ctx carrying the remote span context found in msg.
func ExtractTrace(ctx context.Context, msg Message) context.Context {
	h := msg.Headers()
	if len(h) == 0 {
		return ctx
	}
	return propagator.Extract(ctx, propagation.MapCarrier(h))
}
