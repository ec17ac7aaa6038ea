package messaging

import (
	"encoding/json"
	"maps"
)

// envelope wraps a body with headers for brokers without native headers.
type envelope struct {
	Headers map[string]string `json:"h,omitempty"`
	Body    []byte            `json:"b"`
}

// magic prefixes every enveloped payload so plain bodies from other
// producers still decode as raw bodies.
const magic = "sbmq1:"

func encodeEnvelope(msg OutgoingMessage) ([]byte, error) {
	if len(msg.Headers) == 0 {
		return msg.Body, nil
	}
	b, err := json.Marshal(envelope{Headers: msg.Headers, Body: msg.Body})
	if err != nil {
		return nil, err
	}
	return append([]byte(magic), b...), nil
}

func decodeEnvelope(raw []byte) (body []byte, headers map[string]string) {
	if len(raw) < len(magic) || string(raw[:len(magic)]) != magic {
		return raw, nil
	}
	var env envelope
	if err := json.Unmarshal(raw[len(magic):], &env); err != nil {
		return raw, nil
	}
	return env.Body, maps.Clone(env.Headers)
}
