package instrument

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

const masked = "***"

// Masker replaces the values of sensitive keys in log payloads.
// Keys are matched case-insensitively at any depth.
type Masker struct {
	keys map[string]struct{}
}

// NewMasker builds a Masker for the given field names. Blank names are ignored.
func NewMasker(fields []string) *Masker {
	keys := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			keys[f] = struct{}{}
		}
	}
	return &Masker{keys: keys}
}

// Enabled reports whether any key is configured.
func (m *Masker) Enabled() bool {
	return m != nil && len(m.keys) > 0
}

// Match reports whether key must be masked.
func (m *Masker) Match(key string) bool {
	if !m.Enabled() {
		return false
	}
	_, ok := m.keys[strings.ToLower(key)]
	return ok
}

// Value masks decoded JSON-like data. Unknown types are returned as is.
func (m *Masker) Value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			if m.Match(k) {
				out[k] = masked
				continue
			}
			out[k] = m.Value(v2)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			if m.Match(k) {
				out[k] = masked
				continue
			}
			out[k] = v2
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v2 := range val {
			out[i] = m.Value(v2)
		}
		return out
	default:
		return v
	}
}

// JSON decodes payload and masks it. ok is false when payload is not JSON.
func (m *Masker) JSON(payload []byte) (v any, ok bool) {
	if len(payload) == 0 {
		return nil, false
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, false
	}
	return m.Value(v), true
}

// Header returns a copy of h with sensitive header values masked.
func (m *Masker) Header(h http.Header) http.Header {
	if !m.Enabled() {
		return h
	}

	out := h.Clone()
	for k := range out {
		if m.Match(k) {
			out.Set(k, masked)
		}
	}
	return out
}

// Attr masks a slog attribute, descending into groups, maps and JSON text.
func (m *Masker) Attr(a slog.Attr) slog.Attr {
	if m.Match(a.Key) {
		return slog.String(a.Key, masked)
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, 0, len(group))
		for _, ga := range group {
			out = append(out, m.Attr(ga))
		}
		a.Value = slog.GroupValue(out...)
	case slog.KindString:
		if s, ok := m.jsonText([]byte(a.Value.String())); ok {
			a.Value = slog.StringValue(s)
		}
	case slog.KindAny:
		switch val := a.Value.Any().(type) {
		case map[string]any, map[string]string, []any:
			a.Value = slog.AnyValue(m.Value(val))
		case []byte:
			if s, ok := m.jsonText(val); ok {
				a.Value = slog.StringValue(s)
			}
		}
	}

	return a
}

func (m *Masker) jsonText(payload []byte) (string, bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}
	v, ok := m.JSON(payload)
	if !ok {
		return "", false
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(b), true
}
