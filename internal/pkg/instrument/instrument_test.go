package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"testing"
)

func TestMaskerValue(t *testing.T) {
	// Arrange
	m := NewMasker([]string{" Code ", "card_last_four", ""})
	in := map[string]any{
		"training_id": 1001.0,
		"code":        "123456",
		"payment":     map[string]any{"card_last_four": "4242", "method": "card"},
		"items":       []any{map[string]any{"CODE": "1"}},
	}

	// Act
	got := m.Value(in).(map[string]any)

	// Assert
	if got["code"] != masked || got["training_id"] != 1001.0 {
		t.Fatalf("top level = %v", got)
	}
	if p := got["payment"].(map[string]any); p["card_last_four"] != masked || p["method"] != "card" {
		t.Fatalf("nested = %v", p)
	}
	if item := got["items"].([]any)[0].(map[string]any); item["CODE"] != masked {
		t.Fatalf("slice = %v", item)
	}
	if in["code"] != "123456" {
		t.Fatalf("input mutated")
	}
}

func TestMaskerHeaderAndJSON(t *testing.T) {
	m := NewMasker([]string{"authorization", "code"})
	h := http.Header{"Authorization": {"Bearer x"}, "Accept": {"*/*"}}

	got := m.Header(h)
	v, ok := m.JSON([]byte(`{"code":"654321"}`))
	_, notJSON := m.JSON([]byte("plain"))

	if got.Get("Authorization") != masked || got.Get("Accept") != "*/*" || h.Get("Authorization") != "Bearer x" {
		t.Fatalf("header = %v", got)
	}
	if !ok || v.(map[string]any)["code"] != masked || notJSON {
		t.Fatalf("json = %v ok %v notJSON %v", v, ok, notJSON)
	}
}

func TestLoggerMasksAndAddsContext(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{ServiceName: "skillbridge", LogLevel: "debug", MaskFields: []string{"code"}}, nil)
	ctx := SetCorrelationID(context.Background(), "cid-1")

	// Act
	logger.With("code", "111111").InfoContext(ctx, "sent", "body", `{"code":"222222","ok":true}`)

	// Assert
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v (%s)", err, buf.String())
	}
	if strings.Contains(buf.String(), "111111") || strings.Contains(buf.String(), "222222") {
		t.Fatalf("code leaked: %s", buf.String())
	}
	if rec["_cID"] != "cid-1" || rec["service"] != "skillbridge" || rec["severity"] != "INFO" {
		t.Fatalf("record = %v", rec)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v", in, got)
		}
	}
}

func TestNoop(t *testing.T) {
	ins, err := New(context.Background(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, span := ins.Tracer("t").Start(context.Background(), "op")
	span.End()
	if err := ins.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
