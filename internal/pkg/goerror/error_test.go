package goerror

import (
	"errors"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "server", err: NewServer(errors.New("boom")), want: http.StatusInternalServerError},
		{name: "invalid input", err: NewInvalidInput(errors.New("bad")), want: http.StatusUnprocessableEntity},
		{name: "invalid format", err: NewInvalidFormat(), want: http.StatusBadRequest},
		{name: "not found", err: NewBusiness("missing", CodeNotFound), want: http.StatusNotFound},
		{name: "too many", err: NewBusiness("slow down", CodeTooManyRequest), want: http.StatusTooManyRequests},
		{name: "gone", err: NewBusiness("expired", CodeGone), want: http.StatusGone},
		{name: "bad gateway", err: NewBusiness("upstream", CodeBadGateway), want: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var gerr *Error
			if !errors.As(tt.err, &gerr) {
				t.Fatalf("expected *Error, got %T", tt.err)
			}

			// Act
			got := gerr.StatusCode()

			// Assert
			if got != tt.want {
				t.Fatalf("status code = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewBusinessReason(t *testing.T) {
	// Arrange
	sentinel := errors.New("challenge expired")

	// Act
	err := NewBusinessReason(sentinel, "Code has expired", CodeGone, "EXPIRED")

	// Assert
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected error to wrap sentinel")
	}
	if got := Reason(err); got != "EXPIRED" {
		t.Fatalf("reason = %q, want EXPIRED", got)
	}

	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error")
	}
	if gerr.Type() != TypeBusiness {
		t.Fatalf("type = %s, want business", gerr.Type())
	}
	if gerr.Msg() != "Code has expired" {
		t.Fatalf("msg = %q", gerr.Msg())
	}
}

func TestWithReason(t *testing.T) {
	// Arrange
	base := NewInvalidInput(nil, "code", "must be 6 digits")

	// Act
	err := WithReason(base, "INVALID_INPUT")

	// Assert
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error")
	}
	if gerr.Fields()["code"] != "must be 6 digits" {
		t.Fatalf("existing field lost: %v", gerr.Fields())
	}
	if gerr.Fields()[FieldReason] != "INVALID_INPUT" {
		t.Fatalf("reason field missing: %v", gerr.Fields())
	}
	if Reason(base) != "" {
		t.Fatalf("original error must not be mutated")
	}
}

func TestWithReasonPlainError(t *testing.T) {
	// Arrange
	plain := errors.New("plain")

	// Act
	err := WithReason(plain, "X")

	// Assert
	if err != plain {
		t.Fatalf("plain error should pass through unchanged")
	}
	if Reason(err) != "" {
		t.Fatalf("plain error has no reason")
	}
}
