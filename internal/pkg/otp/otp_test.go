package otp

import (
	"bytes"
	"errors"
	"testing"

	"github.com/pquerna/otp"
)

func TestNumericGenerateShape(t *testing.T) {
	// Arrange
	gen := NewNumeric(otp.DigitsSix)

	for i := 0; i < 200; i++ {
		// Act
		code, err := gen.Generate()

		// Assert
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q length = %d, want 6", code, len(code))
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non digit", code)
			}
		}
	}
}

func TestNumericKeepsLeadingZeros(t *testing.T) {
	// Arrange
	gen := NewNumericFromReader(otp.DigitsSix, bytes.NewReader(make([]byte, 64)))

	// Act
	code, err := gen.Generate()

	// Assert
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if code != "000000" {
		t.Fatalf("code = %q, want 000000", code)
	}
}

func TestNumericFallsBackToSixDigits(t *testing.T) {
	// Arrange
	gen := NewNumeric(otp.Digits(4))

	// Act
	length := gen.Length()

	// Assert
	if length != 6 {
		t.Fatalf("length = %d, want 6", length)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestNumericPropagatesEntropyError(t *testing.T) {
	// Arrange
	gen := NewNumericFromReader(otp.DigitsSix, failingReader{})

	// Act
	_, err := gen.Generate()

	// Assert
	if err == nil {
		t.Fatalf("expected error")
	}
}
