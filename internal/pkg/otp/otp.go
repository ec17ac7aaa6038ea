package otp

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pquerna/otp"
)

// Generator produces fresh one-time codes.
type Generator interface {
	Generate() (string, error)
}

// Numeric generates zero-padded decimal codes of a fixed length.
type Numeric struct {
	digits otp.Digits
	max    *big.Int
	rand   io.Reader
}

// NewNumeric builds a Numeric generator. Digits other than 6 or 8 fall back
// to 6.
func NewNumeric(digits otp.Digits) *Numeric {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}

	return &Numeric{
		digits: digits,
		max:    new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits.Length())), nil),
		rand:   rand.Reader,
	}
}

// NewNumericFromReader is NewNumeric with an explicit entropy source.
func NewNumericFromReader(digits otp.Digits, r io.Reader) *Numeric {
	n := NewNumeric(digits)
	n.rand = r
	return n
}

// Length returns the number of digits in every generated code.
func (n *Numeric) Length() int {
	return n.digits.Length()
}

// Generate returns a uniformly distributed code in [0, 10^digits).
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(n.rand, n.max)
	if err != nil {
		return "", err
	}

	return n.digits.Format(int32(v.Int64())), nil
}
