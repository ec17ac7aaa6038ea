// Package cache holds the payment OTP challenge stores. Every store keeps at
// most one challenge per (contact, training) pair and performs verification
// as a single atomic check-and-consume.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

const keyPrefix = "training:payment_otp:"

// challengeKey hides the raw contact from the key space.
func challengeKey(contact string, trainingID int64) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(contact))))
	return keyPrefix + hex.EncodeToString(sum[:]) + ":" + strconv.FormatInt(trainingID, 10)
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
