package entity

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidContext    = errors.New("invalid transaction context")
	ErrNoActiveChallenge = errors.New("no active challenge")
	ErrChallengeExpired  = errors.New("challenge expired")
	ErrInvalidCode       = errors.New("invalid code")
	ErrAlreadyConsumed   = errors.New("challenge already consumed")
	ErrDeliveryFailed    = errors.New("code delivery failed")
	ErrTooManyAttempts   = errors.New("too many attempts")
	ErrSendThrottled     = errors.New("send throttled")
)

// Reasons are the stable identifiers exposed to clients.
const (
	ReasonInvalidInput      = "INVALID_INPUT"
	ReasonInvalidContext    = "INVALID_CONTEXT"
	ReasonNoActiveChallenge = "NO_ACTIVE_CHALLENGE"
	ReasonExpired           = "EXPIRED"
	ReasonInvalidCode       = "INVALID_CODE"
	ReasonAlreadyConsumed   = "ALREADY_CONSUMED"
	ReasonDeliveryFailed    = "DELIVERY_FAILED"
	ReasonTooManyAttempts   = "TOO_MANY_ATTEMPTS"
	ReasonSendThrottled     = "SEND_THROTTLED"
)

var sentinelByReason = map[string]error{
	ReasonInvalidInput:      ErrInvalidInput,
	ReasonInvalidContext:    ErrInvalidContext,
	ReasonNoActiveChallenge: ErrNoActiveChallenge,
	ReasonExpired:           ErrChallengeExpired,
	ReasonInvalidCode:       ErrInvalidCode,
	ReasonAlreadyConsumed:   ErrAlreadyConsumed,
	ReasonDeliveryFailed:    ErrDeliveryFailed,
	ReasonTooManyAttempts:   ErrTooManyAttempts,
	ReasonSendThrottled:     ErrSendThrottled,
}

// SentinelFromReason maps a wire reason back to its sentinel, nil if unknown.
func SentinelFromReason(reason string) error {
	return sentinelByReason[reason]
}

func NewErrInvalidInput(err error) error {
	return goerror.WithReason(goerror.NewInvalidInput(errors.Join(ErrInvalidInput, err)), ReasonInvalidInput)
}

func NewErrInvalidContext(msg string) error {
	return goerror.NewBusinessReason(ErrInvalidContext, msg, goerror.CodeConflict, ReasonInvalidContext)
}

func NewErrTrainingNotFound() error {
	return goerror.NewBusinessReason(ErrInvalidContext, "Training not found", goerror.CodeNotFound, ReasonInvalidContext)
}

func NewErrNoActiveChallenge() error {
	return goerror.NewBusinessReason(ErrNoActiveChallenge, "No active OTP, please request a new one", goerror.CodeNotFound, ReasonNoActiveChallenge)
}

func NewErrExpired() error {
	return goerror.NewBusinessReason(ErrChallengeExpired, "OTP has expired, please request a new one", goerror.CodeGone, ReasonExpired)
}

func NewErrInvalidCode() error {
	return goerror.NewBusinessReason(ErrInvalidCode, "Invalid OTP", goerror.CodeInvalidInput, ReasonInvalidCode)
}

func NewErrAlreadyConsumed() error {
	return goerror.NewBusinessReason(ErrAlreadyConsumed, "OTP has already been used", goerror.CodeConflict, ReasonAlreadyConsumed)
}

func NewErrDeliveryFailed() error {
	return goerror.NewBusinessReason(ErrDeliveryFailed, "Failed to send OTP, please try again", goerror.CodeBadGateway, ReasonDeliveryFailed)
}

func NewErrTooManyAttempts() error {
	return goerror.NewBusinessReason(ErrTooManyAttempts, "Too many invalid attempts, please request a new OTP", goerror.CodeTooManyRequest, ReasonTooManyAttempts)
}

// NewErrSendThrottled tells the client how long to wait when wait is known.
func NewErrSendThrottled(wait time.Duration) error {
	err := goerror.NewBusinessReason(ErrSendThrottled, "Please wait before requesting another OTP", goerror.CodeTooManyRequest, ReasonSendThrottled)
	if wait <= 0 {
		return err
	}
	secs := int64(math.Ceil(wait.Seconds()))
	return goerror.WithField(err, goerror.FieldRetryAfter, strconv.FormatInt(secs, 10))
}
