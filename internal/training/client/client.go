// Package client talks to the training payment endpoints and drives the
// code entry widget on top of them.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shandysiswandi/skillbridge/internal/pkg/codeinput"
	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
	"github.com/shandysiswandi/skillbridge/internal/training/inbound"
)

const (
	pathSendPaymentOTP   = "/api/v1/trainings/send-payment-otp"
	pathVerifyPaymentOTP = "/api/v1/trainings/verify-payment-otp"

	defaultTimeout = 15 * time.Second
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Reason  string
	Message string
}

func (e *APIError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Reason, e.Message)
}

// Unwrap exposes the matching entity sentinel so errors.Is works across the
// wire.
func (e *APIError) Unwrap() error {
	return entity.SentinelFromReason(e.Reason)
}

// Retryable reports whether the user can try again without a new code.
func (e *APIError) Retryable() bool {
	switch e.Reason {
	case entity.ReasonInvalidCode, entity.ReasonInvalidInput:
		return true
	}
	return e.Status >= http.StatusInternalServerError
}

type envelope[T any] struct {
	Message string            `json:"message"`
	Data    T                 `json:"data"`
	Error   map[string]string `json:"error"`
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithToken sets the source of the bearer token sent on each call.
func WithToken(fn func() string) Option {
	return func(c *Client) { c.token = fn }
}

type Client struct {
	base  string
	hc    *http.Client
	token func() string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) SendPaymentOTP(ctx context.Context, req inbound.SendPaymentOTPRequest) (*inbound.SendPaymentOTPResponse, error) {
	var out envelope[inbound.SendPaymentOTPResponse]
	if err := c.post(ctx, pathSendPaymentOTP, req, &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

func (c *Client) VerifyPaymentOTP(ctx context.Context, req inbound.VerifyPaymentOTPRequest) (*inbound.VerifyPaymentOTPResponse, error) {
	var out envelope[inbound.VerifyPaymentOTPResponse]
	if err := c.post(ctx, pathVerifyPaymentOTP, req, &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var env envelope[json.RawMessage]
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if json.Unmarshal(raw, &env) == nil {
			if env.Message != "" {
				apiErr.Message = env.Message
			}
			apiErr.Reason = env.Error[goerror.FieldReason]
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// Message turns any error into text fit for the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	for _, local := range []error{codeinput.ErrIncomplete, ErrCodeExpired, ErrBusy} {
		if errors.Is(err, local) {
			return local.Error()
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out, please try again"
	}
	return "Something went wrong, please try again"
}
