// Package otp generates the numeric one-time codes that gate a payment
// confirmation. Codes are drawn from crypto/rand and never derived from a
// shared secret, so two challenges never share a code by construction.
package otp
