// Package messaging provides a broker-agnostic API for publishing and
// consuming messages.
//
// Training events (payment OTP delivery, registration confirmation) are
// published through the Publisher interface and consumed by the notification
// module. NSQ and NATS are supported; the driver is picked from config.
package messaging
