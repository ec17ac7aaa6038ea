// Package uid provides identifier generators used across modules.
//
// Numeric identifiers back database primary keys; string identifiers are used
// for correlation ids, token ids and external references.
package uid

// NumberID generates unique int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
