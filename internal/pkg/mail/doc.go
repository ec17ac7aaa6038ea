// Package mail sends transactional email. Callers depend on Mail and build a
// Message; SMTP is the only transport.
package mail
