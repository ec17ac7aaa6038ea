// Package clock hides the wall clock behind Clocker so expiry, cooldown and
// token checks can run against a pinned time in tests.
package clock
