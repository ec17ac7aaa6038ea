// Package codeinput models a fixed-length numeric code as one logical value
// with a per-cell view on top. Rendering is left to the caller.
package codeinput

import "errors"

// ErrIncomplete is returned by Validate while any cell is empty.
var ErrIncomplete = errors.New("Please enter complete 6-digit OTP") //nolint:staticcheck // shown to the user as-is

const DefaultLength = 6

// Field holds the cells and the focused position. Focus may equal Len(),
// meaning the caret sits past the last cell.
type Field struct {
	cells []rune
	focus int
}

func New(length int) *Field {
	if length <= 0 {
		length = DefaultLength
	}
	return &Field{cells: make([]rune, length)}
}

func (f *Field) Len() int { return len(f.cells) }

func (f *Field) Focus() int { return f.focus }

// FocusAt moves the caret, clamped to [0, Len()].
func (f *Field) FocusAt(i int) {
	f.focus = min(max(i, 0), len(f.cells))
}

// Type writes one digit at the focused cell and advances. Non-digits and
// typing past the last cell are ignored.
func (f *Field) Type(r rune) bool {
	if !isDigit(r) || f.focus >= len(f.cells) {
		return false
	}

	f.cells[f.focus] = r
	f.focus++
	return true
}

// Backspace clears the focused cell, or moves back one cell when it is
// already empty.
func (f *Field) Backspace() {
	if f.focus < len(f.cells) && f.cells[f.focus] != 0 {
		f.cells[f.focus] = 0
		return
	}
	if f.focus > 0 {
		f.focus--
	}
}

// Paste distributes the digits of s from the focused cell onward and moves
// the caret to the next empty cell, or past the last one when none is left.
func (f *Field) Paste(s string) int {
	n := 0
	i := f.focus
	for _, r := range s {
		if i >= len(f.cells) {
			break
		}
		if !isDigit(r) {
			continue
		}
		f.cells[i] = r
		i++
		n++
	}

	f.focus = i
	for f.focus < len(f.cells) && f.cells[f.focus] != 0 {
		f.focus++
	}
	return n
}

// Cells returns each cell as a string, "" for empty ones.
func (f *Field) Cells() []string {
	out := make([]string, len(f.cells))
	for i, r := range f.cells {
		if r != 0 {
			out[i] = string(r)
		}
	}
	return out
}

// Code joins the filled cells in order.
func (f *Field) Code() string {
	out := make([]rune, 0, len(f.cells))
	for _, r := range f.cells {
		if r != 0 {
			out = append(out, r)
		}
	}
	return string(out)
}

func (f *Field) Complete() bool {
	for _, r := range f.cells {
		if r == 0 {
			return false
		}
	}
	return true
}

func (f *Field) Validate() error {
	if !f.Complete() {
		return ErrIncomplete
	}
	return nil
}

func (f *Field) Clear() {
	clear(f.cells)
	f.focus = 0
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
