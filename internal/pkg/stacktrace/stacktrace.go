// Package stacktrace trims runtime/debug stacks down to this module's frames.
package stacktrace

import "strings"

// InternalFrames returns "func internal/path/file.go:line" entries for the
// frames of a debug.Stack dump that live under an internal/ directory.
func InternalFrames(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	frames := make([]string, 0, len(lines)/2)

	for i := 1; i+1 < len(lines); i++ {
		loc := lines[i+1]
		if !strings.HasPrefix(loc, "\t") {
			continue
		}
		fn := strings.TrimSpace(lines[i])
		i++

		loc = strings.TrimSpace(loc)
		if off := strings.LastIndex(loc, " +0x"); off != -1 {
			loc = loc[:off]
		}
		_, rel, ok := strings.Cut(loc, "/internal/")
		if !ok {
			continue
		}

		if p := strings.LastIndex(fn, "("); p > 0 {
			fn = fn[:p]
		}
		if p := strings.LastIndex(fn, "/"); p != -1 {
			fn = fn[p+1:]
		}
		frames = append(frames, fn+" internal/"+rel)
	}

	return frames
}

// Summary returns InternalFrames for logging, or the raw stack when no
// internal frame is present.
func Summary(stack []byte) any {
	if frames := InternalFrames(stack); len(frames) > 0 {
		return frames
	}
	return string(stack)
}
