package emit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File accumulates one generated output unit in memory and writes it to disk
// in a single call. A render that fails halfway never leaves a truncated
// file behind; a failed write aborts the whole run upstream.
type File struct {
	path  string
	guard string
	buf   strings.Builder
}

// NewFile starts an empty buffer destined for path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the destination path.
func (f *File) Path() string { return f.path }

// Builder exposes the underlying buffer for the layout engines.
func (f *File) Builder() *strings.Builder { return &f.buf }

func (f *File) Printf(format string, args ...any) {
	fmt.Fprintf(&f.buf, format, args...)
}

func (f *File) WriteString(s string) {
	f.buf.WriteString(s)
}

// OpenGuard writes the include guard prologue and remembers the guard name
// for the matching close comment.
func (f *File) OpenGuard(guard string) {
	f.guard = guard
	fmt.Fprintf(&f.buf, "#ifndef %s\n#define %s\n\n", guard, guard)
}

// CloseGuard terminates the include guard with the matching comment.
func (f *File) CloseGuard() {
	if f.guard != "" {
		fmt.Fprintf(&f.buf, "#endif /* %s */\n", f.guard)
	}
}

// Bytes returns the buffered content.
func (f *File) Bytes() []byte { return []byte(f.buf.String()) }

// Write creates the parent directory and writes the buffered content.
func (f *File) Write() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(f.path, f.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(f.path), err)
	}
	return nil
}
