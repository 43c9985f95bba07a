// Package debug has helpers producing human readable diagnostic dumps.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter builds indented text tree, two spaces per level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes label with quoted value, empty value is left as is.
func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Elided writes label with value cut to limit bytes, total length is noted.
// Used for long opaque payloads, like inline images.
func (tw TreeWriter) Elided(depth int, label, value string, limit int) {
	if len(value) <= limit {
		tw.TextBlock(depth, label, value)
		return
	}
	tw.indent(depth)
	fmt.Fprintf(tw.w, "%s: %s... (%d bytes)\n", label, encodeText(value[:limit]), len(value))
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
