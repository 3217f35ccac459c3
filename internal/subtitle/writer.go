package subtitle

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Write serializes segments back to the numbered-block format, preserving
// indices, timestamps, and internal line breaks exactly (spec.md §6). Only
// text content may have changed relative to the segments [Read] produced.
func Write(w io.Writer, segments []Segment) error {
	for i, seg := range segments {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("subtitle: write: %w", err)
			}
		}
		if _, err := fmt.Fprintf(w, "%d\n%s%s%s\n%s\n",
			seg.Index,
			formatTimestamp(seg.Start), timestampArrow, formatTimestamp(seg.End),
			strings.Join(seg.Lines, "\n"),
		); err != nil {
			return fmt.Errorf("subtitle: write: %w", err)
		}
	}
	return nil
}

// formatTimestamp renders d as "HH:MM:SS,mmm", zero-padded.
func formatTimestamp(d time.Duration) string {
	ms := d / time.Millisecond
	totalSeconds := ms / 1000
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	frac := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, frac)
}
