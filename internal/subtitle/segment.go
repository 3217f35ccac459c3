// Package subtitle implements the numbered-block subtitle format described
// in spec.md §6 (the ".srt" format): an index line, a timestamp line, one or
// more text lines, and a blank line separating records.
//
// This is an external collaborator per spec.md §1 ("the subtitle-file
// reader/writer"), not part of the correction core, but is implemented here
// so the module is runnable end to end.
package subtitle

import "time"

// Segment is one numbered subtitle record. It is immutable after parsing;
// [Segment.WithText] returns a copy carrying corrected text, matching the
// invariant in spec.md §3 ("Immutable after parsing; the driver produces a
// new segment with the corrected text").
type Segment struct {
	// Index is the segment's 1-based sequence number as it appeared in the
	// source file.
	Index int

	// Start and End are the opening/closing timestamps at millisecond
	// precision.
	Start, End time.Duration

	// Lines holds the segment's text, split exactly as it appeared in the
	// input (newlines preserved, §6 "Output preserves ... line breaks
	// within text exactly").
	Lines []string
}

// Text joins Lines with newlines, the form every correction-pipeline
// component operates on.
func (s Segment) Text() string {
	out := s.Lines[0]
	for _, l := range s.Lines[1:] {
		out += "\n" + l
	}
	return out
}

// WithText returns a copy of s whose Lines are replaced by splitting text on
// newlines. Index, Start, and End are carried over unchanged.
func (s Segment) WithText(text string) Segment {
	out := s
	out.Lines = splitLines(text)
	return out
}

func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	lines = append(lines, text[start:])
	return lines
}
