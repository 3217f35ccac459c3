// Package correct implements the correction driver, component H of the
// correction pipeline (spec.md §4.H): the single-segment pipeline that
// sequences normalization, phrase/mantra matching, LID override, context
// classification, tokenization, and per-token correction, producing a new
// segment and an itemized record of every substitution.
//
// Grounded on the teacher's internal/transcript package: [Driver] plays the
// role of CorrectionPipeline, [CorrectionRecord] plays the role of
// Correction, and the ordered list of per-token proposers (lexicon view,
// ASR pattern engine, fuzzy matcher) generalizes the teacher's two-stage
// "phonetic then LLM" pipeline into the dynamic-polymorphism "ordered list
// of matchers" shape called for in spec.md §9.
package correct

import (
	"time"

	"github.com/dharmapada/subcorrect/internal/subtitle"
)

// MatchType tags how a correction record was produced (spec.md §3
// "Correction record").
type MatchType string

const (
	MatchExact           MatchType = "exact"
	MatchCaseInsensitive MatchType = "case_insensitive"
	MatchPhrase          MatchType = "phrase"
	MatchFuzzy           MatchType = "fuzzy"
	MatchPhonetic        MatchType = "phonetic"
	MatchPattern         MatchType = "pattern"
	MatchProperNoun      MatchType = "proper_noun"

	// MatchBypass tags a segment left unchanged by an english-bypass or
	// LID-preserved decision — not one of spec.md §3's seven match types, but
	// needed so the reporter can still account for every segment processed.
	MatchBypass MatchType = "bypass"

	// MatchError tags a correction record emitted when a step failed and
	// fell back to its input (spec.md §4.H "Failure semantics").
	MatchError MatchType = "error"
)

// CorrectionRecord is one word- or segment-level substitution (spec.md §3).
type CorrectionRecord struct {
	SegmentID  int
	Original   string
	Corrected  string
	MatchType  MatchType
	Confidence float64
	Elapsed    time.Duration

	// Phase names the driver step that produced this record, used by
	// MatchError records and by the quality reporter's phase timings.
	Phase string

	// Message carries failure context for MatchError records (spec.md §7
	// "enough context for a human to reproduce a failure").
	Message string
}

// ProcessingResult is the outcome of processing every segment in a file
// (spec.md §5 process_file contract).
type ProcessingResult struct {
	Segments    []subtitle.Segment
	Corrections []CorrectionRecord

	// Degraded is true when the lexicon store loaded in overlay-only mode.
	Degraded bool

	// Cancelled is true when processing stopped early due to a caller
	// cancellation flag (spec.md §5).
	Cancelled bool
}
