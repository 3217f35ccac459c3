// Package report implements the metrics & quality report, component I of
// the correction pipeline (spec.md §4.I): per-segment and per-file
// aggregation over a processed file's correction records, an issue
// detector, and a weighted quality score.
//
// Adapted from the teacher's internal/observe package (a struct of counters
// built by a single constructor and updated as the pipeline runs) and
// internal/health (a fixed JSON result shape — a "status" field plus a map
// of named details — rendered by a small writeJSON helper). Neither
// package's own dependency survives here: observe's OpenTelemetry
// instruments have no live process to report into (this is a batch CLI,
// not a server with a scrape endpoint) and health's net/http handlers have
// no HTTP server to attach to. What is kept is the shape: a plain struct of
// rollups assembled by one function, rendered with encoding/json the same
// way health.writeJSON does.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dharmapada/subcorrect/internal/config"
	"github.com/dharmapada/subcorrect/internal/correct"
)

// maxOrdinaryTokenRunes bounds how long a whitespace-delimited token may be
// before the issue detector flags it as possible ASR noise (spec.md §4.I
// "unusually long tokens"). Ordinary IAST words, even compounds, rarely
// exceed this; a long run of characters with no space is far more likely a
// garbled ASR artifact than a real word.
const maxOrdinaryTokenRunes = 24

// PhaseTimings records wall-clock duration spent in each top-level stage of
// a single file's run (spec.md §4.I "phase timings (parse, correct,
// write)").
type PhaseTimings struct {
	Parse   time.Duration `json:"parse_ms"`
	Correct time.Duration `json:"correct_ms"`
	Write   time.Duration `json:"write_ms"`
}

// MarshalJSON renders each phase duration as whole milliseconds, the unit
// named by its JSON field.
func (p PhaseTimings) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Parse   int64 `json:"parse_ms"`
		Correct int64 `json:"correct_ms"`
		Write   int64 `json:"write_ms"`
	}{p.Parse.Milliseconds(), p.Correct.Milliseconds(), p.Write.Milliseconds()})
}

// SegmentDiagnostic is the per-segment detail emitted for any segment whose
// overall confidence falls below the configured high-confidence threshold
// or that carries a detected issue (spec.md §4.I).
type SegmentDiagnostic struct {
	SegmentID  int      `json:"segment_id"`
	Confidence float64  `json:"confidence"`
	MatchTypes []string `json:"match_types,omitempty"`
	Issues     []string `json:"issues,omitempty"`
}

// Report is the structured quality report of spec.md §4.I.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`

	Segments    int `json:"segments"`
	Corrections int `json:"corrections"`

	CountsByType map[string]int `json:"counts_by_type"`

	MeanConfidence   float64 `json:"mean_confidence"`
	MedianConfidence float64 `json:"median_confidence"`

	ErrorCount int  `json:"error_count"`
	Degraded   bool `json:"degraded"`
	Cancelled  bool `json:"cancelled"`

	QualityScore float64 `json:"quality_score"`

	Timings PhaseTimings `json:"timings"`

	Diagnostics []SegmentDiagnostic `json:"diagnostics,omitempty"`
}

// Build aggregates result's correction records into a Report, applying the
// issue detector and the weighted quality-score formula of spec.md §4.I.
// generatedAt is passed in rather than taken from time.Now so that Build
// itself stays a pure function of its inputs.
func Build(result correct.ProcessingResult, qa config.QAConfig, timings PhaseTimings, generatedAt time.Time) Report {
	bySegment := groupBySegment(result.Corrections)

	r := Report{
		GeneratedAt:  generatedAt,
		Segments:     len(result.Segments),
		Corrections:  len(result.Corrections),
		CountsByType: map[string]int{},
		Degraded:     result.Degraded,
		Cancelled:    result.Cancelled,
		Timings:      timings,
	}

	var confidences []float64
	for _, rec := range result.Corrections {
		r.CountsByType[string(rec.MatchType)]++
		if rec.MatchType == correct.MatchError {
			r.ErrorCount++
			continue
		}
		confidences = append(confidences, rec.Confidence)
	}

	r.MeanConfidence = mean(confidences)
	r.MedianConfidence = median(confidences)
	r.QualityScore = qualityScore(confidences, r.ErrorCount, len(result.Corrections), len(result.Segments))

	for _, seg := range result.Segments {
		if diag, ok := diagnose(seg.Index, bySegment[seg.Index], seg.Text(), qa); ok {
			r.Diagnostics = append(r.Diagnostics, diag)
		}
	}
	sort.Slice(r.Diagnostics, func(i, j int) bool {
		return r.Diagnostics[i].SegmentID < r.Diagnostics[j].SegmentID
	})

	return r
}

func groupBySegment(records []correct.CorrectionRecord) map[int][]correct.CorrectionRecord {
	bySegment := make(map[int][]correct.CorrectionRecord)
	for _, rec := range records {
		bySegment[rec.SegmentID] = append(bySegment[rec.SegmentID], rec)
	}
	return bySegment
}

// diagnose applies the issue detector of spec.md §4.I to one segment,
// reporting it when its overall confidence falls below the configured
// high-confidence threshold or it carries at least one detected issue.
func diagnose(segmentID int, records []correct.CorrectionRecord, text string, qa config.QAConfig) (SegmentDiagnostic, bool) {
	confidence := 1.0
	var confidences []float64
	var matchTypes []string
	var issues []string

	for _, rec := range records {
		matchTypes = append(matchTypes, string(rec.MatchType))
		if rec.MatchType == correct.MatchError {
			issues = append(issues, "processing_error: "+rec.Message)
			continue
		}
		confidences = append(confidences, rec.Confidence)
		if rec.MatchType == correct.MatchPattern && rec.Confidence < qa.Thresholds.MediumConfidence {
			issues = append(issues, "pattern_level_uncertainty: "+rec.Original)
		}
	}
	if len(confidences) > 0 {
		confidence = mean(confidences)
	}

	for _, tok := range strings.Fields(text) {
		if utf8.RuneCountInString(tok) > maxOrdinaryTokenRunes {
			issues = append(issues, "unusually_long_token: "+tok)
		}
	}
	if strings.ContainsAny(text, "[(") && hasStrayBracket(text) {
		issues = append(issues, "stray_bracketed_text")
	}

	diag := SegmentDiagnostic{
		SegmentID:  segmentID,
		Confidence: confidence,
		MatchTypes: matchTypes,
		Issues:     issues,
	}
	return diag, confidence < qa.Thresholds.HighConfidence || len(issues) > 0
}

// hasStrayBracket reports whether text contains an unmatched '[' or '(' —
// the shape of a truncated ASR noise marker like "[inaudible" surviving
// into the output.
func hasStrayBracket(text string) bool {
	depthSquare, depthParen := 0, 0
	for _, r := range text {
		switch r {
		case '[':
			depthSquare++
		case ']':
			depthSquare--
		case '(':
			depthParen++
		case ')':
			depthParen--
		}
	}
	return depthSquare != 0 || depthParen != 0
}

// qualityScore implements spec.md §4.I's weighted combination: confidence
// mean (30%), success rate (40%), error penalty (20%), correction coverage
// (10%); clamped to [0, 100].
//
// successRate and errorPenalty are both derived from the same error count
// but over different denominators so the two terms are not redundant:
// successRate measures the fraction of all correction attempts that did not
// fail, while errorPenalty measures how many segments were touched by at
// least one failure. correctionCoverage rewards a run that actually found
// and fixed material, capped at 1 so a file needing many corrections per
// segment does not score higher than one needing a handful.
func qualityScore(confidences []float64, errorCount, totalCorrections, totalSegments int) float64 {
	confidenceMean := mean(confidences)

	successRate := 1.0
	if totalCorrections > 0 {
		successRate = float64(totalCorrections-errorCount) / float64(totalCorrections)
	}

	errorPenalty := 1.0
	if totalSegments > 0 {
		errorPenalty = 1 - float64(errorCount)/float64(totalSegments)
	}

	correctionCoverage := 0.0
	if totalSegments > 0 {
		correctionCoverage = float64(totalCorrections) / float64(totalSegments)
		if correctionCoverage > 1 {
			correctionCoverage = 1
		}
	}

	score := 0.3*confidenceMean + 0.4*successRate + 0.2*errorPenalty + 0.1*correctionCoverage
	return clamp(score*100, 0, 100)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Summary renders the short human summary emitted to stdout when no
// structured report path is configured (spec.md §4.I "a short human
// summary to stdout").
func (r Report) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "subcorrect: %d segments, %d corrections, quality score %.1f/100", r.Segments, r.Corrections, r.QualityScore)
	if r.Degraded {
		sb.WriteString(" (degraded: lexicon store unavailable)")
	}
	if r.Cancelled {
		sb.WriteString(" (cancelled early)")
	}
	if n := len(r.Diagnostics); n > 0 {
		fmt.Fprintf(&sb, ", %d segment(s) flagged for review", n)
	}
	return sb.String()
}

// WriteJSON writes the structured report to w, matching the
// encoding/json-over-io.Writer shape of the teacher's health.writeJSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
