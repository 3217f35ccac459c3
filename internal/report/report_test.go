package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/dharmapada/subcorrect/internal/config"
	"github.com/dharmapada/subcorrect/internal/correct"
	"github.com/dharmapada/subcorrect/internal/report"
	"github.com/dharmapada/subcorrect/internal/subtitle"
)

func seg(index int, text string) subtitle.Segment {
	return subtitle.Segment{Index: index}.WithText(text)
}

func TestBuild_CleanRunScoresHighWithNoDiagnostics(t *testing.T) {
	t.Parallel()

	result := correct.ProcessingResult{
		Segments: []subtitle.Segment{seg(1, "Karma flows onward"), seg(2, "Krishna smiled")},
		Corrections: []correct.CorrectionRecord{
			{SegmentID: 1, MatchType: correct.MatchBypass, Confidence: 1, Phase: "context_classify"},
			{SegmentID: 2, MatchType: correct.MatchFuzzy, Confidence: 0.95, Phase: "word_correct"},
		},
	}

	r := report.Build(result, config.Default().QA, report.PhaseTimings{}, time.Time{})

	if r.Segments != 2 || r.Corrections != 2 {
		t.Fatalf("Build: got Segments=%d Corrections=%d, want 2, 2", r.Segments, r.Corrections)
	}
	if len(r.Diagnostics) != 0 {
		t.Errorf("Build: want no diagnostics for a clean run, got %+v", r.Diagnostics)
	}
	if r.QualityScore < 90 {
		t.Errorf("QualityScore = %v, want a high score for an error-free, high-confidence run", r.QualityScore)
	}
}

func TestBuild_ErrorRecordDepressesQualityScoreAndIsFlagged(t *testing.T) {
	t.Parallel()

	result := correct.ProcessingResult{
		Segments: []subtitle.Segment{seg(1, "Karma flows onward")},
		Corrections: []correct.CorrectionRecord{
			{SegmentID: 1, MatchType: correct.MatchError, Phase: "word_correct", Message: "panic: index out of range"},
		},
	}

	r := report.Build(result, config.Default().QA, report.PhaseTimings{}, time.Time{})

	if r.ErrorCount != 1 {
		t.Fatalf("ErrorCount = %d, want 1", r.ErrorCount)
	}
	if len(r.Diagnostics) != 1 {
		t.Fatalf("Diagnostics = %+v, want exactly one flagged segment", r.Diagnostics)
	}
	diag := r.Diagnostics[0]
	if diag.SegmentID != 1 {
		t.Errorf("Diagnostics[0].SegmentID = %d, want 1", diag.SegmentID)
	}
	found := false
	for _, issue := range diag.Issues {
		if strings.HasPrefix(issue, "processing_error:") {
			found = true
		}
	}
	if !found {
		t.Errorf("Diagnostics[0].Issues = %v, want a processing_error entry", diag.Issues)
	}
}

func TestBuild_LowConfidenceSegmentIsFlaggedEvenWithoutAnIssue(t *testing.T) {
	t.Parallel()

	result := correct.ProcessingResult{
		Segments: []subtitle.Segment{seg(1, "Karma flows onward")},
		Corrections: []correct.CorrectionRecord{
			{SegmentID: 1, MatchType: correct.MatchFuzzy, Confidence: 0.5, Phase: "word_correct"},
		},
	}

	r := report.Build(result, config.Default().QA, report.PhaseTimings{}, time.Time{})

	if len(r.Diagnostics) != 1 {
		t.Fatalf("Diagnostics = %+v, want the low-confidence segment flagged", r.Diagnostics)
	}
	if r.Diagnostics[0].Confidence != 0.5 {
		t.Errorf("Diagnostics[0].Confidence = %v, want 0.5", r.Diagnostics[0].Confidence)
	}
}

func TestBuild_StrayBracketIsDetectedAsAnIssue(t *testing.T) {
	t.Parallel()

	result := correct.ProcessingResult{
		Segments: []subtitle.Segment{seg(1, "and then [inaudible speech continued")},
	}

	r := report.Build(result, config.Default().QA, report.PhaseTimings{}, time.Time{})

	if len(r.Diagnostics) != 1 {
		t.Fatalf("Diagnostics = %+v, want the stray-bracket segment flagged", r.Diagnostics)
	}
	found := false
	for _, issue := range r.Diagnostics[0].Issues {
		if issue == "stray_bracketed_text" {
			found = true
		}
	}
	if !found {
		t.Errorf("Diagnostics[0].Issues = %v, want stray_bracketed_text", r.Diagnostics[0].Issues)
	}
}

func TestBuild_DegradedAndCancelledPropagateFromProcessingResult(t *testing.T) {
	t.Parallel()

	result := correct.ProcessingResult{
		Segments:  []subtitle.Segment{seg(1, "hello")},
		Degraded:  true,
		Cancelled: true,
	}

	r := report.Build(result, config.Default().QA, report.PhaseTimings{}, time.Time{})

	if !r.Degraded || !r.Cancelled {
		t.Errorf("Build: want Degraded and Cancelled both propagated, got Degraded=%v Cancelled=%v", r.Degraded, r.Cancelled)
	}
}

func TestReport_SummaryMentionsDegradedAndCancelled(t *testing.T) {
	t.Parallel()

	r := report.Report{Segments: 3, Corrections: 2, QualityScore: 87.5, Degraded: true, Cancelled: true}
	summary := r.Summary()

	for _, want := range []string{"3 segments", "2 corrections", "87.5", "degraded", "cancelled"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() = %q, want it to contain %q", summary, want)
		}
	}
}

func TestReport_WriteJSONProducesValidIndentedJSON(t *testing.T) {
	t.Parallel()

	r := report.Report{Segments: 1, Corrections: 0, CountsByType: map[string]int{}}
	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"segments": 1`) {
		t.Errorf("WriteJSON output = %s, want indented field \"segments\": 1", buf.String())
	}
}
