package correct_test

import (
	"testing"

	"github.com/dharmapada/subcorrect/internal/config"
	"github.com/dharmapada/subcorrect/internal/correct"
	"github.com/dharmapada/subcorrect/internal/correct/asrpattern"
	"github.com/dharmapada/subcorrect/internal/correct/context"
	"github.com/dharmapada/subcorrect/internal/correct/fuzzy"
	"github.com/dharmapada/subcorrect/internal/correct/phrase"
	"github.com/dharmapada/subcorrect/internal/lexicon"
	"github.com/dharmapada/subcorrect/internal/subtitle"
)

func newSegment(index int, text string) subtitle.Segment {
	return subtitle.Segment{Index: index}.WithText(text)
}

func buildDriver(rows []lexicon.Row, compounds []phrase.CompoundEntry, mantras []phrase.Mantra, lid correct.LIDMap) *correct.Driver {
	bl := lexicon.DefaultBlocklist()
	store, _ := lexicon.Load(rows, nil, true, bl)
	fz := fuzzy.New(bl, 500)
	asr := asrpattern.New(bl)
	classifier := context.New(config.Default().ContextDetection, 500)
	pm := phrase.New(compounds, mantras, fz)

	var opts []correct.Option
	if lid != nil {
		opts = append(opts, correct.WithLID(lid))
	}
	return correct.New(store, bl, pm, classifier, fz, asr, config.Default(), opts...)
}

func hasPhase(records []correct.CorrectionRecord, phase string) bool {
	for _, r := range records {
		if r.Phase == phase {
			return true
		}
	}
	return false
}

func countPhase(records []correct.CorrectionRecord, phase string) int {
	n := 0
	for _, r := range records {
		if r.Phase == phase {
			n++
		}
	}
	return n
}

func TestProcessSegment_EnglishBypassLeavesOrdinarySentenceUnchanged(t *testing.T) {
	t.Parallel()

	d := buildDriver(nil, nil, nil, nil)
	seg := newSegment(1, "He   was treading carefully through the forest  at dusk.")

	out, records := d.ProcessSegment(seg)

	want := "He was treading carefully through the forest at dusk."
	if out.Text() != want {
		t.Errorf("Text() = %q, want %q", out.Text(), want)
	}
	if !hasPhase(records, "context_classify") {
		t.Errorf("records = %+v, want an english-bypass record", records)
	}
}

func TestProcessSegment_BlocklistProtectsHomophoneEvenWithCollidingLexiconEntry(t *testing.T) {
	t.Parallel()

	rows := []lexicon.Row{
		{OriginalTerm: "advaita", Variations: []string{"again"}, Transliteration: "Advaita", Confidence: 0.95, Category: lexicon.CategoryConcept},
	}
	d := buildDriver(rows, nil, nil, nil)
	seg := newSegment(1, "Karma again")

	out, _ := d.ProcessSegment(seg)

	if out.Text() != "Karma again" {
		t.Errorf("Text() = %q, want unchanged despite colliding lexicon entry", out.Text())
	}
}

func TestProcessSegment_CompoundPhraseLeavesRestOfSegmentForWordCorrection(t *testing.T) {
	t.Parallel()

	rows := []lexicon.Row{
		{OriginalTerm: "utpatti", Variations: []string{"utpati"}, Transliteration: "Utpatti", Confidence: 0.9, Category: lexicon.CategoryConcept},
		{OriginalTerm: "prakarana", Transliteration: "Prakaraṇa", Confidence: 0.9, Category: lexicon.CategoryConcept},
	}
	compounds := []phrase.CompoundEntry{
		{Canonical: "yoga vāsiṣṭha", Surface: "yoga vasistha"},
	}
	d := buildDriver(rows, compounds, nil, nil)
	seg := newSegment(1, "Yoga Vasistha, Utpati Prakarana")

	out, records := d.ProcessSegment(seg)

	want := "Yoga Vāsiṣṭha, Utpatti Prakaraṇa"
	if out.Text() != want {
		t.Errorf("Text() = %q, want %q", out.Text(), want)
	}
	if !hasPhase(records, "phrase") {
		t.Errorf("records = %+v, want a phrase-match record", records)
	}
	if countPhase(records, "lexicon") < 2 {
		t.Errorf("records = %+v, want two lexicon corrections alongside the phrase match", records)
	}
}

func TestProcessSegment_MantraWholeSegmentMatchIsExclusive(t *testing.T) {
	t.Parallel()

	d := buildDriver(nil, nil, phrase.DefaultMantras(), nil)
	corrupted := "aum pUna-madhah pUna-midam pUnat pUnam udacyate pUnasya pUnam adaya pUnam evavasisyate"
	seg := newSegment(1, corrupted)

	out, records := d.ProcessSegment(seg)

	want := "oṃ pūrṇam adaḥ pūrṇam idam pūrṇāt pūrṇam udacyate | pūrṇasya pūrṇam ādāya pūrṇam evāvaśiṣyate ||"
	if out.Text() != want {
		t.Errorf("Text() = %q, want canonical mantra text", out.Text())
	}
	if len(records) != 1 {
		t.Errorf("records = %+v, want exactly one record (mantra match is exclusive)", records)
	}
}

func TestProcessSegment_LIDEnglishOverrideBypassesClassification(t *testing.T) {
	t.Parallel()

	lid := correct.LIDMap{1: {Language: "en", Confidence: 0.9}}
	d := buildDriver(nil, nil, nil, lid)
	seg := newSegment(1, "Karma flows onward")

	out, records := d.ProcessSegment(seg)

	if out.Text() != "Karma flows onward" {
		t.Errorf("Text() = %q, want unchanged under LID english override", out.Text())
	}
	if !hasPhase(records, "lid_override") {
		t.Errorf("records = %+v, want a lid_override record", records)
	}
}

func TestProcessSegment_ASRPatternEngineFiresForSystematicSubstitution(t *testing.T) {
	t.Parallel()

	d := buildDriver(nil, nil, nil, nil)
	seg := newSegment(1, "Karma thakur devotion")

	out, records := d.ProcessSegment(seg)

	want := "Karma takur devotion"
	if out.Text() != want {
		t.Errorf("Text() = %q, want %q", out.Text(), want)
	}
	found := false
	for _, r := range records {
		if r.MatchType == correct.MatchPattern {
			found = true
		}
	}
	if !found {
		t.Errorf("records = %+v, want a MatchPattern record", records)
	}
}

func TestProcessSegment_FuzzyMatchFallsBackWhenNoLexiconOrPatternHit(t *testing.T) {
	t.Parallel()

	rows := []lexicon.Row{
		{OriginalTerm: "krishna", Transliteration: "Krishna", Confidence: 0.9, Category: lexicon.CategoryDeity},
	}
	d := buildDriver(rows, nil, nil, nil)
	seg := newSegment(1, "Karma krisna walks")

	out, records := d.ProcessSegment(seg)

	want := "Karma Krishna walks"
	if out.Text() != want {
		t.Errorf("Text() = %q, want %q", out.Text(), want)
	}
	found := false
	for _, r := range records {
		if r.MatchType == correct.MatchFuzzy {
			found = true
		}
	}
	if !found {
		t.Errorf("records = %+v, want a MatchFuzzy record", records)
	}
}

func TestProcessFile_PropagatesDegradedFlag(t *testing.T) {
	t.Parallel()

	bl := lexicon.DefaultBlocklist()
	store, _ := lexicon.Load(nil, nil, false, bl)
	fz := fuzzy.New(bl, 100)
	asr := asrpattern.New(bl)
	classifier := context.New(config.Default().ContextDetection, 100)
	pm := phrase.New(nil, nil, fz)
	d := correct.New(store, bl, pm, classifier, fz, asr, config.Default())

	result := d.ProcessFile([]subtitle.Segment{newSegment(1, "hello there")}, nil)
	if !result.Degraded {
		t.Errorf("ProcessFile: want Degraded=true when the tabular store failed to load")
	}
}

func TestProcessFile_CancelStopsEarlyWithPartialResult(t *testing.T) {
	t.Parallel()

	d := buildDriver(nil, nil, nil, nil)
	segments := []subtitle.Segment{
		newSegment(1, "hello there friend"),
		newSegment(2, "hello there again"),
		newSegment(3, "hello there once more"),
	}

	calls := 0
	cancel := func() bool {
		calls++
		return calls > 1
	}

	result := d.ProcessFile(segments, cancel)
	if !result.Cancelled {
		t.Errorf("ProcessFile: want Cancelled=true")
	}
	if len(result.Segments) != 1 {
		t.Errorf("len(Segments) = %d, want 1 (stopped after the first)", len(result.Segments))
	}
}
