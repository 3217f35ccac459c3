package correct

import (
	"fmt"
	"strings"

	"github.com/dharmapada/subcorrect/internal/config"
	"github.com/dharmapada/subcorrect/internal/correct/asrpattern"
	"github.com/dharmapada/subcorrect/internal/correct/capitalize"
	"github.com/dharmapada/subcorrect/internal/correct/context"
	"github.com/dharmapada/subcorrect/internal/correct/fuzzy"
	"github.com/dharmapada/subcorrect/internal/correct/phrase"
	"github.com/dharmapada/subcorrect/internal/correct/script"
	"github.com/dharmapada/subcorrect/internal/lexicon"
	"github.com/dharmapada/subcorrect/internal/subtitle"
)

// Option is a functional option for configuring a [Driver], matching the
// teacher's PipelineOption pattern.
type Option func(*Driver)

// WithLID attaches LID metadata; its presence enables LID-aware routing
// (spec.md §4.H step 3, §6).
func WithLID(m LIDMap) Option {
	return func(d *Driver) { d.lid = m }
}

// Driver is the single-segment correction pipeline of spec.md §4.H. It
// holds the ordered set of per-token proposers (lexicon view, ASR pattern
// engine, fuzzy matcher) called for by the dynamic-polymorphism design note
// (spec.md §9), plus the phrase/mantra matcher and context classifier that
// gate which of them run.
type Driver struct {
	lex        *lexicon.Store
	blocklist  *lexicon.Blocklist
	phrase     *phrase.Matcher
	classifier *context.Classifier
	fz         *fuzzy.Matcher
	asr        *asrpattern.Engine
	cfg        *config.Config
	lid        LIDMap
}

// New constructs a Driver from its component collaborators.
func New(
	lex *lexicon.Store,
	bl *lexicon.Blocklist,
	phraseMatcher *phrase.Matcher,
	classifier *context.Classifier,
	fz *fuzzy.Matcher,
	asr *asrpattern.Engine,
	cfg *config.Config,
	opts ...Option,
) *Driver {
	d := &Driver{
		lex:        lex,
		blocklist:  bl,
		phrase:     phraseMatcher,
		classifier: classifier,
		fz:         fz,
		asr:        asr,
		cfg:        cfg,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// mode carries the per-segment confidence adjustments derived from LID
// override (spec.md §4.H step 3). The context classifier's own thresholds
// are left untouched — its memo cache is keyed purely by text, so varying
// its configuration per call would make cached results incorrect for other
// segments sharing the same text. Only the per-token acceptance floor
// (step 6) is adjusted.
type mode struct {
	aggressive       bool
	conservative     bool
	confidenceOffset float64
}

// ProcessSegment runs the full single-segment pipeline of spec.md §4.H.
// No error escapes: any step that panics is caught and the segment is
// returned unchanged with a MatchError record, per the "failure semantics"
// requirement that the driver always produces a segment.
func (d *Driver) ProcessSegment(seg subtitle.Segment) (out subtitle.Segment, records []CorrectionRecord) {
	out = seg
	defer func() {
		if r := recover(); r != nil {
			records = []CorrectionRecord{{
				SegmentID: seg.Index,
				MatchType: MatchError,
				Phase:     "panic",
				Message:   fmt.Sprintf("%v", r),
			}}
			out = seg
		}
	}()

	text := script.Normalize(seg.Text())

	// Step 2: phrase/mantra attempt. A mantra match is whole-segment and
	// exclusive; a compound-title match only replaces its own span and
	// leaves the rest of the segment free for per-word correction (spec.md
	// §8 scenario 3).
	if canonical, ref, matched := d.phrase.MatchMantra(text); matched {
		records = append(records, CorrectionRecord{
			SegmentID: seg.Index, Original: text, Corrected: canonical,
			MatchType: MatchPhrase, Confidence: 1, Phase: "phrase", Message: ref,
		})
		return seg.WithText(script.CollapseWhitespace(canonical)), records
	}

	protected := map[string]struct{}{}
	if newText, words, refs := d.phrase.MatchCompounds(text); len(refs) > 0 {
		records = append(records, CorrectionRecord{
			SegmentID: seg.Index, Original: text, Corrected: newText,
			MatchType: MatchPhrase, Confidence: 1, Phase: "phrase", Message: "compound:" + strings.Join(refs, ","),
		})
		text = newText
		for _, w := range words {
			protected[w] = struct{}{}
		}
	}

	// Step 3: LID override.
	m := mode{}
	if d.lid != nil {
		if rec, ok := d.lid[seg.Index]; ok {
			switch {
			case rec.Language == "en" && rec.Confidence > 0.3:
				records = append(records, CorrectionRecord{
					SegmentID: seg.Index, MatchType: MatchBypass, Confidence: rec.Confidence,
					Phase: "lid_override", Message: "english-preserved",
				})
				return seg.WithText(text), records

			case rec.Language == "sa" && rec.Confidence > 0.3:
				m.aggressive = true
				m.confidenceOffset = -0.15
				if canonical, ref, matched := d.phrase.MatchMantraAggressive(text); matched {
					records = append(records, CorrectionRecord{
						SegmentID: seg.Index, Original: text, Corrected: canonical,
						MatchType: MatchPhrase, Confidence: rec.Confidence, Phase: "lid_aggressive_phrase", Message: ref,
					})
					return seg.WithText(script.CollapseWhitespace(canonical)), records
				}
				if isAllUpper(text) {
					text = capitalize.TitleCase(strings.ToLower(text))
				}

			case rec.Language == "hi" && rec.Confidence > 0.25:
				m.conservative = true
				m.confidenceOffset = 0.1

			case rec.Language == "mixed":
				m.conservative = true
				m.confidenceOffset = 0.1
			}
		}
	}

	// Step 4: context classify.
	classification := d.classifier.Classify(text)
	if classification.Category() == context.CategoryEnglish && !m.aggressive {
		records = append(records, CorrectionRecord{
			SegmentID: seg.Index, MatchType: MatchBypass, Confidence: classification.Confidence(),
			Phase: "context_classify", Message: "english-bypass",
		})
		return seg.WithText(text), records
	}

	// Steps 5-6: tokenize and per-token correction, line by line so that
	// line breaks survive (spec.md §4.H step 7 "preserve line breaks").
	lines := strings.Split(text, "\n")
	correctedLines := make([]string, len(lines))
	for i, line := range lines {
		var lineRecords []CorrectionRecord
		correctedLines[i], lineRecords = d.correctLine(seg.Index, line, classification, m, protected)
		records = append(records, lineRecords...)
	}
	corrected := strings.Join(correctedLines, "\n")

	// Step 8: optional prayer-mode smart capitalization.
	if inv, ok := classification.(context.Invocation); ok && inv.Mode == "prayer" {
		corrected = capitalize.SentenceInitial(corrected)
	}

	return seg.WithText(corrected), records
}

// correctLine applies step 6's per-token correction loop to a single line,
// preserving its internal spacing up to the single-space collapse of step
// 7.
func (d *Driver) correctLine(segmentID int, line string, classification context.Result, m mode, protected map[string]struct{}) (string, []CorrectionRecord) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return line, nil
	}

	var records []CorrectionRecord
	out := make([]string, len(fields))
	for i, tok := range fields {
		corrected, rec := d.correctToken(segmentID, tok, classification, m, protected)
		out[i] = corrected
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return script.CollapseWhitespace(strings.Join(out, " ")), records
}

// correctToken implements spec.md §4.H step 6 for a single token.
func (d *Driver) correctToken(segmentID int, token string, classification context.Result, m mode, protected map[string]struct{}) (string, *CorrectionRecord) {
	prefix, core, suffix := splitToken(token)
	if core == "" {
		return token, nil
	}

	// 6.a: blocklist short-circuit.
	if d.blocklist.Contains(core) {
		return token, nil
	}

	// Phrase-replacement atomicity: a word just produced by the
	// compound-title matcher is never re-touched by a per-word rule.
	if _, ok := protected[core]; ok {
		return token, nil
	}

	lowerCore := strings.ToLower(core)

	// 6.b: english-context lookup.
	if classification.Category() == context.CategoryEnglish {
		corrected, rec := d.correctInEnglishContext(segmentID, core, lowerCore)
		if rec == nil {
			return token, nil
		}
		return prefix + corrected + suffix, rec
	}

	// 6.c: corrections-view lookup, then ASR pattern engine, then fuzzy match.
	corrected, rec := d.correctGeneral(segmentID, core, lowerCore, m)
	if rec == nil {
		return token, nil
	}
	return prefix + corrected + suffix, rec
}

// correctInEnglishContext implements spec.md §4.H step 6.b.
func (d *Driver) correctInEnglishContext(segmentID int, core, lowerCore string) (string, *CorrectionRecord) {
	entry, ok := d.lex.ProperNounsView().Lookup(lowerCore)
	if ok {
		return d.emitLexiconMatch(segmentID, core, entry, MatchProperNoun)
	}

	ecp := d.cfg.Processing.EnglishContextProcessing
	if !ecp.EnableLexiconCorrections || ecp.ProperNounsOnly {
		return core, nil
	}

	entry, ok = d.lex.CorrectionsView().Lookup(lowerCore)
	if !ok {
		return core, nil
	}
	floor := d.cfg.Processing.FuzzyMatching.MinConfidence + ecp.ThresholdIncrease
	if floor > ecp.MaxThreshold {
		floor = ecp.MaxThreshold
	}
	if entry.Confidence < floor {
		return core, nil
	}
	return d.emitLexiconMatch(segmentID, core, entry, MatchProperNoun)
}

// correctGeneral implements spec.md §4.H step 6.c.
func (d *Driver) correctGeneral(segmentID int, core, lowerCore string, m mode) (string, *CorrectionRecord) {
	if entry, ok := d.lex.CorrectionsView().Lookup(lowerCore); ok {
		corrected := capitalize.Preserve(core, entry.Canonical, entry.PreserveCapitalization)
		if corrected == core {
			return core, nil // already canonical, nothing to record
		}
		matchType := MatchCaseInsensitive
		if core == lowerCore {
			matchType = MatchExact // original carried no case to fold
		}
		return corrected, &CorrectionRecord{
			SegmentID: segmentID, Original: core, Corrected: corrected,
			MatchType: matchType, Confidence: entry.Confidence, Phase: "lexicon",
		}
	}

	if prop, ok := d.asr.Propose(core); ok {
		corrected := capitalize.Preserve(core, prop.Correction, false)
		return corrected, &CorrectionRecord{
			SegmentID: segmentID, Original: core, Corrected: corrected,
			MatchType: MatchPattern, Confidence: prop.Confidence, Phase: "asr_pattern",
		}
	}

	minConfidence := clamp01(d.cfg.Processing.FuzzyMatching.MinConfidence + m.confidenceOffset)
	prefixes := fuzzy.PrefixCandidates([]rune(lowerCore)[0])
	candidates := d.lex.CorrectionsView().CandidatesByPrefixes(prefixes, 3, fuzzy.MaxCandidatesPerToken)
	if match, ok := d.fz.BestMatch(core, candidates, d.cfg.Processing.FuzzyMatching.MaxEditDistance, minConfidence); ok {
		corrected := capitalize.Preserve(core, match.Candidate, false)
		return corrected, &CorrectionRecord{
			SegmentID: segmentID, Original: core, Corrected: corrected,
			MatchType: MatchFuzzy, Confidence: match.Confidence, Phase: "fuzzy",
		}
	}

	return core, nil
}

func (d *Driver) emitLexiconMatch(segmentID int, core string, entry *lexicon.Entry, mt MatchType) (string, *CorrectionRecord) {
	corrected := capitalize.Preserve(core, entry.Canonical, entry.PreserveCapitalization)
	return corrected, &CorrectionRecord{
		SegmentID: segmentID, Original: core, Corrected: corrected,
		MatchType: mt, Confidence: entry.Confidence, Phase: "lexicon",
	}
}

// splitToken splits a whitespace-delimited field into a leading-punctuation
// prefix, a core word, and a trailing-punctuation suffix (spec.md §4.H step
// 5). Contractions such as "Krishna's" fall out naturally: the apostrophe
// is not a word rune, so it and everything after it become the suffix.
func splitToken(field string) (prefix, core, suffix string) {
	runes := []rune(field)
	i := 0
	for i < len(runes) && !script.IsWordRune(runes[i]) {
		i++
	}
	prefix = string(runes[:i])

	j := i
	for j < len(runes) && script.IsWordRune(runes[j]) {
		j++
	}
	core = string(runes[i:j])
	suffix = string(runes[j:])
	return prefix, core, suffix
}

func isAllUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if !script.IsWordRune(r) {
			continue
		}
		letters++
		if r != toUpperRune(r) {
			return false
		}
	}
	return letters > 0
}

func toUpperRune(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ProcessFile runs [Driver.ProcessSegment] over every segment in order,
// checking cancel between segments (spec.md §5). On cancellation it flushes
// progress made so far and returns a partial, Cancelled result. Segment
// order in the output matches input order; only text content changes.
func (d *Driver) ProcessFile(segments []subtitle.Segment, cancel func() bool) ProcessingResult {
	result := ProcessingResult{
		Segments: make([]subtitle.Segment, 0, len(segments)),
		Degraded: d.lex.Degraded,
	}
	for _, seg := range segments {
		if cancel != nil && cancel() {
			result.Cancelled = true
			break
		}
		corrected, records := d.ProcessSegment(seg)
		result.Segments = append(result.Segments, corrected)
		result.Corrections = append(result.Corrections, records...)
	}
	return result
}
