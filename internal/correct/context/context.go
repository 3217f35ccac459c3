// Package context implements the context classifier, component E of the
// correction pipeline (spec.md §4.E): a layered decision over a segment's
// text, memoized by a hash of the text.
//
// Grounded on the teacher's design-notes guidance (spec.md §9) to model the
// classifier's output as a tagged union rather than a struct with optional
// fields: [Result] is an interface, and each of the five context categories
// is its own concrete type, mirroring how the teacher's transcript package
// separates Correction from CorrectedTranscript rather than collapsing both
// into one do-everything struct.
package context

import (
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"

	"github.com/dharmapada/subcorrect/internal/cache"
	"github.com/dharmapada/subcorrect/internal/config"
)

// Category names one of the five context tags (spec.md §3, §4.E).
type Category string

const (
	CategoryEnglish           Category = "english"
	CategorySanskrit          Category = "sanskrit"
	CategoryMixed             Category = "mixed"
	CategoryInvocation        Category = "invocation"
	CategoryCorruptedSanskrit Category = "corrupted_sanskrit"
)

// Span marks a sub-range of a mixed-content segment tagged with a single
// category (spec.md §3 "optional segment boundaries").
type Span struct {
	StartToken int
	EndToken   int
	Tag        Category
}

// Result is the sum type every classification returns. Each concrete type
// below carries only the auxiliary data relevant to its category.
type Result interface {
	Category() Category
	Confidence() float64
	Markers() []string
}

type base struct {
	confidence float64
	markers    []string
}

func (b base) Confidence() float64 { return b.confidence }
func (b base) Markers() []string   { return b.markers }

// English is emitted by the pure-English gate or mixed-content dominance.
type English struct{ base }

func (English) Category() Category { return CategoryEnglish }

// Sanskrit is emitted by the whitelist override, the pure-Sanskrit gate, the
// single-word shortcut, or mixed-content dominance.
type Sanskrit struct{ base }

func (Sanskrit) Category() Category { return CategorySanskrit }

// Mixed carries per-span tagging when neither language dominates.
type Mixed struct {
	base
	Spans []Span
}

func (Mixed) Category() Category { return CategoryMixed }

// Invocation is emitted for prayer/invocation and scripture-commentary
// shapes; Mode distinguishes them ("prayer" or "commentary") — the
// processing-mode hint the design notes call for.
type Invocation struct {
	base
	Mode string
}

func (Invocation) Category() Category { return CategoryInvocation }

// CorruptedSanskrit is emitted when text resembles a well-known verse
// opening in mangled form.
type CorruptedSanskrit struct{ base }

func (CorruptedSanskrit) Category() Category { return CategoryCorruptedSanskrit }

var (
	invocationPattern = regexp.MustCompile(`(?i)\bom\b.{0,40}\bnamah\b`)
	commentaryPattern = regexp.MustCompile(`(?i)\bchapter\s+\d+\s+entitled\b`)
	modalPattern      = regexp.MustCompile(`(?i)\b(was|were|is|are|will|would|should|could|can|may|might|must)\b`)
	progressivePattern = regexp.MustCompile(`(?i)\w+ing\b`)
	pastPattern        = regexp.MustCompile(`(?i)\w+ed\b`)
	pronounModalPattern = regexp.MustCompile(`(?i)\b(he|she|it|they|we|you|i)\s+(was|were|is|are|will|would|can|could|should)\b`)
	sanskritSuffixPattern = regexp.MustCompile(`(?i)\w+(ah|am|asya|anam|aya|ena|abhih|esu)\b`)
)

// corruptedVerseOpenings are well-known fragments that, even heavily
// mangled, should route to [CorruptedSanskrit] rather than plain fuzzy
// matching (spec.md §4.E layer 2b).
var corruptedVerseOpenings = []string{
	"purna",
	"pUrna",
	"auṁ",
	"oṃ pUrna",
}

// Classifier evaluates the layered decision of spec.md §4.E, memoizing by a
// hash of the input text.
type Classifier struct {
	cfg  config.ContextDetectionConfig
	memo *cache.LRU[uint64, Result]
}

// New returns a Classifier configured by cfg, with a memo bounded to
// maxEntries results.
func New(cfg config.ContextDetectionConfig, maxEntries int) *Classifier {
	return &Classifier{cfg: cfg, memo: cache.New[uint64, Result](maxEntries, 0, nil)}
}

func textHash(text string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	return h.Sum64()
}

// Classify returns the context result for text, evaluating layers 1–6 of
// spec.md §4.E in order and memoizing the result.
func (c *Classifier) Classify(text string) Result {
	key := textHash(text)
	if cached, ok := c.memo.Get(key); ok {
		return cached
	}
	result := c.classify(text)
	c.memo.Put(key, result)
	return result
}

func (c *Classifier) classify(text string) Result {
	if r, ok := c.whitelistOverride(text); ok {
		return r
	}
	if r, ok := c.specializedContent(text); ok {
		return r
	}
	if r, ok := c.pureEnglishGate(text); ok {
		return r
	}
	if r, ok := c.pureSanskritGate(text); ok {
		return r
	}
	if r, ok := c.singleWordShortcut(text); ok {
		return r
	}
	return c.mixedContentAnalysis(text)
}

// whitelistOverride implements layer 1.
func (c *Classifier) whitelistOverride(text string) (Result, bool) {
	lower := strings.ToLower(text)
	var trigger string
	for _, term := range c.cfg.Markers.SanskritPriorityTerms {
		if containsWord(lower, strings.ToLower(term)) {
			trigger = term
			break
		}
	}
	if trigger == "" {
		return nil, false
	}

	if c.strongCounterEvidence(lower) {
		return nil, false
	}

	return Sanskrit{base{confidence: c.cfg.Thresholds.WhitelistOverride, markers: []string{"whitelist:" + trigger}}}, true
}

// strongCounterEvidence implements the whitelist-override escape hatch:
// low Sanskrit ratio AND many English function words AND an explicit
// English commentary pattern AND no verse/prayer indicator.
func (c *Classifier) strongCounterEvidence(lower string) bool {
	ratio := sanskritCharRatio(lower)
	if ratio >= 0.15 {
		return false
	}
	if countFunctionWords(lower, c.cfg.Markers.EnglishFunctionWords) < c.cfg.Thresholds.EnglishMarkersRequired {
		return false
	}
	if !commentaryPattern.MatchString(lower) {
		return false
	}
	if invocationPattern.MatchString(lower) {
		return false
	}
	return true
}

// specializedContent implements layer 2.
func (c *Classifier) specializedContent(text string) (Result, bool) {
	lower := strings.ToLower(text)

	if invocationPattern.MatchString(lower) {
		return Invocation{base: base{confidence: 0.85, markers: []string{"invocation_shape"}}, Mode: "prayer"}, true
	}
	if commentaryPattern.MatchString(lower) {
		return Invocation{base: base{confidence: 0.8, markers: []string{"commentary_shape"}}, Mode: "commentary"}, true
	}
	for _, opening := range corruptedVerseOpenings {
		if strings.Contains(lower, strings.ToLower(opening)) {
			return CorruptedSanskrit{base{confidence: 0.75, markers: []string{"verse_opening:" + opening}}}, true
		}
	}
	return nil, false
}

// pureEnglishGate implements layer 3.
func (c *Classifier) pureEnglishGate(text string) (Result, bool) {
	var score float64
	var markers []string

	if isPureASCII(text) {
		score += 0.35
		markers = append(markers, "pure_ascii")
	}

	fw := countFunctionWords(strings.ToLower(text), c.cfg.Markers.EnglishFunctionWords)
	if fw >= c.cfg.Thresholds.EnglishMarkersRequired {
		score += 0.25
		markers = append(markers, "function_words:"+strconv.Itoa(fw))
	}
	if modalPattern.MatchString(text) {
		score += 0.15
		markers = append(markers, "modal")
	}
	if progressivePattern.MatchString(text) {
		score += 0.1
		markers = append(markers, "progressive")
	}
	if pastPattern.MatchString(text) {
		score += 0.1
		markers = append(markers, "past_tense")
	}
	if pronounModalPattern.MatchString(text) {
		score += 0.15
		markers = append(markers, "pronoun_modal")
	}

	if score > c.cfg.Thresholds.EnglishConfidence {
		if score > 1 {
			score = 1
		}
		return English{base{confidence: score, markers: markers}}, true
	}
	return nil, false
}

// pureSanskritGate implements layer 4.
func (c *Classifier) pureSanskritGate(text string) (Result, bool) {
	lower := strings.ToLower(text)
	var score float64
	var markers []string

	ratio := sanskritCharRatio(lower)
	switch {
	case ratio >= c.cfg.Thresholds.DiacriticalDensityHigh:
		score += 0.45
		markers = append(markers, "diacritical_density_high")
	case ratio >= c.cfg.Thresholds.DiacriticalDensityMedium:
		score += 0.25
		markers = append(markers, "diacritical_density_medium")
	}

	if containsAny(lower, c.cfg.Markers.SanskritSacredTerms) {
		score += 0.25
		markers = append(markers, "sacred_term")
	}
	if sanskritSuffixPattern.MatchString(lower) {
		score += 0.15
		markers = append(markers, "inflectional_suffix")
	}
	if containsAny(lower, c.cfg.Markers.SanskritPriorityTerms) {
		score += 0.15
		markers = append(markers, "priority_term")
	}

	if score > c.cfg.Thresholds.SanskritConfidence {
		if score > 1 {
			score = 1
		}
		return Sanskrit{base{confidence: score, markers: markers}}, true
	}
	return nil, false
}

// singleWordShortcut implements layer 5.
func (c *Classifier) singleWordShortcut(text string) (Result, bool) {
	fields := strings.Fields(text)
	if len(fields) != 1 {
		return nil, false
	}
	lower := strings.ToLower(fields[0])

	if containsAny(lower, c.cfg.Markers.SanskritSacredTerms) ||
		containsAny(lower, c.cfg.Markers.SanskritPriorityTerms) ||
		hasDiacritical(lower) {
		return Sanskrit{base{confidence: 0.65, markers: []string{"single_word"}}}, true
	}
	return nil, false
}

// mixedContentAnalysis implements layer 6, the final fallback.
func (c *Classifier) mixedContentAnalysis(text string) Result {
	tokens := strings.Fields(text)
	tags := make([]Category, len(tokens))

	for i, tok := range tokens {
		lower := strings.ToLower(strings.Trim(tok, ".,;:!?\"'()"))
		switch {
		case hasDiacritical(lower), containsAny(lower, c.cfg.Markers.SanskritSacredTerms):
			tags[i] = CategorySanskrit
		case containsWord(" "+lower+" ", lower) && isEnglishFunctionWord(lower, c.cfg.Markers.EnglishFunctionWords):
			tags[i] = CategoryEnglish
		default:
			tags[i] = CategoryMixed // neutral, resolved below
		}
	}

	var sanskritCount, englishCount int
	for _, t := range tags {
		switch t {
		case CategorySanskrit:
			sanskritCount++
		case CategoryEnglish:
			englishCount++
		}
	}
	total := len(tokens)
	if total == 0 {
		return English{base{confidence: 0.5, markers: []string{"empty"}}}
	}
	sanskritRatio := float64(sanskritCount) / float64(total)
	englishRatio := float64(englishCount) / float64(total)

	spans := compressSpans(tags)

	switch {
	case sanskritRatio > 0.15 && englishRatio > 0.15:
		return Mixed{base: base{confidence: 0.6, markers: []string{"mixed_ratio"}}, Spans: spans}
	case sanskritRatio >= englishRatio:
		return Sanskrit{base{confidence: 0.5 + sanskritRatio*0.3, markers: []string{"mixed_dominant_sanskrit"}}}
	default:
		return English{base{confidence: 0.5 + englishRatio*0.3, markers: []string{"mixed_dominant_english"}}}
	}
}

// compressSpans merges consecutive non-English token tags into Sanskrit
// spans per spec.md §4.E layer 6 ("compress consecutive non-English runs
// into Sanskrit segments").
func compressSpans(tags []Category) []Span {
	var spans []Span
	i := 0
	for i < len(tags) {
		if tags[i] == CategoryEnglish {
			spans = append(spans, Span{StartToken: i, EndToken: i, Tag: CategoryEnglish})
			i++
			continue
		}
		start := i
		for i < len(tags) && tags[i] != CategoryEnglish {
			i++
		}
		spans = append(spans, Span{StartToken: start, EndToken: i - 1, Tag: CategorySanskrit})
	}
	return spans
}

func isPureASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}

func sanskritCharRatio(lower string) float64 {
	var alpha, diacritical int
	for _, r := range lower {
		if !isAlphaRune(r) {
			continue
		}
		alpha++
		if isDiacriticalRune(r) {
			diacritical++
		}
	}
	if alpha == 0 {
		return 0
	}
	return float64(diacritical) / float64(alpha)
}

func hasDiacritical(s string) bool {
	for _, r := range s {
		if isDiacriticalRune(r) {
			return true
		}
	}
	return false
}

func isDiacriticalRune(r rune) bool {
	switch r {
	case 'ā', 'ī', 'ū', 'ṛ', 'ṝ', 'ḷ', 'ḹ', 'ṅ', 'ñ', 'ṭ', 'ḍ', 'ṇ', 'ś', 'ṣ', 'ḥ', 'ṃ':
		return true
	}
	return false
}

func isAlphaRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || isDiacriticalRune(r)
}

func countFunctionWords(lower string, words []string) int {
	var n int
	for _, w := range words {
		if containsWord(lower, strings.ToLower(w)) {
			n++
		}
	}
	return n
}

func isEnglishFunctionWord(lower string, words []string) bool {
	for _, w := range words {
		if lower == strings.ToLower(w) {
			return true
		}
	}
	return false
}

func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if containsWord(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// containsWord reports whether term occurs in text at a word boundary.
func containsWord(text, term string) bool {
	if term == "" {
		return false
	}
	idx := 0
	for {
		pos := strings.Index(text[idx:], term)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(term)
		before := rune(' ')
		if start > 0 {
			before = rune(text[start-1])
		}
		after := rune(' ')
		if end < len(text) {
			after = rune(text[end])
		}
		if !isWordChar(before) && !isWordChar(after) {
			return true
		}
		idx = start + 1
		if idx >= len(text) {
			return false
		}
	}
}

func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}
