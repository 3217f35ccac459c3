// Package asrpattern implements the ASR pattern engine, component D of the
// correction pipeline (spec.md §4.D): a closed, ordered list of textual
// rewrite rules addressing systematic speech-recognizer errors.
//
// Grounded on the teacher's dynamic-polymorphism shape (design notes,
// spec.md §9): [Engine.Propose] takes one word and returns an optional
// (correction, confidence, type) proposal. The phrase and fuzzy matchers
// expose their own, differently shaped methods; there is no shared
// interface.
// The rule table itself is new — the teacher has no ASR-correction rules —
// built directly from spec.md §4.D's enumerated rule groups.
package asrpattern

import (
	"regexp"
	"strings"

	"github.com/dharmapada/subcorrect/internal/lexicon"
)

// Type tags a rule by which confusion class it addresses.
type Type string

const (
	TypeAspirated  Type = "aspirated_consonant"
	TypeSibilant   Type = "sibilant"
	TypeVowelLen   Type = "vowel_length"
	TypeNasal      Type = "nasal_assimilation"
	TypeRetroflex  Type = "retroflex_marker"
	TypeCompound   Type = "compound_split"
	TypeSanitize   Type = "english_sanitize"
)

// tokenRule rewrites a substring of a single core word.
type tokenRule struct {
	from       string
	to         string
	confidence float64
	ruleType   Type
}

// tokenRules addresses spec.md §4.D's character-level confusion groups,
// applied in order to a single lowercased core word.
var tokenRules = []tokenRule{
	{"ph", "f", 0.55, TypeAspirated},
	{"th", "t", 0.5, TypeAspirated},
	{"bh", "b", 0.5, TypeAspirated},
	{"dh", "d", 0.5, TypeAspirated},
	{"kh", "k", 0.5, TypeAspirated},
	{"gh", "g", 0.5, TypeAspirated},
	{"ch", "c", 0.45, TypeAspirated},
	{"jh", "j", 0.45, TypeAspirated},

	{"sh", "ś", 0.6, TypeSibilant},
	{"ss", "ś", 0.55, TypeSibilant},

	{"aa", "ā", 0.65, TypeVowelLen},
	{"ii", "ī", 0.65, TypeVowelLen},
	{"uu", "ū", 0.65, TypeVowelLen},

	{"ng", "ṅ", 0.5, TypeNasal},
	{"nk", "ṅk", 0.5, TypeNasal},
	{"nc", "ñc", 0.5, TypeNasal},
	{"nj", "ñj", 0.5, TypeNasal},

	{"rn", "rṇ", 0.45, TypeRetroflex},
	{"rt", "rṭ", 0.45, TypeRetroflex},
	{"rd", "rḍ", 0.45, TypeRetroflex},
	{"rs", "rṣ", 0.45, TypeRetroflex},
}

// phraseRule rewrites a whole-segment substring match, case-insensitively
// and on word boundaries: compound-splitting and English-sanitization.
type phraseRule struct {
	pattern    *regexp.Regexp
	replace    string
	confidence float64
	ruleType   Type
}

var phraseRules = []phraseRule{
	{
		pattern:    regexp.MustCompile(`(?i)\btanva\s+manasi\b`),
		replace:    "tanumānasi",
		confidence: 0.7,
		ruleType:   TypeCompound,
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bbhagavad\s+gita\b`),
		replace:    "Bhagavad Gītā",
		confidence: 0.85,
		ruleType:   TypeCompound,
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bthe\s+the\b`),
		replace:    "the",
		confidence: 0.9,
		ruleType:   TypeSanitize,
	},
	{
		pattern:    regexp.MustCompile(`(?i)\bteh\b`),
		replace:    "the",
		confidence: 0.85,
		ruleType:   TypeSanitize,
	},
}

// Proposal is a single candidate correction produced by the engine.
type Proposal struct {
	Correction string
	Confidence float64
	Type       Type
}

// Engine applies the closed rule set of spec.md §4.D. The zero value is
// usable; [New] exists for symmetry with the other matchers and to allow an
// extended blocklist.
type Engine struct {
	blocklist *lexicon.Blocklist
}

// New returns an Engine that filters out token-rule and compound-rule
// proposals colliding with bl.
func New(bl *lexicon.Blocklist) *Engine {
	return &Engine{blocklist: bl}
}

// Propose attempts a single-word rewrite of word via the token-level rule
// table. Rules are tried in the fixed order of spec.md §4.D; the first rule
// whose pattern occurs in the lowercased word and whose rewritten result is
// not itself blocklisted wins. Returns matched=false if no rule applies.
func (e *Engine) Propose(word string) (Proposal, bool) {
	lower := strings.ToLower(word)
	for _, r := range tokenRules {
		if !strings.Contains(lower, r.from) {
			continue
		}
		rewritten := strings.ReplaceAll(lower, r.from, r.to)
		if rewritten == lower {
			continue
		}
		if e.blocklist != nil && e.blocklist.Contains(rewritten) {
			continue
		}
		return Proposal{Correction: rewritten, Confidence: r.confidence, Type: r.ruleType}, true
	}
	return Proposal{}, false
}

// RewritePhrase applies the whole-segment compound-splitting and
// English-sanitization rules to text, in order, each matching
// case-insensitively on word boundaries. Returns the rewritten text and the
// proposals that fired, in application order. A compound rule whose
// replacement would itself be blocklisted is skipped; the
// English-sanitization rules, whose replacements are English words, are not
// checked against the blocklist.
func (e *Engine) RewritePhrase(text string) (string, []Proposal) {
	var fired []Proposal
	for _, r := range phraseRules {
		if !r.pattern.MatchString(text) {
			continue
		}
		if r.ruleType != TypeSanitize && e.blocklist != nil && e.blocklist.Contains(r.replace) {
			continue
		}
		text = r.pattern.ReplaceAllString(text, r.replace)
		fired = append(fired, Proposal{Correction: r.replace, Confidence: r.confidence, Type: r.ruleType})
	}
	return text, fired
}
