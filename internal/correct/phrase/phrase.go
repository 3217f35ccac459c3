// Package phrase implements the phrase/mantra matcher, component F of the
// correction pipeline (spec.md §4.F): longest-first compound-title matching
// with capitalization reconstruction, and whole-segment mantra fingerprint
// matching tolerant of ASR corruption.
//
// Grounded on the teacher's phonetic package for the tolerant-matching
// half: mantra fingerprinting reuses internal/correct/fuzzy's banded
// weighted edit distance (itself modeled on the teacher's
// matchr.JaroWinkler-based scoring) by treating a whole segment as a single
// "token" compared against a single-candidate set, the same trick the
// teacher's corrector.go applies n-gram windows with for multi-word entity
// names.
package phrase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dharmapada/subcorrect/internal/correct/capitalize"
	"github.com/dharmapada/subcorrect/internal/correct/fuzzy"
)

// CompoundEntry is one multi-word lexicon entry eligible for whole-phrase
// replacement.
type CompoundEntry struct {
	Canonical string
	Surface   string // the variation or canonical surface form to search for
}

// Mantra is one closed dictionary entry: a normalized fingerprint compared
// against whole segments with high tolerance, and the canonical text to
// emit verbatim on a match.
type Mantra struct {
	Name        string
	Fingerprint string
	Canonical   string
}

// DefaultMantras returns the closed mantra dictionary the matcher ships
// with (spec.md §8 scenario 6).
func DefaultMantras() []Mantra {
	return []Mantra{
		{
			Name:        "purnamadah",
			Fingerprint: "om purnam adah purnam idam purnat purnam udacyate purnasya purnam adaya purnam evavasisyate",
			Canonical:   "oṃ pūrṇam adaḥ pūrṇam idam pūrṇāt pūrṇam udacyate | pūrṇasya pūrṇam ādāya pūrṇam evāvaśiṣyate ||",
		},
		{
			Name:        "gayatri",
			Fingerprint: "om bhur bhuvah svah tat savitur varenyam bhargo devasya dhimahi dhiyo yo nah pracodayat",
			Canonical:   "oṃ bhūr bhuvaḥ svaḥ tat savitur vareṇyaṃ bhargo devasya dhīmahi dhiyo yo naḥ pracodayāt",
		},
	}
}

// Matcher holds a longest-first compound-title list and a closed mantra
// dictionary.
type Matcher struct {
	compounds []CompoundEntry
	mantras   []Mantra
	fz        *fuzzy.Matcher

	// mantraMaxDistanceRatio bounds how corrupted a mantra candidate may be
	// relative to its own length before being rejected as a partial/unrelated
	// match (spec.md §4.F "partial matches are rejected").
	mantraMaxDistanceRatio float64
	mantraMinConfidence    float64
}

// New returns a Matcher over compounds (order-independent; New sorts them
// longest-first) and mantras, using fz for tolerant mantra comparison.
func New(compounds []CompoundEntry, mantras []Mantra, fz *fuzzy.Matcher) *Matcher {
	sorted := make([]CompoundEntry, len(compounds))
	copy(sorted, compounds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return wordCount(sorted[i].Surface) > wordCount(sorted[j].Surface)
	})
	return &Matcher{
		compounds:              sorted,
		mantras:                mantras,
		fz:                     fz,
		mantraMaxDistanceRatio: 0.35,
		mantraMinConfidence:    0.45,
	}
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// MatchMantra attempts the whole-segment mantra fingerprint match of
// spec.md §4.F. It is exclusive: a hit replaces the entire segment and
// callers should not run any further correction step over the result.
// Returns (canonical, reference, true) on a hit.
func (m *Matcher) MatchMantra(text string) (canonical, ref string, matched bool) {
	if canonical, name, ok := m.matchMantra(text); ok {
		return canonical, "mantra:" + name, true
	}
	return "", "", false
}

// MatchMantraAggressive is [Matcher.MatchMantra] with a looser
// mantra-tolerance budget, used for the LID "sa" aggressive-mode re-attempt
// of spec.md §4.H step 3 ("apply phrase matcher again at lower threshold").
// It never mutates m.
func (m *Matcher) MatchMantraAggressive(text string) (string, string, bool) {
	loose := &Matcher{
		compounds:              m.compounds,
		mantras:                m.mantras,
		fz:                     m.fz,
		mantraMaxDistanceRatio: m.mantraMaxDistanceRatio * 1.5,
		mantraMinConfidence:    m.mantraMinConfidence * 0.7,
	}
	return loose.MatchMantra(text)
}

// MatchCompounds applies longest-first compound-title replacement to text.
// Unlike [Matcher.MatchMantra] it is not exclusive: it replaces only the
// matched spans, leaving the rest of the segment free for per-word
// correction (spec.md §8 scenario 3, where a compound title and ordinary
// lexicon corrections land in the same segment). protected carries the
// individual words contributed by every replacement, so that callers can
// hold the phrase-replacement atomicity invariant — no per-word rule may
// subsequently modify a span the phrase matcher already produced — by
// skipping correction for any token found in it.
func (m *Matcher) MatchCompounds(text string) (newText string, protected []string, refs []string) {
	newText, refs, produced := m.replaceCompounds(text)
	if len(refs) == 0 {
		return text, nil, nil
	}
	seen := make(map[string]struct{})
	for _, replacement := range produced {
		for _, w := range strings.Fields(replacement) {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			protected = append(protected, w)
		}
	}
	return newText, protected, refs
}

// matchMantra normalizes text and compares it against every mantra
// fingerprint using the tolerant fuzzy matcher, rejecting anything whose
// distance exceeds a length-proportional budget (rejecting partial
// matches).
func (m *Matcher) matchMantra(text string) (canonical, name string, matched bool) {
	normalized := normalizeFingerprint(text)
	if normalized == "" {
		return "", "", false
	}

	candidates := make([]string, len(m.mantras))
	for i, mn := range m.mantras {
		candidates[i] = mn.Fingerprint
	}

	maxDistance := float64(len([]rune(normalized))) * m.mantraMaxDistanceRatio
	match, ok := m.fz.BestMatch(normalized, candidates, maxDistance, m.mantraMinConfidence)
	if !ok {
		return "", "", false
	}

	for _, mn := range m.mantras {
		if mn.Fingerprint == match.Candidate {
			return mn.Canonical, mn.Name, true
		}
	}
	return "", "", false
}

// normalizeFingerprint lowercases text and strips everything but letters
// and spaces, collapsing whitespace runs — the same normalization applied
// to the stored mantra fingerprints.
func normalizeFingerprint(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range strings.ToLower(text) {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '-':
			if !prevSpace {
				sb.WriteRune(' ')
				prevSpace = true
			}
		case (r >= 'a' && r <= 'z'):
			sb.WriteRune(r)
			prevSpace = false
		default:
			// drop diacritics/punctuation/digits; ASR corruption and
			// transliteration variance both live here.
		}
	}
	return strings.TrimSpace(sb.String())
}

// replaceCompounds applies each compound entry, longest-first, to text,
// reconstructing capitalization from the matched source tokens per spec.md
// §4.F. It returns the rewritten text, the canonical form of every entry
// that fired, and every case-reconstructed replacement string it emitted.
func (m *Matcher) replaceCompounds(text string) (string, []string, []string) {
	var refs, produced []string
	for _, c := range m.compounds {
		pattern := wordBoundaryPattern(c.Surface)
		text, refs, produced = applyCompound(text, pattern, c.Canonical, refs, produced)
	}
	return text, refs, produced
}

func wordBoundaryPattern(surface string) *regexp.Regexp {
	words := strings.Fields(surface)
	escaped := make([]string, len(words))
	for i, w := range words {
		escaped[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b` + strings.Join(escaped, `\s+`) + `\b`)
}

func applyCompound(text string, pattern *regexp.Regexp, canonical string, refs, produced []string) (string, []string, []string) {
	if !pattern.MatchString(text) {
		return text, refs, produced
	}
	hit := false
	out := pattern.ReplaceAllStringFunc(text, func(match string) string {
		hit = true
		replacement := reconstructCase(match, canonical)
		produced = append(produced, replacement)
		return replacement
	})
	if hit {
		refs = append(refs, canonical)
	}
	return out, refs, produced
}

// reconstructCase implements spec.md §4.F's capitalization rule: if every
// source word was title-cased, every output word is title-cased even where
// the canonical form is lower-case; otherwise canonical case wins.
func reconstructCase(source, canonical string) string {
	if isEveryWordTitleCase(source) {
		return capitalize.Preserve(source, canonical, false)
	}
	return canonical
}

func isEveryWordTitleCase(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		r := []rune(w)
		if len(r) == 0 {
			return false
		}
		first := r[0]
		if first < 'A' || first > 'Z' {
			// The check is ASCII-based: a word whose first rune is not an
			// ASCII capital, including a diacritic-initial capital such as
			// 'Ś', does not count as title-cased.
			return false
		}
	}
	return true
}
