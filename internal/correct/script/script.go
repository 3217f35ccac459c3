// Package script implements the script normalizer, component A of the
// correction pipeline (spec.md §4.A): Devanagari→IAST transliteration
// followed by whitespace and filler-word cleanup.
//
// The teacher repository has no transliteration component of its own — this
// package is new — but follows its general shape: a stateless, allocation-
// light transformer over plain strings, grounded on the same
// golang.org/x/text normalization primitives the wider retrieval pack's
// transliteration-adjacent code (translitkit) gestures at without shipping.
package script

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// hesitationPattern matches filler words, removed only as whole words
// (spec.md §4.A).
var hesitationPattern = regexp.MustCompile(`(?i)\b(um|uh|er|ah)\b`)

var whitespaceRun = regexp.MustCompile(`[ \t]+`)

// Normalize transliterates any Devanagari-block text in s to IAST, then
// collapses runs of horizontal whitespace (preserving newlines) and strips
// hesitation filler words. Output is deterministic and idempotent: running
// Normalize on its own output returns the same string unchanged.
func Normalize(s string) string {
	if containsDevanagari(s) {
		s = Transliterate(s)
	}
	s = hesitationPattern.ReplaceAllString(s, "")
	return CollapseWhitespace(collapseSpacedPunctuation(s))
}

// CollapseWhitespace collapses runs of horizontal whitespace into a single
// space (preserving newlines, per spec.md §4.H step 7) and trims the
// result. Exported for the driver's segment-level cleanup pass, which
// performs the same collapse after word-level correction without
// re-running transliteration or filler-word removal.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// containsDevanagari reports whether s has any codepoint in U+0900–U+097F.
func containsDevanagari(s string) bool {
	for _, r := range s {
		if r >= 0x0900 && r <= 0x097F {
			return true
		}
	}
	return false
}

// collapseSpacedPunctuation trims a space left dangling before punctuation
// by filler-word removal (e.g. "word , next" -> "word, next") and merges the
// doubled comma left when a filler stood between two commas ("a, , b" ->
// "a, b"). Only applied to the small set of punctuation marks filler removal
// can plausibly orphan.
func collapseSpacedPunctuation(s string) string {
	replacer := strings.NewReplacer(", ,", ",", " ,", ",", " .", ".", "  ", " ")
	return replacer.Replace(s)
}

// Transliterate renders Devanagari text as IAST using a standard,
// syllable-aware mapping: independent vowels, consonants with their
// inherent "a", vowel signs (mātrās) that replace the inherent vowel, and
// the virama that suppresses it entirely. The result is passed through
// Unicode NFC so combining diacritics compose into single codepoints where
// precomposed forms exist.
func Transliterate(s string) string {
	var sb strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if v, ok := independentVowels[r]; ok {
			sb.WriteString(v)
			continue
		}

		if cons, ok := consonants[r]; ok {
			next := rune(0)
			if i+1 < len(runes) {
				next = runes[i+1]
			}
			switch {
			case next == virama:
				sb.WriteString(strings.TrimSuffix(cons, "a"))
				i++ // consume the virama
			case vowelSigns[next] != "":
				sb.WriteString(strings.TrimSuffix(cons, "a"))
				sb.WriteString(vowelSigns[next])
				i++ // consume the vowel sign
			default:
				sb.WriteString(cons)
			}
			continue
		}

		if extra, ok := otherMarks[r]; ok {
			sb.WriteString(extra)
			continue
		}

		sb.WriteRune(r)
	}

	return norm.NFC.String(sb.String())
}

const virama = '्'

var independentVowels = map[rune]string{
	'अ': "a", 'आ': "ā", 'इ': "i", 'ई': "ī",
	'उ': "u", 'ऊ': "ū", 'ऋ': "ṛ", 'ॠ': "ṝ",
	'ऌ': "ḷ", 'ॡ': "ḹ",
	'ए': "e", 'ऐ': "ai", 'ओ': "o", 'औ': "au",
}

// vowelSigns (mātrās) replace a consonant's inherent "a".
var vowelSigns = map[rune]string{
	'ा': "ā", 'ि': "i", 'ी': "ī",
	'ु': "u", 'ू': "ū", 'ृ': "ṛ", 'ॄ': "ṝ",
	'ॢ': "ḷ", 'ॣ': "ḹ",
	'े': "e", 'ै': "ai", 'ो': "o", 'ौ': "au",
}

// consonants carry the inherent "a"; callers strip it when a virama or
// vowel sign follows.
var consonants = map[rune]string{
	'क': "ka", 'ख': "kha", 'ग': "ga", 'घ': "gha", 'ङ': "ṅa",
	'च': "ca", 'छ': "cha", 'ज': "ja", 'झ': "jha", 'ञ': "ña",
	'ट': "ṭa", 'ठ': "ṭha", 'ड': "ḍa", 'ढ': "ḍha", 'ण': "ṇa",
	'त': "ta", 'थ': "tha", 'द': "da", 'ध': "dha", 'न': "na",
	'प': "pa", 'फ': "pha", 'ब': "ba", 'भ': "bha", 'म': "ma",
	'य': "ya", 'र': "ra", 'ल': "la", 'व': "va",
	'श': "śa", 'ष': "ṣa", 'स': "sa", 'ह': "ha",
	'ळ': "ḷa",
}

// otherMarks covers anusvāra, visarga, candrabindu, avagraha, digits, and
// the daṇḍa sentence-terminators.
var otherMarks = map[rune]string{
	'ं': "ṃ", 'ः': "ḥ", 'ँ': "̃",
	'ऽ': "'",
	'०': "0", '१': "1", '२': "2", '३': "3", '४': "4",
	'५': "5", '६': "6", '७': "7", '८': "8", '९': "9",
	'।': ".", '॥': ".",
}

// IsWordRune reports whether r is a letter or combining mark, i.e. part of a
// word rather than a boundary; IAST diacritic letters count as letters.
// Exported for the driver's tokenizer.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r)
}
