// Package capitalize implements the capitalization preserver, component G
// of the correction pipeline (spec.md §4.G).
package capitalize

import (
	"strings"
	"unicode"
)

// Preserve adjusts correction's casing to match original, per spec.md §4.G.
// preserveExact corresponds to the lexicon entry's preserve_capitalization
// flag: when true, correction is returned completely unchanged. Diacritics
// count as ordinary letters for case purposes; only whitespace separates
// words.
func Preserve(original, correction string, preserveExact bool) string {
	if preserveExact {
		return correction
	}
	switch {
	case isAllUpper(original):
		return strings.ToUpper(correction)
	case isTitleCase(original):
		return titleCaseWords(correction)
	default:
		return correction
	}
}

// isAllUpper reports whether s has at least two letters and every letter is
// uppercase.
func isAllUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return letters >= 2
}

// isTitleCase reports whether every whitespace-separated word in s begins
// with an uppercase letter.
func isTitleCase(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		r := firstLetter(w)
		if r == 0 || !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// firstLetter returns the first letter rune in w, or 0 if w has none.
func firstLetter(w string) rune {
	for _, r := range w {
		if unicode.IsLetter(r) {
			return r
		}
	}
	return 0
}

// titleCaseWords upper-cases the first letter of each whitespace-separated
// word in s, leaving the rest of each word untouched.
func titleCaseWords(s string) string {
	words := strings.Fields(s)
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = titleCaseWord(w)
	}
	return strings.Join(out, " ")
}

func titleCaseWord(w string) string {
	runes := []rune(w)
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			return string(runes)
		}
	}
	return w
}

// TitleCase exports the word-wise title-casing rule, used by the driver's
// LID-aggressive mode to fix ALL-CAPS prayer segments (spec.md §4.H step 3).
func TitleCase(s string) string {
	return titleCaseWords(s)
}

// SentenceInitial capitalizes the first letter of s and the first letter
// following each sentence-terminating '.' or '|' — the smart-capitalization
// pass applied to prayer-mode segments (spec.md §4.H step 8, scoped per the
// open-question resolution in DESIGN.md).
func SentenceInitial(s string) string {
	runes := []rune(s)
	capitalizeNext := true
	for i, r := range runes {
		if capitalizeNext && unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			capitalizeNext = false
			continue
		}
		if r == '.' || r == '|' {
			capitalizeNext = true
		} else if !unicode.IsSpace(r) {
			capitalizeNext = false
		}
	}
	return string(runes)
}
