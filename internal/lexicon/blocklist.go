package lexicon

import "strings"

// Blocklist is the English-token blocklist of spec.md §3: a curated set of
// English tokens forbidden to be replaced by any lexicon entry regardless of
// similarity. It is part of the data model, not configuration — callers may
// extend it (e.g. from [config.Config]) but the built-in set in
// [DefaultBlocklist] is always included, since it is required for
// correctness rather than tunable behaviour.
type Blocklist struct {
	words map[string]struct{}
}

// englishFunctionWords are high-frequency function words (category i),
// merged from the two blocklists spec.md §9(ii) points at:
// lexicons/hybrid_lexicon_loader.py's ENGLISH_BLOCKLIST stopword section and
// processors/systematic_term_matcher.py's function_words set.
var englishFunctionWords = []string{
	"the", "and", "that", "have", "for", "not", "with", "you", "this", "but", "his",
	"from", "they", "she", "her", "been", "than", "its", "who", "did", "yes", "would",
	"could", "should", "will", "can", "may", "might", "must", "shall", "ought",
	"are", "all", "had", "was", "one", "our", "out", "day", "get", "has", "him",
	"how", "new", "now", "old", "see", "two", "way", "boy", "let", "put", "too",
	"use", "run", "big", "end", "why", "win", "yet", "cut", "cup", "fun", "gun",
	"hot", "job", "lot", "met", "net", "pen", "red", "sun", "top", "try",
}

// englishCollisionWords are short, unrelated English words that happen to
// collide with Sanskrit terms under a lenient edit-distance budget (category
// iii), lexicons/hybrid_lexicon_loader.py's three-letter section of
// ENGLISH_BLOCKLIST.
var englishCollisionWords = []string{
	"pad", "man", "car", "mat", "rat", "ram", "pan", "tan", "van", "ban",
	"dam", "fan", "jam", "lag", "mad", "nag", "rag", "sag", "tag",
	"wag", "bag", "gag", "hag", "bat", "cat", "fat", "hat", "pat", "sat",
	"bad", "dad", "lad", "sad", "tar", "war", "far", "bar", "jar",
	"lab", "cab", "tab", "dab", "gab", "nab", "sab", "pal", "gal", "sal",
}

// englishContentWords are ordinary English words (often gerunds, past
// participles, or comparatives) observed to false-positive against
// Sanskrit/Hindi terms (category ii). Merged from the "CRITICAL" section of
// lexicons/hybrid_lexicon_loader.py's ENGLISH_BLOCKLIST and the
// "CRITICAL EMERGENCY ADDITIONS"/"EMERGENCY EXPANSION" blocklists inside
// processors/systematic_term_matcher.py (its _find_phonetic_matches method
// and its suffixes/function_words/content_blocklist config, the source of
// "again" being protected from matching "advaita").
var englishContentWords = []string{
	"treading", "reading", "leading", "heading", "spreading", "breeding", "feeding",
	"agitated", "meditated", "dedicated", "activated", "created", "related", "stated",
	"seated", "treated", "heated", "repeated", "completed", "defeated", "deleted",
	"worship", "business", "success", "given", "extension", "whole", "process",
	"address", "express", "progress", "tell", "four", "five", "neither", "either",
	"respect", "aspect", "suspect", "courteous", "gesture",
	"realized", "surrender", "looking", "thinking", "feeling", "asking", "walking",
	"explained", "carrying", "powerful", "mystical", "meanings", "feelings", "beings",
	"concluding", "including", "excluding", "stage", "grief", "trees", "plants", "leaves",
	"different", "sympathy", "surprised", "supposed", "proposed", "exposed", "composed",
	"incarnation", "questioned", "mentioned", "presented", "represented",
	"grieving", "family", "loss", "makes", "mind", "little", "insane", "extent",
	"exaggerating", "subtle", "clearly", "really",
	"meaning", "behind", "tells", "experience", "know", "pretended",
	"herself", "message", "place", "conquered", "backed", "certain",
	"some", "authenticated", "comes", "fear", "what", "own",
	"bigger", "smaller", "better", "worse", "easier", "harder", "faster", "slower",
	"well", "read", "will", "there", "when", "easily",
	"guru", "devotees", "delay", "forest", "carefully", "through",
	"together", "session", "meditation",
	// "CRITICAL EMERGENCY ADDITIONS to prevent invalid corrections like
	// 'again' -> 'advaita'" (systematic_term_matcher.py).
	"again", "against", "about", "above", "after", "always", "among", "another",
	"around", "because", "become", "being", "below", "between", "bring", "called",
	"come", "during", "each", "early", "every", "first", "found",
	"give", "good", "great", "group", "hand", "help", "here", "high",
	"home", "however", "important", "into", "itself", "just", "large",
	"last", "left", "life", "like", "line", "long", "look", "made",
	"make", "many", "most", "move", "much", "name", "need", "never", "next",
	"number", "often", "only", "other", "over", "part", "people",
	"point", "public", "right", "said", "same", "school", "seem",
	"several", "show", "since", "small", "social", "still",
	"such", "system", "take", "their", "them", "these", "they",
	"think", "those", "time", "today", "turn",
	"under", "until", "upon", "used", "using", "very", "want", "water",
	"ways", "were", "where", "which", "while",
	"within", "without", "work", "world", "write", "year", "years",
}

// suffixes are the English inflection suffixes recognised by
// processors/systematic_term_matcher.py's "suffixes" set. A word is flagged
// as ordinary English text when it carries one of these AND is pure ASCII,
// independent of blocklist membership (see [hasEnglishSuffix]).
var suffixes = []string{"ing", "ed", "er", "est", "ly", "tion", "sion", "ness", "ment", "able", "ible"}

// DefaultBlocklist returns the built-in blocklist described in spec.md §3.
func DefaultBlocklist() *Blocklist {
	b := &Blocklist{words: make(map[string]struct{})}
	for _, w := range englishFunctionWords {
		b.words[w] = struct{}{}
	}
	for _, w := range englishCollisionWords {
		b.words[w] = struct{}{}
	}
	for _, w := range englishContentWords {
		b.words[w] = struct{}{}
	}
	return b
}

// Add extends the blocklist with additional words, e.g. loaded from
// configuration. Words are lowercased on insert.
func (b *Blocklist) Add(words ...string) {
	for _, w := range words {
		b.words[strings.ToLower(w)] = struct{}{}
	}
}

// Contains reports whether word (any casing) is a blocklisted English token,
// either by direct membership or because it carries one of [suffixes] on an
// otherwise-ASCII token — the same two-part test
// processors/systematic_term_matcher.py runs before accepting a phonetic
// match.
func (b *Blocklist) Contains(word string) bool {
	lower := strings.ToLower(word)
	if _, ok := b.words[lower]; ok {
		return true
	}
	return isASCII(lower) && hasEnglishSuffix(lower)
}

// hasEnglishSuffix reports whether lower carries one of [suffixes].
func hasEnglishSuffix(lower string) bool {
	for _, suf := range suffixes {
		if len(lower) > len(suf) && strings.HasSuffix(lower, suf) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return false
		}
	}
	return true
}
