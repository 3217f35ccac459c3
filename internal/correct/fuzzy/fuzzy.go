// Package fuzzy implements the fuzzy matcher, component C of the correction
// pipeline (spec.md §4.C): a banded, Sanskrit-aware weighted edit distance
// over a bounded candidate set, with LRU memoization.
//
// Grounded on the teacher's internal/transcript/phonetic package: same
// "compute a similarity score, reject below a threshold, return
// (corrected, confidence, matched)" shape, and the same auxiliary use of
// matchr.JaroWinkler as a secondary ranking signal. The core distance
// metric itself is new — the teacher has no phonetic-equivalence-class edit
// distance — hand-rolled per spec.md §4.C's substitution-cost table, since
// no example repo ships a Sanskrit-aware string metric.
package fuzzy

import (
	"fmt"
	"math"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/dharmapada/subcorrect/internal/cache"
	"github.com/dharmapada/subcorrect/internal/lexicon"
)

// MaxCandidatesPerToken bounds per-token work, per spec.md §4.C and §5.
const MaxCandidatesPerToken = 50

// equivalenceClasses groups characters the matcher treats as cheaply
// interchangeable — common ASR/IAST confusions (spec.md §4.C).
var equivalenceClasses = []string{
	"sśṣ",
	"nṇṅñ",
	"tṭ",
	"dḍ",
	"aā",
	"iī",
	"uū",
	"vw",
}

// classOf maps a rune to the index of its equivalence class, or -1.
var classOf = buildClassIndex()

func buildClassIndex() map[rune]int {
	m := make(map[rune]int)
	for i, class := range equivalenceClasses {
		for _, r := range class {
			m[r] = i
		}
	}
	return m
}

// substitutionCost returns the cost of substituting a for b per spec.md
// §4.C: 0 for identical runes, 0.1–0.3 for same equivalence class, 1.0
// otherwise.
func substitutionCost(a, b rune) float64 {
	if a == b {
		return 0
	}
	if ca, ok := classOf[a]; ok {
		if cb, ok := classOf[b]; ok && ca == cb {
			return 0.2
		}
	}
	return 1.0
}

// Match is a single proposed correction.
type Match struct {
	Candidate  string
	Distance   float64
	Confidence float64
}

// Matcher computes bounded, memoized fuzzy matches against lexicon
// candidates. The zero value is not usable; construct with [New].
type Matcher struct {
	blocklist *lexicon.Blocklist
	memo      *cache.LRU[string, Match]
}

// New returns a Matcher that never proposes a correction for a token
// blocklisted by bl, and memoizes (token, candidate) pairs in an LRU bounded
// by maxEntries.
func New(bl *lexicon.Blocklist, maxEntries int) *Matcher {
	return &Matcher{
		blocklist: bl,
		memo:      cache.New[string, Match](maxEntries, 0, nil),
	}
}

// BestMatch finds the best candidate in candidates for token, per spec.md
// §4.C. Returns matched=false if no candidate clears minConfidence, if token
// is blocklisted, or if candidates is empty. candidates longer than
// MaxCandidatesPerToken are truncated — callers are expected to have already
// restricted the set by first-letter/length bucketing.
func (m *Matcher) BestMatch(token string, candidates []string, maxDistance, minConfidence float64) (match Match, matched bool) {
	if m.blocklist.Contains(token) {
		return Match{}, false
	}
	if len(candidates) > MaxCandidatesPerToken {
		candidates = candidates[:MaxCandidatesPerToken]
	}

	tokenLower := strings.ToLower(token)
	runes := []rune(tokenLower)

	var best Match
	found := false

	for _, candidate := range candidates {
		candLower := strings.ToLower(candidate)
		if absInt(len(runes)-len([]rune(candLower))) > int(maxDistance) {
			continue
		}

		dist, ok := m.distance(tokenLower, candLower, maxDistance)
		if !ok {
			continue
		}

		conf := confidence(tokenLower, candLower, dist)
		if conf < minConfidence {
			continue
		}
		if !found || conf > best.Confidence {
			best = Match{Candidate: candidate, Distance: dist, Confidence: conf}
			found = true
		}
	}

	return best, found
}

// distance computes the banded weighted edit distance between a and b,
// memoized by the (a, b) pair. Returns ok=false if the running minimum
// exceeded maxDistance at any row (early termination, spec.md §4.C).
func (m *Matcher) distance(a, b string, maxDistance float64) (float64, bool) {
	key := memoKey(a, b)
	if cached, ok := m.memo.Get(key); ok {
		if cached.Distance > maxDistance {
			return 0, false
		}
		return cached.Distance, true
	}

	dist, ok := bandedEditDistance(a, b, maxDistance)
	if ok {
		m.memo.Put(key, Match{Candidate: b, Distance: dist})
	}
	return dist, ok
}

func memoKey(a, b string) string {
	return a + "\x00" + b
}

// bandedEditDistance computes weighted edit distance with a single DP row,
// restricted to a band of width maxDistance around the diagonal, aborting
// early if the row's running minimum exceeds maxDistance.
func bandedEditDistance(a, b string, maxDistance float64) (float64, bool) {
	ar := []rune(a)
	br := []rune(b)
	n, k := len(ar), len(br)

	band := int(maxDistance)
	if band < 1 {
		band = 1
	}

	const inf = math.MaxFloat64 / 2

	prev := make([]float64, k+1)
	curr := make([]float64, k+1)
	for j := 0; j <= k; j++ {
		if j <= band {
			prev[j] = float64(j)
		} else {
			prev[j] = inf
		}
	}

	for i := 1; i <= n; i++ {
		lo := i - band
		if lo < 0 {
			lo = 0
		}
		hi := i + band
		if hi > k {
			hi = k
		}

		for j := range curr {
			curr[j] = inf
		}
		if i <= band {
			curr[0] = float64(i)
		}

		rowMin := inf
		for j := lo + 1; j <= hi; j++ {
			subCost := substitutionCost(ar[i-1], br[j-1])
			del := prev[j] + 1.0
			ins := curr[j-1] + 1.0
			sub := prev[j-1] + subCost
			v := math.Min(sub, math.Min(del, ins))
			curr[j] = v
			if v < rowMin {
				rowMin = v
			}
		}
		if rowMin > maxDistance {
			return 0, false
		}
		prev, curr = curr, prev
	}

	final := prev[k]
	if final > maxDistance {
		return 0, false
	}
	return final, true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// confidence computes the caller-facing confidence score for a proposed
// distance per spec.md §4.C: base score from normalized distance, plus
// prefix/suffix/overlap bonuses, plus an auxiliary Jaro-Winkler nudge
// grounded on the teacher's bestJWScore pattern, clamped to [0, 1].
func confidence(a, b string, dist float64) float64 {
	maxLen := len([]rune(a))
	if bl := len([]rune(b)); bl > maxLen {
		maxLen = bl
	}
	if maxLen == 0 {
		return 0
	}

	base := 1 - dist/float64(maxLen)

	var bonus float64
	if strings.HasPrefix(b, string([]rune(a)[:minInt(1, len([]rune(a)))])) {
		bonus += 0.03
	}
	if hasCommonSuffix(a, b) {
		bonus += 0.03
	}
	bonus += 0.04 * characterOverlap(a, b)

	jw := matchr.JaroWinkler(a, b, false)
	bonus += 0.05 * jw

	score := base + bonus
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func hasCommonSuffix(a, b string) bool {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 || len(br) == 0 {
		return false
	}
	return ar[len(ar)-1] == br[len(br)-1]
}

// characterOverlap returns the Jaccard similarity of the two strings'
// character sets, a coarse signal for how much of the alphabet is shared.
func characterOverlap(a, b string) float64 {
	setA := runeSet(a)
	setB := runeSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	shared := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// String implements fmt.Stringer for debug logging.
func (m Match) String() string {
	return fmt.Sprintf("%s (dist=%.2f conf=%.2f)", m.Candidate, m.Distance, m.Confidence)
}

// PrefixCandidates returns the set of first-letters a candidate lookup
// should consider for a token starting with r: r itself (lowercased) plus
// any runes sharing its phonetic equivalence class (spec.md §4.C "phonetic
// fallbacks: s -> {ś, ṣ}, etc.").
func PrefixCandidates(r rune) []rune {
	lower := toLowerRune(r)
	if idx, ok := classOf[lower]; ok {
		return []rune(equivalenceClasses[idx])
	}
	return []rune{lower}
}

func toLowerRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
