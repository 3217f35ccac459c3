package fuzzy_test

import (
	"testing"

	"github.com/dharmapada/subcorrect/internal/correct/fuzzy"
	"github.com/dharmapada/subcorrect/internal/lexicon"
)

func TestBestMatch_PrefersPhoneticEquivalenceOverRawDistance(t *testing.T) {
	t.Parallel()

	m := fuzzy.New(lexicon.DefaultBlocklist(), 100)

	match, matched := m.BestMatch("vasistha", []string{"vāsiṣṭha", "xxxxxxxx"}, 3, 0.5)
	if !matched {
		t.Fatalf("BestMatch: want a match")
	}
	if match.Candidate != "vāsiṣṭha" {
		t.Errorf("Candidate = %q, want vāsiṣṭha", match.Candidate)
	}
}

func TestBestMatch_RejectsBlocklistedTokenRegardlessOfScore(t *testing.T) {
	t.Parallel()

	m := fuzzy.New(lexicon.DefaultBlocklist(), 100)

	_, matched := m.BestMatch("again", []string{"advaita"}, 3, 0.1)
	if matched {
		t.Errorf("BestMatch: blocklisted token must never match")
	}
}

func TestBestMatch_RespectsMaxDistance(t *testing.T) {
	t.Parallel()

	m := fuzzy.New(lexicon.DefaultBlocklist(), 100)

	_, matched := m.BestMatch("zzzzzzzzzz", []string{"krishna"}, 1, 0.1)
	if matched {
		t.Errorf("BestMatch: want no match beyond max_distance")
	}
}

func TestBestMatch_NoCandidatesReturnsNoMatch(t *testing.T) {
	t.Parallel()

	m := fuzzy.New(lexicon.DefaultBlocklist(), 100)

	_, matched := m.BestMatch("krishna", nil, 3, 0.5)
	if matched {
		t.Errorf("BestMatch: empty candidate set must never match")
	}
}

func TestBestMatch_ConfidenceWithinBounds(t *testing.T) {
	t.Parallel()

	m := fuzzy.New(lexicon.DefaultBlocklist(), 100)

	match, matched := m.BestMatch("krishnaa", []string{"krishna"}, 3, 0)
	if !matched {
		t.Fatalf("BestMatch: want a match")
	}
	if match.Confidence < 0 || match.Confidence > 1 {
		t.Errorf("Confidence = %v, want within [0, 1]", match.Confidence)
	}
}

func TestBestMatch_TruncatesOversizedCandidateSet(t *testing.T) {
	t.Parallel()

	m := fuzzy.New(lexicon.DefaultBlocklist(), 1000)

	candidates := make([]string, 0, fuzzy.MaxCandidatesPerToken+10)
	for i := 0; i < fuzzy.MaxCandidatesPerToken+10; i++ {
		candidates = append(candidates, "filler")
	}
	candidates = append(candidates, "krishna")

	// "krishna" sits past the cap; BestMatch must not panic and must not
	// necessarily find it (truncation is allowed to drop it).
	_, _ = m.BestMatch("krishna", candidates, 3, 0.5)
}
