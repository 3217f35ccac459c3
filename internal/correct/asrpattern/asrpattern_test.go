package asrpattern_test

import (
	"testing"

	"github.com/dharmapada/subcorrect/internal/correct/asrpattern"
	"github.com/dharmapada/subcorrect/internal/lexicon"
)

func TestPropose_AspiratedConsonant(t *testing.T) {
	t.Parallel()

	e := asrpattern.New(lexicon.DefaultBlocklist())
	prop, matched := e.Propose("dharma")
	if !matched {
		t.Fatalf("Propose: want a match")
	}
	if prop.Correction != "darma" || prop.Type != asrpattern.TypeAspirated {
		t.Errorf("Propose = %+v, want darma/aspirated", prop)
	}
}

func TestPropose_NoRuleApplies(t *testing.T) {
	t.Parallel()

	e := asrpattern.New(lexicon.DefaultBlocklist())
	_, matched := e.Propose("yoga")
	if matched {
		t.Errorf("Propose: want no match for a word with no confusable substring")
	}
}

func TestPropose_SkipsRuleWhoseOutputIsBlocklisted(t *testing.T) {
	t.Parallel()

	bl := lexicon.DefaultBlocklist()
	bl.Add("darma")
	e := asrpattern.New(bl)

	_, matched := e.Propose("dharma")
	if matched {
		t.Errorf("Propose: rule output collides with blocklist, want no match")
	}
}

func TestRewritePhrase_AppliesCompoundSplitAcrossWordBoundary(t *testing.T) {
	t.Parallel()

	e := asrpattern.New(lexicon.DefaultBlocklist())
	got, fired := e.RewritePhrase("Bhagavad Gita chapter 2, verse 47")
	want := "Bhagavad Gītā chapter 2, verse 47"
	if got != want {
		t.Errorf("RewritePhrase = %q, want %q", got, want)
	}
	if len(fired) != 1 || fired[0].Type != asrpattern.TypeCompound {
		t.Errorf("fired = %+v, want one compound_split proposal", fired)
	}
}

func TestRewritePhrase_SanitizesDoubledWord(t *testing.T) {
	t.Parallel()

	e := asrpattern.New(lexicon.DefaultBlocklist())
	got, _ := e.RewritePhrase("the the teaching continues")
	want := "the teaching continues"
	if got != want {
		t.Errorf("RewritePhrase = %q, want %q", got, want)
	}
}

func TestRewritePhrase_NoMatchReturnsUnchanged(t *testing.T) {
	t.Parallel()

	e := asrpattern.New(lexicon.DefaultBlocklist())
	got, fired := e.RewritePhrase("nothing to rewrite here")
	if got != "nothing to rewrite here" || len(fired) != 0 {
		t.Errorf("RewritePhrase = %q, fired=%v, want unchanged/no rules", got, fired)
	}
}
