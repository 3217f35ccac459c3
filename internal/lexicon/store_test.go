package lexicon_test

import (
	"testing"

	"github.com/dharmapada/subcorrect/internal/lexicon"
)

func TestLoad_ExpandsVariationsAsLookupKeys(t *testing.T) {
	t.Parallel()

	bl := lexicon.DefaultBlocklist()
	rows := []lexicon.Row{
		{
			OriginalTerm:    "krishna",
			Variations:      []string{"krsna", "krishnah"},
			Transliteration: "Kṛṣṇa",
			Category:        lexicon.CategoryDeity,
			Confidence:      0.95,
		},
	}

	store, err := lexicon.Load(rows, nil, true, bl)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, key := range []string{"krishna", "krsna", "krishnah"} {
		e, ok := store.Lookup(key)
		if !ok {
			t.Fatalf("Lookup(%q): not found", key)
		}
		if e.Canonical != "Kṛṣṇa" {
			t.Errorf("Lookup(%q).Canonical = %q, want Kṛṣṇa", key, e.Canonical)
		}
	}
}

func TestLoad_HigherConfidenceWins(t *testing.T) {
	t.Parallel()

	bl := lexicon.DefaultBlocklist()
	rows := []lexicon.Row{
		{OriginalTerm: "gita", Transliteration: "Gītā-low", Confidence: 0.5, Category: lexicon.CategoryScripture},
		{OriginalTerm: "gita", Transliteration: "Gītā", Confidence: 0.9, Category: lexicon.CategoryScripture},
	}

	store, err := lexicon.Load(rows, nil, true, bl)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	e, ok := store.Lookup("gita")
	if !ok {
		t.Fatalf("Lookup: not found")
	}
	if e.Canonical != "Gītā" {
		t.Errorf("Lookup(%q).Canonical = %q, want the higher-confidence entry", "gita", e.Canonical)
	}
}

func TestLoad_OverlayPriorityBreaksTieOnly(t *testing.T) {
	t.Parallel()

	bl := lexicon.DefaultBlocklist()
	storeRows := []lexicon.Row{
		{OriginalTerm: "vasistha", Transliteration: "Vāsiṣṭha-store", Confidence: 0.8, Category: lexicon.CategoryPerson},
	}
	overlayRows := []lexicon.Row{
		{OriginalTerm: "vasistha", Transliteration: "Vāsiṣṭha-overlay", Confidence: 0.8, AsrPriority: true, Category: lexicon.CategoryPerson},
	}

	store, err := lexicon.Load(storeRows, overlayRows, true, bl)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	e, _ := store.Lookup("vasistha")
	if e.Canonical != "Vāsiṣṭha-overlay" {
		t.Errorf("Lookup: got %q, want overlay entry to win the confidence tie", e.Canonical)
	}

	// A store row at strictly higher confidence still displaces the overlay.
	storeRows2 := []lexicon.Row{
		{OriginalTerm: "vasistha", Transliteration: "Vāsiṣṭha-store2", Confidence: 0.95, Category: lexicon.CategoryPerson},
	}
	store2, err := lexicon.Load(storeRows2, overlayRows, true, bl)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	e2, _ := store2.Lookup("vasistha")
	if e2.Canonical != "Vāsiṣṭha-store2" {
		t.Errorf("Lookup: got %q, want higher-confidence store entry to win", e2.Canonical)
	}
}

func TestLoad_RejectsBlocklistedCanonicalForm(t *testing.T) {
	t.Parallel()

	bl := lexicon.DefaultBlocklist()
	rows := []lexicon.Row{
		{OriginalTerm: "weird", Transliteration: "again", Confidence: 0.9, Category: lexicon.CategoryConcept},
	}

	store, err := lexicon.Load(rows, nil, true, bl)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := store.Lookup("weird"); ok {
		t.Errorf("Lookup(%q): entry with blocklisted canonical form should have been rejected", "weird")
	}
}

func TestLoad_DegradedModeWhenStoreUnavailable(t *testing.T) {
	t.Parallel()

	bl := lexicon.DefaultBlocklist()
	overlayRows := []lexicon.Row{
		{OriginalTerm: "jnana", Transliteration: "jñāna", Confidence: 0.8, Category: lexicon.CategoryConcept},
	}

	store, err := lexicon.Load(nil, overlayRows, false, bl)
	if err == nil {
		t.Fatalf("Load: want error wrapping ErrDegraded")
	}
	if !store.Degraded {
		t.Errorf("store.Degraded = false, want true")
	}
	if _, ok := store.Lookup("jnana"); !ok {
		t.Errorf("Lookup(%q): overlay entries must still be usable in degraded mode", "jnana")
	}
}

func TestViews_FilterByConfidenceAndCategory(t *testing.T) {
	t.Parallel()

	bl := lexicon.DefaultBlocklist()
	rows := []lexicon.Row{
		{OriginalTerm: "lowconf", Transliteration: "lowConf", Confidence: 0.4, Category: lexicon.CategoryConcept},
		{OriginalTerm: "krishna", Transliteration: "Kṛṣṇa", Confidence: 0.95, Category: lexicon.CategoryDeity},
		{OriginalTerm: "dharma", Transliteration: "Dharma", Confidence: 0.9, Category: lexicon.CategoryConcept},
	}
	store, err := lexicon.Load(rows, nil, true, bl)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	corrections := store.CorrectionsView()
	if _, ok := corrections.Lookup("lowconf"); ok {
		t.Errorf("CorrectionsView: low-confidence entry should be filtered out")
	}
	if _, ok := corrections.Lookup("dharma"); !ok {
		t.Errorf("CorrectionsView: high-confidence entry should be visible")
	}

	properNouns := store.ProperNounsView()
	if _, ok := properNouns.Lookup("dharma"); ok {
		t.Errorf("ProperNounsView: concept category should not be visible")
	}
	if _, ok := properNouns.Lookup("krishna"); !ok {
		t.Errorf("ProperNounsView: deity category should be visible")
	}
}
