package lexicon

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// ErrDegraded is a sentinel wrapped into the error returned by [Load] when
// the on-disk tabular store could not be opened; the returned [Store] is
// still usable in overlay-only mode, per spec.md §4.B "Failure semantics".
var ErrDegraded = errors.New("lexicon: tabular store unavailable, running overlay-only")

// Row is one raw record from either the on-disk tabular store or an overlay
// file, mirroring the columns of spec.md §6 "Lexicon tabular store".
type Row struct {
	OriginalTerm     string
	Variations       []string
	Transliteration  string
	Category         Category
	Confidence       float64
	ContextClues     []string
	IsCompound       bool
	ASRCommonError   bool
	ErrorType        string
	FrequencyRating  string
	SourceAuthority  string
	DifficultyLevel  string

	// AsrPriority elevates an overlay record above a store record of equal
	// confidence (spec.md §6 "Lexicon overlay files"). Always false for
	// rows sourced from the tabular store.
	AsrPriority bool

	// fromOverlay distinguishes overlay-sourced rows for invariant 4 of
	// spec.md §3 (store may only override overlay on strictly higher
	// confidence).
	fromOverlay bool
}

// Store is the in-memory, read-only-after-load lexicon: a hash map from
// lowercased lookup key to the (possibly shared) [Entry] it resolves to.
// Safe for concurrent reads; [Store.AddOverlayEntry] takes a write lock for
// the rare runtime addition described in spec.md §4.B.
type Store struct {
	mu    sync.RWMutex
	byKey map[string]*Entry

	// Degraded is true when the tabular store could not be loaded and the
	// Store holds only overlay entries.
	Degraded bool
}

// View restricts [Store.Lookup] to entries satisfying a predicate — the
// "corrections" and "proper nouns" views of spec.md §4.B.
type View struct {
	store     *Store
	predicate func(*Entry) bool
}

// Lookup returns the entry for key if one exists and satisfies the view's
// predicate.
func (v View) Lookup(key string) (*Entry, bool) {
	e, ok := v.store.Lookup(key)
	if !ok || !v.predicate(e) {
		return nil, false
	}
	return e, true
}

// CorrectionsView returns the "any category, confidence ≥ 0.7" view used for
// general word-level correction (spec.md §4.H step 6.c).
func (s *Store) CorrectionsView() View {
	return View{store: s, predicate: func(e *Entry) bool { return e.Confidence >= 0.7 }}
}

// ProperNounsView returns the "category ∈ {deity, person, place}" view used
// for English-context proper-noun-only lookups (spec.md §4.H step 6.b).
func (s *Store) ProperNounsView() View {
	return View{store: s, predicate: func(e *Entry) bool {
		switch e.Category {
		case CategoryDeity, CategoryPerson, CategoryPlace:
			return true
		}
		return false
	}}
}

// Lookup returns the entry keyed by the already-lowercased key, per the
// O(1)-average contract of spec.md §4.B.
func (s *Store) Lookup(key string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byKey[key]
	return e, ok
}

// Len returns the number of distinct lookup keys held by the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey)
}

// Load builds a [Store] from tabular store rows and overlay rows, applying
// the conflict-resolution and rejection rules of spec.md §3 invariants 2–4
// and §4.B. storeRows should come from [OpenTabularStore]; overlayRows from
// [LoadOverlay]. bl rejects any row whose canonical form is itself a
// blocklisted English word (invariant 3).
//
// When storeAvailable is false, the returned Store is marked Degraded and
// Load returns a non-nil error wrapping [ErrDegraded]; the Store itself is
// still fully usable (overlay-only), matching the "no exception is fatal to
// startup" requirement.
func Load(storeRows, overlayRows []Row, storeAvailable bool, bl *Blocklist) (*Store, error) {
	s := &Store{byKey: make(map[string]*Entry), Degraded: !storeAvailable}

	for i := range overlayRows {
		overlayRows[i].fromOverlay = true
	}

	// Overlay loads first conceptually, but since resolution is symmetric
	// (decided per pair by confidence + priority) we can simply replay both
	// sets through one conflict-resolving loader, overlay rows last so that
	// equal-confidence ties with AsrPriority correctly override.
	all := make([]Row, 0, len(storeRows)+len(overlayRows))
	all = append(all, storeRows...)
	all = append(all, overlayRows...)

	for _, row := range all {
		if err := s.ingest(row, bl); err != nil {
			slog.Warn("lexicon: skipping invalid row", "term", row.OriginalTerm, "err", err)
		}
	}

	if !storeAvailable {
		return s, fmt.Errorf("lexicon: load: %w", ErrDegraded)
	}
	return s, nil
}

// ingest validates row and merges it into the store, expanding variations
// into secondary index entries per spec.md §3 invariant 1 and resolving key
// collisions per invariant 2 and 4.
func (s *Store) ingest(row Row, bl *Blocklist) error {
	if row.OriginalTerm == "" || row.Transliteration == "" {
		return errors.New("missing original_term or transliteration")
	}
	if row.Category != "" && !row.Category.IsValid() {
		return fmt.Errorf("invalid category %q", row.Category)
	}
	if bl.Contains(row.Transliteration) {
		return fmt.Errorf("canonical form %q is a blocklisted English word", row.Transliteration)
	}

	entry := &Entry{
		Canonical:              row.Transliteration,
		Variations:             row.Variations,
		Category:               row.Category,
		Confidence:             row.Confidence,
		IsCompound:             row.IsCompound,
		ASRCommonError:         row.ASRCommonError,
		PreserveCapitalization: row.IsCompound,
		ErrorType:              row.ErrorType,
	}

	keys := make([]string, 0, len(row.Variations)+1)
	keys = append(keys, strings.ToLower(row.OriginalTerm))
	for _, v := range row.Variations {
		keys = append(keys, strings.ToLower(v))
	}

	for _, key := range keys {
		s.mu.Lock()
		existing, exists := s.byKey[key]
		if !exists || s.shouldOverride(existing, entry, row) {
			s.byKey[key] = entry
		} else if exists && existing.Canonical != entry.Canonical {
			slog.Warn("lexicon: key collision, keeping higher-confidence entry",
				"key", key, "kept", existing.Canonical, "rejected", entry.Canonical)
		}
		s.mu.Unlock()
	}
	return nil
}

// shouldOverride implements spec.md §3 invariants 2 and 4: the
// higher-confidence entry wins; when confidences tie, an overlay row with
// AsrPriority set wins, and a tabular-store row may only displace an overlay
// row on strictly higher confidence.
func (s *Store) shouldOverride(existing, candidate *Entry, row Row) bool {
	if candidate.Confidence > existing.Confidence {
		return true
	}
	if candidate.Confidence < existing.Confidence {
		return false
	}
	// Equal confidence.
	if row.fromOverlay && row.AsrPriority {
		return true
	}
	return false
}

// CandidatesByPrefixes returns distinct canonical forms from entries
// satisfying the view's predicate whose first rune (lowercased) is one of
// prefixes and whose length exceeds minLen, capped at limit and sorted for
// determinism. Used by the fuzzy matcher's candidate-selection step
// (spec.md §4.C "restricted to the longer-than-three-character entries...
// capped at a small constant").
func (v View) CandidatesByPrefixes(prefixes []rune, minLen, limit int) []string {
	prefixSet := make(map[rune]struct{}, len(prefixes))
	for _, r := range prefixes {
		prefixSet[r] = struct{}{}
	}
	return v.store.candidatesByPrefixes(prefixSet, minLen, limit, v.predicate)
}

func (s *Store) candidatesByPrefixes(prefixes map[rune]struct{}, minLen, limit int, predicate func(*Entry) bool) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[*Entry]struct{})
	var out []string
	for _, e := range s.byKey {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		if !predicate(e) {
			continue
		}
		runes := []rune(strings.ToLower(e.Canonical))
		if len(runes) == 0 || len(runes) <= minLen {
			continue
		}
		if _, ok := prefixes[runes[0]]; !ok {
			continue
		}
		out = append(out, e.Canonical)
	}

	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// AddOverlayEntry merges a single row into the store at runtime — the
// "small overlay allows runtime additions that live only for the process"
// behaviour of spec.md §4.B.
func (s *Store) AddOverlayEntry(row Row, bl *Blocklist) error {
	row.fromOverlay = true
	return s.ingest(row, bl)
}
