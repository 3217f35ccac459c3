package lexicon

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// overlayFile is the top-level structure of a lexicon overlay YAML file
// (spec.md §6 "Lexicon overlay files"): tagged records under an "entries"
// section and an optional, legacy "asr_corrections" section. Both sections
// share the same record shape and are merged without distinction once
// loaded — the split exists in the file format for human organisation only.
type overlayFile struct {
	Entries        []overlayRecord `yaml:"entries"`
	ASRCorrections []overlayRecord `yaml:"asr_corrections"`
}

// overlayRecord mirrors the tabular store's columns plus asr_priority.
type overlayRecord struct {
	OriginalTerm    string   `yaml:"original_term"`
	Variations      []string `yaml:"variations"`
	Transliteration string   `yaml:"transliteration"`
	Category        string   `yaml:"category"`
	Confidence      float64  `yaml:"confidence"`
	ContextClues    []string `yaml:"context_clues"`
	IsCompound      bool     `yaml:"is_compound"`
	ASRCommonError  bool     `yaml:"asr_common_error"`
	ErrorType       string   `yaml:"error_type"`
	FrequencyRating string   `yaml:"frequency_rating"`
	SourceAuthority string   `yaml:"source_authority"`
	DifficultyLevel string   `yaml:"difficulty_level"`
	ASRPriority     bool     `yaml:"asr_priority"`
}

// LoadOverlay reads a lexicon overlay YAML file from disk and returns its
// records as [Row] values ready for [Load]. A malformed overlay file is a
// data error per spec.md §7: the caller should log it and continue with
// whatever overlays did load, not abort the run.
func LoadOverlay(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: open overlay %q: %w", path, err)
	}
	defer f.Close()

	rows, err := LoadOverlayFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("lexicon: parse overlay %q: %w", path, err)
	}
	return rows, nil
}

// LoadOverlayFromReader parses overlay YAML from r.
func LoadOverlayFromReader(r io.Reader) ([]Row, error) {
	var of overlayFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&of); err != nil {
		return nil, fmt.Errorf("lexicon: decode overlay yaml: %w", err)
	}

	records := make([]overlayRecord, 0, len(of.Entries)+len(of.ASRCorrections))
	records = append(records, of.Entries...)
	records = append(records, of.ASRCorrections...)

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Row{
			OriginalTerm:    rec.OriginalTerm,
			Variations:      rec.Variations,
			Transliteration: rec.Transliteration,
			Category:        Category(rec.Category),
			Confidence:      rec.Confidence,
			ContextClues:    rec.ContextClues,
			IsCompound:      rec.IsCompound,
			ASRCommonError:  rec.ASRCommonError,
			ErrorType:       rec.ErrorType,
			FrequencyRating: rec.FrequencyRating,
			SourceAuthority: rec.SourceAuthority,
			DifficultyLevel: rec.DifficultyLevel,
			AsrPriority:     rec.ASRPriority,
		})
	}
	return rows, nil
}

// LoadOverlays loads and concatenates rows from multiple overlay files,
// skipping (and logging via the returned errs slice) any file that fails to
// parse rather than aborting the whole load.
func LoadOverlays(paths []string) (rows []Row, errs []error) {
	for _, p := range paths {
		r, err := LoadOverlay(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, r...)
	}
	return rows, errs
}
