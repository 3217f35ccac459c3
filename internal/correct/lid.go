package correct

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LIDRecord is one segment's language-identification metadata (spec.md §6
// "LID metadata file").
type LIDRecord struct {
	Language   string
	Confidence float64
	Source     string
	Start      time.Duration
	End        time.Duration
	Duration   time.Duration
}

// LIDMap maps segment number to its LID record.
type LIDMap map[int]LIDRecord

// lidFile mirrors the on-disk YAML shape of the LID metadata file: a map
// keyed by segment number, mirroring the overlay loader's tagged-record
// approach in internal/lexicon/overlay.go.
type lidFile struct {
	Segments map[int]lidFileRecord `yaml:"segments"`
}

type lidFileRecord struct {
	Language           string  `yaml:"language"`
	LanguageConfidence float64 `yaml:"language_confidence"`
	Source             string  `yaml:"source"`
	StartTime          float64 `yaml:"start_time"`
	EndTime            float64 `yaml:"end_time"`
	DurationSeconds    float64 `yaml:"duration"`
}

// LoadLIDMetadata reads the optional LID metadata file at path. A missing
// file is not an error — LID-aware routing is simply disabled — matching
// the "presence of this file... automatically enables LID-aware routing"
// wording of spec.md §6.
func LoadLIDMetadata(path string) (LIDMap, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("correct: open lid metadata %q: %w", path, err)
	}
	defer f.Close()
	return LoadLIDMetadataFromReader(f)
}

// LoadLIDMetadataFromReader parses LID metadata YAML from r.
func LoadLIDMetadataFromReader(r io.Reader) (LIDMap, error) {
	var doc lidFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("correct: decode lid metadata: %w", err)
	}

	m := make(LIDMap, len(doc.Segments))
	for seg, rec := range doc.Segments {
		m[seg] = LIDRecord{
			Language:   rec.Language,
			Confidence: rec.LanguageConfidence,
			Source:     rec.Source,
			Start:      time.Duration(rec.StartTime * float64(time.Second)),
			End:        time.Duration(rec.EndTime * float64(time.Second)),
			Duration:   time.Duration(rec.DurationSeconds * float64(time.Second)),
		}
	}
	return m, nil
}
