package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path, overlaying it onto
// [Default]. A missing file is not an error — spec.md §6 requires every
// field to have a default and the file itself to be optional — Load simply
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r onto [Default], so that any field the
// document omits keeps its default value, then validates the result.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains coherent values, returning a joined
// error listing every problem found.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, checkUnitInterval("processing.fuzzy_matching.min_confidence", cfg.Processing.FuzzyMatching.MinConfidence)...)
	if cfg.Processing.FuzzyMatching.MaxEditDistance < 0 {
		errs = append(errs, fmt.Errorf("processing.fuzzy_matching.max_edit_distance %.2f must be >= 0", cfg.Processing.FuzzyMatching.MaxEditDistance))
	}

	errs = append(errs, checkUnitInterval("processing.english_context_processing.max_threshold", cfg.Processing.EnglishContextProcessing.MaxThreshold)...)

	t := cfg.ContextDetection.Thresholds
	errs = append(errs, checkUnitInterval("context_detection.thresholds.english_confidence", t.EnglishConfidence)...)
	errs = append(errs, checkUnitInterval("context_detection.thresholds.sanskrit_confidence", t.SanskritConfidence)...)
	errs = append(errs, checkUnitInterval("context_detection.thresholds.mixed_content", t.MixedContent)...)
	errs = append(errs, checkUnitInterval("context_detection.thresholds.whitelist_override", t.WhitelistOverride)...)
	errs = append(errs, checkUnitInterval("context_detection.thresholds.diacritical_density_high", t.DiacriticalDensityHigh)...)
	errs = append(errs, checkUnitInterval("context_detection.thresholds.diacritical_density_medium", t.DiacriticalDensityMedium)...)
	if t.DiacriticalDensityMedium > t.DiacriticalDensityHigh {
		errs = append(errs, fmt.Errorf("context_detection.thresholds.diacritical_density_medium (%.2f) must be <= diacritical_density_high (%.2f)", t.DiacriticalDensityMedium, t.DiacriticalDensityHigh))
	}

	if cfg.Caching.MaxMemoryMB < 0 {
		errs = append(errs, fmt.Errorf("caching.max_memory_mb %d must be >= 0", cfg.Caching.MaxMemoryMB))
	}
	if cfg.Caching.MaxCorrections < 0 {
		errs = append(errs, fmt.Errorf("caching.max_corrections %d must be >= 0", cfg.Caching.MaxCorrections))
	}
	if cfg.Caching.MaxProperNouns < 0 {
		errs = append(errs, fmt.Errorf("caching.max_proper_nouns %d must be >= 0", cfg.Caching.MaxProperNouns))
	}

	q := cfg.QA.Thresholds
	errs = append(errs, checkUnitInterval("qa.thresholds.high_confidence", q.HighConfidence)...)
	errs = append(errs, checkUnitInterval("qa.thresholds.medium_confidence", q.MediumConfidence)...)
	errs = append(errs, checkUnitInterval("qa.thresholds.low_confidence", q.LowConfidence)...)
	if q.LowConfidence > q.MediumConfidence || q.MediumConfidence > q.HighConfidence {
		errs = append(errs, fmt.Errorf("qa.thresholds must satisfy low_confidence (%.2f) <= medium_confidence (%.2f) <= high_confidence (%.2f)", q.LowConfidence, q.MediumConfidence, q.HighConfidence))
	}

	return errors.Join(errs...)
}

func checkUnitInterval(field string, v float64) []error {
	if v < 0 || v > 1 {
		return []error{fmt.Errorf("%s %.2f must be within [0, 1]", field, v)}
	}
	return nil
}
