package config_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/dharmapada/subcorrect/internal/config"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ContextDetection.Thresholds.EnglishConfidence != config.Default().ContextDetection.Thresholds.EnglishConfidence {
		t.Errorf("Load: missing file should yield defaults")
	}
}

func TestLoadFromReader_OverlaysOntoDefaults(t *testing.T) {
	t.Parallel()

	doc := `
context_detection:
  thresholds:
    english_confidence: 0.75
`
	cfg, err := config.LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.ContextDetection.Thresholds.EnglishConfidence != 0.75 {
		t.Errorf("EnglishConfidence = %v, want 0.75", cfg.ContextDetection.Thresholds.EnglishConfidence)
	}
	// Untouched field should retain its default.
	if cfg.ContextDetection.Thresholds.SanskritConfidence != config.Default().ContextDetection.Thresholds.SanskritConfidence {
		t.Errorf("SanskritConfidence should remain at default when omitted from the document")
	}
	if len(cfg.ContextDetection.Markers.SanskritPriorityTerms) == 0 {
		t.Errorf("SanskritPriorityTerms should remain at default when omitted from the document")
	}
}

func TestLoadFromReader_RejectsUnknownField(t *testing.T) {
	t.Parallel()

	doc := `
processing:
  typo_field: true
`
	if _, err := config.LoadFromReader(strings.NewReader(doc)); err == nil {
		t.Errorf("LoadFromReader: want error for unknown field")
	}
}

func TestValidate_RejectsOutOfRangeThreshold(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.ContextDetection.Thresholds.EnglishConfidence = 1.5

	err := config.Validate(cfg)
	if err == nil {
		t.Fatalf("Validate: want error for out-of-range threshold")
	}
	if !strings.Contains(err.Error(), "english_confidence") {
		t.Errorf("Validate error = %v, want mention of english_confidence", err)
	}
}

func TestValidate_RejectsInvertedQAThresholds(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.QA.Thresholds.LowConfidence = 0.95

	if err := config.Validate(cfg); err == nil {
		t.Errorf("Validate: want error for inverted qa thresholds")
	}
}

func TestValidate_JoinsMultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.ContextDetection.Thresholds.EnglishConfidence = 2
	cfg.Caching.MaxMemoryMB = -1

	err := config.Validate(cfg)
	if err == nil {
		t.Fatalf("Validate: want joined error")
	}
	if !strings.Contains(err.Error(), "english_confidence") || !strings.Contains(err.Error(), "max_memory_mb") {
		t.Errorf("Validate error = %v, want both violations listed", err)
	}
}
