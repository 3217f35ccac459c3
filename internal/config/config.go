// Package config provides the configuration schema and loader for the
// subtitle correction pipeline (spec.md §6 "Configuration").
//
// Every field has a default (see [Default]); the configuration file itself
// may be absent, in which case [Load] returns the defaults unchanged.
package config

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Processing       ProcessingConfig       `yaml:"processing"`
	ContextDetection ContextDetectionConfig `yaml:"context_detection"`
	Caching          CachingConfig          `yaml:"caching"`
	QA               QAConfig               `yaml:"qa"`
}

// ProcessingConfig controls the driver's top-level behaviour (spec.md §4.H).
type ProcessingConfig struct {
	DevanagariToIAST         bool                     `yaml:"devanagari_to_iast"`
	UseIASTDiacritics        bool                     `yaml:"use_iast_diacritics"`
	EnablePhraseMatcher      bool                     `yaml:"enable_phrase_matcher"`
	FuzzyMatching            FuzzyMatchingConfig      `yaml:"fuzzy_matching"`
	EnglishContextProcessing EnglishContextProcessing `yaml:"english_context_processing"`
}

// FuzzyMatchingConfig tunes component C (spec.md §4.C).
type FuzzyMatchingConfig struct {
	Enabled         bool    `yaml:"enabled"`
	MaxEditDistance float64 `yaml:"max_edit_distance"`
	MinConfidence   float64 `yaml:"min_confidence"`
}

// EnglishContextProcessing tunes how aggressively the driver corrects words
// inside a segment the classifier has tagged "english" (spec.md §4.H step 6.b).
type EnglishContextProcessing struct {
	EnableLexiconCorrections bool    `yaml:"enable_lexicon_corrections"`
	ThresholdIncrease        float64 `yaml:"threshold_increase"`
	MaxThreshold             float64 `yaml:"max_threshold"`
	ProperNounsOnly          bool    `yaml:"proper_nouns_only"`
}

// ContextDetectionConfig tunes component E (spec.md §4.E).
type ContextDetectionConfig struct {
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Markers    MarkersConfig    `yaml:"markers"`
}

// ThresholdsConfig holds every tunable threshold the layered classifier
// checks against, in the order spec.md §4.E evaluates its layers.
type ThresholdsConfig struct {
	EnglishConfidence        float64 `yaml:"english_confidence"`
	SanskritConfidence       float64 `yaml:"sanskrit_confidence"`
	MixedContent             float64 `yaml:"mixed_content"`
	WhitelistOverride        float64 `yaml:"whitelist_override"`
	DiacriticalDensityHigh   float64 `yaml:"diacritical_density_high"`
	DiacriticalDensityMedium float64 `yaml:"diacritical_density_medium"`
	EnglishMarkersRequired   int     `yaml:"english_markers_required"`
}

// MarkersConfig holds the configurable word lists the classifier scores
// segments against.
type MarkersConfig struct {
	SanskritPriorityTerms []string `yaml:"sanskrit_priority_terms"`
	EnglishFunctionWords  []string `yaml:"english_function_words"`
	SanskritDiacriticals  []string `yaml:"sanskrit_diacriticals"`
	SanskritSacredTerms   []string `yaml:"sanskrit_sacred_terms"`
}

// CachingConfig bounds the process-local caches of spec.md §5.
type CachingConfig struct {
	Enabled        bool `yaml:"enabled"`
	MaxCorrections int  `yaml:"max_corrections"`
	MaxProperNouns int  `yaml:"max_proper_nouns"`
	MaxMemoryMB    int  `yaml:"max_memory_mb"`
}

// QAConfig controls the quality reporter, component I (spec.md §4.I).
type QAConfig struct {
	Enabled    bool         `yaml:"enabled"`
	Thresholds QAThresholds `yaml:"thresholds"`
}

// QAThresholds classifies a segment's overall confidence for reporting
// purposes.
type QAThresholds struct {
	HighConfidence   float64 `yaml:"high_confidence"`
	MediumConfidence float64 `yaml:"medium_confidence"`
	LowConfidence    float64 `yaml:"low_confidence"`
}

// Default returns the built-in configuration, used whenever a field — or
// the entire file — is absent.
func Default() *Config {
	return &Config{
		Processing: ProcessingConfig{
			DevanagariToIAST:    true,
			UseIASTDiacritics:   true,
			EnablePhraseMatcher: true,
			FuzzyMatching: FuzzyMatchingConfig{
				Enabled:         true,
				MaxEditDistance: 2,
				MinConfidence:   0.6,
			},
			EnglishContextProcessing: EnglishContextProcessing{
				EnableLexiconCorrections: true,
				ThresholdIncrease:        0.15,
				MaxThreshold:             0.95,
				ProperNounsOnly:          false,
			},
		},
		ContextDetection: ContextDetectionConfig{
			Thresholds: ThresholdsConfig{
				EnglishConfidence:        0.8,
				SanskritConfidence:       0.6,
				MixedContent:             0.5,
				WhitelistOverride:        0.9,
				DiacriticalDensityHigh:   0.3,
				DiacriticalDensityMedium: 0.1,
				EnglishMarkersRequired:   2,
			},
			Markers: MarkersConfig{
				SanskritPriorityTerms: []string{
					"dharma", "karma", "yoga", "jñāna", "jnana", "brahman",
					"guru", "mantra", "yogavāsiṣṭha", "yogavasistha", "śivāśiṣṭha",
					"shivashistha", "gītā", "gita", "upaniṣad", "upanishad",
				},
				EnglishFunctionWords: []string{
					"the", "and", "is", "are", "was", "were", "be", "being", "been",
					"have", "has", "had", "do", "does", "did", "will", "would", "could",
					"should", "may", "might", "can", "a", "an", "or", "but", "in", "on",
					"at", "by", "to", "of", "with", "from", "about",
				},
				SanskritDiacriticals: []string{
					"ā", "ī", "ū", "ṛ", "ṝ", "ḷ", "ṅ", "ñ", "ṇ", "ṭ", "ḍ", "ś", "ṣ", "ḥ", "ṁ",
				},
				SanskritSacredTerms: []string{
					"oṁ", "oṃ", "namaḥ", "namah", "śrī", "sri", "mahā", "maha",
					"bhagavad", "gītā", "gita", "rāmāyaṇa", "ramayana", "kṛṣṇa",
					"krishna", "rāma", "rama", "vedanta",
				},
			},
		},
		Caching: CachingConfig{
			Enabled:        true,
			MaxCorrections: 10000,
			MaxProperNouns: 5000,
			MaxMemoryMB:    20,
		},
		QA: QAConfig{
			Enabled: true,
			Thresholds: QAThresholds{
				HighConfidence:   0.9,
				MediumConfidence: 0.7,
				LowConfidence:    0.5,
			},
		},
	}
}
