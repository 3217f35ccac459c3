package lexicon_test

import (
	"strings"
	"testing"

	"github.com/dharmapada/subcorrect/internal/lexicon"
)

const overlayYAML = `
entries:
  - original_term: vasistha
    variations: ["vashishtha"]
    transliteration: "Vāsiṣṭha"
    category: person
    confidence: 0.9
    is_compound: false
asr_corrections:
  - original_term: gitaa
    transliteration: "Gītā"
    category: scripture
    confidence: 0.85
    asr_common_error: true
    asr_priority: true
`

func TestLoadOverlayFromReader_MergesSections(t *testing.T) {
	t.Parallel()

	rows, err := lexicon.LoadOverlayFromReader(strings.NewReader(overlayYAML))
	if err != nil {
		t.Fatalf("LoadOverlayFromReader: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("LoadOverlayFromReader: got %d rows, want 2", len(rows))
	}

	var sawVasistha, sawGitaa bool
	for _, r := range rows {
		switch r.OriginalTerm {
		case "vasistha":
			sawVasistha = true
			if r.Transliteration != "Vāsiṣṭha" || len(r.Variations) != 1 {
				t.Errorf("vasistha row = %+v", r)
			}
		case "gitaa":
			sawGitaa = true
			if !r.AsrPriority {
				t.Errorf("gitaa row: AsrPriority = false, want true")
			}
		}
	}
	if !sawVasistha || !sawGitaa {
		t.Errorf("LoadOverlayFromReader: missing expected rows, got %+v", rows)
	}
}

func TestLoadOverlayFromReader_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	bad := `
entries:
  - original_term: x
    nonsense_field: 1
`
	if _, err := lexicon.LoadOverlayFromReader(strings.NewReader(bad)); err == nil {
		t.Errorf("LoadOverlayFromReader: want error for unknown field")
	}
}
