package capitalize_test

import (
	"testing"

	"github.com/dharmapada/subcorrect/internal/correct/capitalize"
)

func TestPreserve_PreserveExactIgnoresOriginalCasing(t *testing.T) {
	t.Parallel()

	got := capitalize.Preserve("YOGA VASISTHA", "yoga vāsiṣṭha", true)
	if got != "yoga vāsiṣṭha" {
		t.Errorf("Preserve = %q, want unchanged canonical form", got)
	}
}

func TestPreserve_AllUpperOriginal(t *testing.T) {
	t.Parallel()

	got := capitalize.Preserve("KRISHNA", "krishna", false)
	if got != "KRISHNA" {
		t.Errorf("Preserve = %q, want KRISHNA", got)
	}
}

func TestPreserve_TitleCaseOriginal(t *testing.T) {
	t.Parallel()

	got := capitalize.Preserve("Yoga Vasistha", "yoga vāsiṣṭha", false)
	if got != "Yoga Vāsiṣṭha" {
		t.Errorf("Preserve = %q, want Yoga Vāsiṣṭha", got)
	}
}

func TestPreserve_LowercaseOriginalReturnsCorrectionUnchanged(t *testing.T) {
	t.Parallel()

	got := capitalize.Preserve("dharma", "dharma", false)
	if got != "dharma" {
		t.Errorf("Preserve = %q, want dharma", got)
	}
}

func TestPreserve_SingleCharUpperIsNotAllUpper(t *testing.T) {
	t.Parallel()

	got := capitalize.Preserve("A", "aum", false)
	if got != "Aum" {
		t.Errorf("Preserve = %q, want title-cased Aum (length < 2 doesn't count as all-upper)", got)
	}
}

func TestPreserve_DiacriticsCountAsLettersForCase(t *testing.T) {
	t.Parallel()

	got := capitalize.Preserve("Śivāya", "śivāya", false)
	if got != "Śivāya" {
		t.Errorf("Preserve = %q, want Śivāya", got)
	}
}
