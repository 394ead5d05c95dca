package fuzzy

import (
	"math"
	"testing"
)

func TestScore_IdenticalDomains(t *testing.T) {
	t.Parallel()

	s := Score("google.com", "google.com")
	if s.LevenshteinNormalized != 1.0 {
		t.Errorf("levenshtein_normalized=%v, want 1.0", s.LevenshteinNormalized)
	}
	if s.JaroWinkler != 1.0 {
		t.Errorf("jaro_winkler=%v, want 1.0", s.JaroWinkler)
	}
	if s.Levenshtein != 0 {
		t.Errorf("levenshtein=%v, want 0", s.Levenshtein)
	}
	if s.CharDiff != 0 {
		t.Errorf("char_diff=%v, want 0", s.CharDiff)
	}
}

func TestScore_ExampleFromSpec(t *testing.T) {
	t.Parallel()

	s := Score("google.com", "googIe.com")
	if s.CharDiff != 1 {
		t.Errorf("char_diff=%d, want 1", s.CharDiff)
	}
	if s.Levenshtein != 1 {
		t.Errorf("levenshtein=%d, want 1", s.Levenshtein)
	}
	if s.JaroWinkler < 0.9 {
		t.Errorf("jaro_winkler=%v, want >= 0.9", s.JaroWinkler)
	}
}

func TestLevenshteinDistance_Symmetric(t *testing.T) {
	t.Parallel()

	a := Score("paypal.com", "paypa1.com")
	b := Score("paypa1.com", "paypal.com")
	if a.Levenshtein != b.Levenshtein {
		t.Errorf("levenshtein not symmetric: %d vs %d", a.Levenshtein, b.Levenshtein)
	}
}

func TestJaro_EmptyStrings(t *testing.T) {
	t.Parallel()

	if j := jaro("", "anything"); j != 0.0 {
		t.Errorf("jaro with empty string=%v, want 0", j)
	}
	if j := jaro("", ""); j != 1.0 {
		t.Errorf("jaro of two empty strings=%v, want 1", j)
	}
}

func TestCharDiff_PadsShorterString(t *testing.T) {
	t.Parallel()

	if d := charDiff("abc", "ab"); d != 1 {
		t.Errorf("charDiff(abc, ab)=%d, want 1", d)
	}
}

func TestKeyboardProximity_AdjacentKeysScoreHigherThanFarKeys(t *testing.T) {
	t.Parallel()

	adjacent := keyboardProximity("paypal", "paypak")
	far := keyboardProximity("paypal", "paypaz")
	if adjacent <= far {
		t.Errorf("expected adjacent-key swap (%v) to score higher than distant-key swap (%v)", adjacent, far)
	}
}

func TestNormalizedLevenshtein_BothEmpty(t *testing.T) {
	t.Parallel()

	if n := normalizedLevenshtein("", "", 0); n != 1.0 {
		t.Errorf("normalizedLevenshtein(\"\", \"\")=%v, want 1.0", n)
	}
}

func TestScore_ScoresWithinExpectedRanges(t *testing.T) {
	t.Parallel()

	s := Score("example.com", "totally-different-thing.net")
	if s.JaroWinkler < 0 || s.JaroWinkler > 1 {
		t.Errorf("jaro_winkler out of range: %v", s.JaroWinkler)
	}
	if s.LevenshteinNormalized < 0 || s.LevenshteinNormalized > 1 {
		t.Errorf("levenshtein_normalized out of range: %v", s.LevenshteinNormalized)
	}
	if math.IsNaN(s.KeyboardProximity) {
		t.Errorf("keyboard_proximity is NaN")
	}
}
