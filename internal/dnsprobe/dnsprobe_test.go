package dnsprobe

import (
	"strings"
	"testing"
)

func TestRandomHexLabel_LengthAndAlphabet(t *testing.T) {
	t.Parallel()

	label, err := randomHexLabel(24)
	if err != nil {
		t.Fatalf("randomHexLabel: %v", err)
	}
	if len(label) != 24 {
		t.Fatalf("len=%d, want 24", len(label))
	}
	if strings.Trim(label, "0123456789abcdef") != "" {
		t.Fatalf("label %q contains non-hex characters", label)
	}
}

func TestRandomHexLabel_Uniqueness(t *testing.T) {
	t.Parallel()

	a, _ := randomHexLabel(24)
	b, _ := randomHexLabel(24)
	if a == b {
		t.Fatalf("expected distinct random labels, got %q twice", a)
	}
}

func TestParseDMARCTags(t *testing.T) {
	t.Parallel()

	tags := parseDMARCTags("v=DMARC1; p=reject; rua=mailto:dmarc@example.com; pct=100")
	want := map[string]string{
		"v":   "DMARC1",
		"p":   "reject",
		"rua": "mailto:dmarc@example.com",
		"pct": "100",
	}
	for k, v := range want {
		if tags[k] != v {
			t.Errorf("tags[%q]=%q, want %q", k, tags[k], v)
		}
	}
}

func TestErrNoRecords_Message(t *testing.T) {
	t.Parallel()

	err := &ErrNoRecords{Name: "example.com"}
	if !strings.Contains(err.Error(), "example.com") {
		t.Fatalf("error message missing name: %q", err.Error())
	}
}

func TestErrTLDFalsePositive_Message(t *testing.T) {
	t.Parallel()

	err := &ErrTLDFalsePositive{Name: "foo.bar", TLD: "bar"}
	if !strings.Contains(err.Error(), "foo.bar") || !strings.Contains(err.Error(), "bar") {
		t.Fatalf("error message missing fields: %q", err.Error())
	}
}
