package permute

import "testing"

func TestGenerate_CoversCoreStrategies(t *testing.T) {
	t.Parallel()

	g := New(Options{})
	cands := g.Generate("example.com")
	if len(cands) == 0 {
		t.Fatalf("expected candidates, got none")
	}

	byKind := map[string]bool{}
	for _, c := range cands {
		byKind[c.Kind] = true
		if c.TLD == "" {
			t.Fatalf("candidate %+v has empty tld", c)
		}
	}

	for _, kind := range []string{"Bitsquatting", "Homoglyph", "Hyphenation", "Transposition", "Tld"} {
		if !byKind[kind] {
			t.Fatalf("expected at least one %s candidate, got kinds: %v", kind, byKind)
		}
	}
}

func TestGenerate_NoDuplicates(t *testing.T) {
	t.Parallel()

	g := New(Options{})
	cands := g.Generate("example.com")

	seen := map[string]bool{}
	for _, c := range cands {
		key := c.Kind + "|" + c.FQDN
		if seen[key] {
			t.Fatalf("duplicate candidate: %s", key)
		}
		seen[key] = true
	}
}

func TestGenerate_TldSwapKeepsLabel(t *testing.T) {
	t.Parallel()

	g := New(Options{AlternativeTLDs: []string{"net", "org"}})
	cands := g.Generate("example.com")

	found := false
	for _, c := range cands {
		if c.Kind == "Tld" && c.FQDN == "example.net" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected example.net Tld candidate")
	}
}

func TestGenerate_InvalidDomain(t *testing.T) {
	t.Parallel()

	g := New(Options{})
	if cands := g.Generate("nodot"); cands != nil {
		t.Fatalf("expected nil for domain without a tld, got %v", cands)
	}
}
