package coordinator

import (
	"context"
	"testing"

	"github.com/benithors/dnstwistgo/internal/dnsprobe"
	"github.com/benithors/dnstwistgo/internal/scantypes"
)

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := defaultOptions(scantypes.ScanOptions{})
	if opts.MaxConcurrency <= 0 {
		t.Fatalf("expected positive default concurrency, got %d", opts.MaxConcurrency)
	}
	if opts.TimeoutPerCandidate != 15_000 {
		t.Fatalf("timeout=%d, want 15000", opts.TimeoutPerCandidate)
	}
}

func TestDefaultOptions_PreservesExplicitValues(t *testing.T) {
	t.Parallel()

	opts := defaultOptions(scantypes.ScanOptions{MaxConcurrency: 4, TimeoutPerCandidate: 5000, Ordered: true})
	if opts.MaxConcurrency != 4 {
		t.Fatalf("concurrency=%d, want 4", opts.MaxConcurrency)
	}
	if opts.TimeoutPerCandidate != 5000 {
		t.Fatalf("timeout=%d, want 5000", opts.TimeoutPerCandidate)
	}
	if !opts.Ordered {
		t.Fatalf("expected Ordered to be preserved")
	}
}

func TestConvertMX(t *testing.T) {
	t.Parallel()

	in := []dnsprobe.MXRecord{{Priority: 10, Server: "mx1.example.com"}, {Priority: 20, Server: "mx2.example.com"}}
	out := convertMX(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[0].Priority != 10 || out[0].Server != "mx1.example.com" {
		t.Fatalf("unexpected first record: %+v", out[0])
	}
}

type fakePermutationSource struct {
	candidates []scantypes.Candidate
}

func (f fakePermutationSource) Generate(domain string) []scantypes.Candidate {
	return f.candidates
}

func TestAnalyzeChunk_EmptyCandidateList(t *testing.T) {
	t.Parallel()

	// No DNS client is wired here; runPipeline's Resolve call will be
	// invoked through c.DNS which is nil-unsafe, so AnalyzeChunk itself
	// is only exercised end-to-end via an empty candidate list. The
	// filtering contract it delegates to is covered directly against
	// synthetic ScanResult values in TestFilterResults below, and the
	// pipeline's individual stages are covered by the dnsprobe/httpprobe/
	// content/fuzzy unit tests.
	c := &Coordinator{Permutations: fakePermutationSource{candidates: nil}}
	results := c.AnalyzeChunk(context.Background(), "example.com", nil, scantypes.ScanOptions{})
	if len(results) != 0 {
		t.Fatalf("expected no results for empty candidate list, got %d", len(results))
	}
}

func TestFilterResults(t *testing.T) {
	t.Parallel()

	target := "example.com"
	collected := []*scantypes.ScanResult{
		nil, // dropped probe (timeout or unresolvable)
		{FQDN: target},
		{FQDN: "examp1e.com", MXRecords: nil},
		{FQDN: "exampl3.com", MXRecords: []scantypes.MXRecord{{Priority: 10, Server: "mx.exampl3.com"}}},
	}

	all := filterResults(collected, target, scantypes.ScanOptions{})
	if len(all) != 2 {
		t.Fatalf("all=%v, want 2 results (target and nil dropped)", all)
	}
	for _, r := range all {
		if r.FQDN == target {
			t.Fatalf("target domain %q leaked into results: %+v", target, r)
		}
	}

	mxOnly := filterResults(collected, target, scantypes.ScanOptions{MXOnly: true})
	if len(mxOnly) != 1 || mxOnly[0].FQDN != "exampl3.com" {
		t.Fatalf("mxOnly=%v, want only exampl3.com (has MX records)", mxOnly)
	}
}
