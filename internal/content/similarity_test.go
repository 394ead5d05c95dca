package content

import (
	"context"
	"testing"
)

func TestCompareRaw_IdenticalDocuments(t *testing.T) {
	t.Parallel()

	html := `<html><body><h1>Welcome to Example</h1><p>Some sample paragraph text here.</p></body></html>`
	target, err := BuildFingerprintFromRaw("example.com", html)
	if err != nil {
		t.Fatalf("BuildFingerprintFromRaw: %v", err)
	}

	score := CompareRaw(html, target)
	if score.Score != 100 {
		t.Fatalf("score=%d, want 100 for identical documents", score.Score)
	}
}

func TestCompareRaw_Disjoint(t *testing.T) {
	t.Parallel()

	target, err := BuildFingerprintFromRaw("example.com", `<html><body>aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa</body></html>`)
	if err != nil {
		t.Fatalf("BuildFingerprintFromRaw: %v", err)
	}

	score := CompareRaw(`<html><body>zzzzzzzzzzzzzzzzzzzzzzzzzzzzzz</body></html>`, target)
	if score.Score < 0 || score.Score > 100 {
		t.Fatalf("score=%d out of [0,100]", score.Score)
	}
}

func TestCompareRaw_ScoreAlwaysInRange(t *testing.T) {
	t.Parallel()

	target, _ := BuildFingerprintFromRaw("example.com", "<html></html>")
	score := CompareRaw("<html><body>unrelated content entirely</body></html>", target)
	if score.Score < 0 || score.Score > 100 {
		t.Fatalf("score=%d out of [0,100]", score.Score)
	}
	if score.Details == nil {
		t.Fatalf("expected non-nil details map")
	}
}

func TestTagCounts_ExcludesSyntheticWrapperElements(t *testing.T) {
	t.Parallel()

	counts := tagCounts("<h1>hi</h1><p>there</p>")
	for _, synthetic := range []string{"html", "head", "body"} {
		if _, ok := counts[synthetic]; ok {
			t.Fatalf("tagCounts=%v should not contain synthesized %q wrapper", counts, synthetic)
		}
	}
	if counts["h1"] != 1 || counts["p"] != 1 {
		t.Fatalf("tagCounts=%v, want h1=1 p=1", counts)
	}
}

func TestStructureScore_DoesNotInflateShortFragments(t *testing.T) {
	t.Parallel()

	// Two completely different single-tag fragments should score 0 on
	// structure, not get a head start from shared synthetic html/head/body.
	same := structureScore("<h1>a</h1>", "<h1>b</h1>")
	different := structureScore("<h1>a</h1>", "<p>b</p>")
	if same != 100 {
		t.Fatalf("same-tag structure score=%v, want 100", same)
	}
	if different != 0 {
		t.Fatalf("different-tag structure score=%v, want 0", different)
	}
}

func TestContentScore_FetchFailureShape(t *testing.T) {
	t.Parallel()

	target, err := BuildFingerprintFromRaw("example.com", "<p>hello world</p>")
	if err != nil {
		t.Fatalf("BuildFingerprintFromRaw: %v", err)
	}

	// A cancelled context makes both the https and http fetches fail
	// without touching the network.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	score := Compare(ctx, "example.invalid", target)
	if score.Score != 0 || score.Details["error"] != "fetch_failed" {
		t.Fatalf("unexpected details: %v", score.Details)
	}
}
