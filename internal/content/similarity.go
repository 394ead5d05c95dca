package content

import (
	"context"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/benithors/dnstwistgo/internal/scantypes"
)

// BuildFingerprint fetches and normalizes domain's homepage once, for
// reuse as the read-only target fingerprint shared across every probe's
// content-similarity stage (spec §4.1 step 2, §4.6).
func BuildFingerprint(ctx context.Context, domain string) (*scantypes.ContentFingerprint, error) {
	raw, err := Fetch(ctx, domain)
	if err != nil {
		return nil, err
	}
	return BuildFingerprintFromRaw(domain, raw)
}

// BuildFingerprintFromRaw builds a fingerprint from an already-fetched
// document, split out from BuildFingerprint so tests can exercise the
// normalization/shingling pipeline without a network fetch.
func BuildFingerprintFromRaw(domain, raw string) (*scantypes.ContentFingerprint, error) {
	normalized := Normalize(raw)
	return &scantypes.ContentFingerprint{
		Domain:   domain,
		Content:  normalized,
		Shingles: Shingles(normalized),
		Length:   len([]rune(normalized)),
	}, nil
}

// Compare fetches domain's homepage and scores it against target, the
// pre-built fingerprint. On fetch failure it returns the spec's
// {score: 0, details: {error: :fetch_failed}} shape rather than an error
// — content similarity is a best-effort stage.
func Compare(ctx context.Context, domain string, target *scantypes.ContentFingerprint) scantypes.ContentScore {
	raw, err := Fetch(ctx, domain)
	if err != nil {
		return scantypes.ContentScore{
			Score:   0,
			Details: map[string]interface{}{"error": "fetch_failed"},
		}
	}
	return CompareRaw(raw, target)
}

// CompareRaw scores an already-fetched candidate document against
// target. Split out from Compare so tests can exercise the scoring
// logic without a network fetch.
func CompareRaw(candidateRaw string, target *scantypes.ContentFingerprint) scantypes.ContentScore {
	normalized := Normalize(candidateRaw)
	candidateShingles := Shingles(normalized)

	jaccard := jaccardScore(target.Shingles, candidateShingles)
	lengthRatio := lengthRatioScore(target.Length, len([]rune(normalized)))
	structure := structureScore(target.Content, normalized)

	composite := int(math.Round(0.6*jaccard + 0.2*lengthRatio + 0.2*structure))
	if composite < 0 {
		composite = 0
	}
	if composite > 100 {
		composite = 100
	}

	return scantypes.ContentScore{
		Score: composite,
		Details: map[string]interface{}{
			"jaccard":      jaccard,
			"length_ratio": lengthRatio,
			"structure":    structure,
		},
	}
}

func jaccardScore(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union) * 100
}

func lengthRatioScore(a, b int) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return float64(lo) / float64(hi) * 100
}

// structureScore counts `<tag` occurrences per HTML tag name across both
// normalized documents using goquery's DOM (rather than regexp
// substring counting), per SPEC_FULL.md §4.6.
func structureScore(targetHTML, candidateHTML string) float64 {
	targetCounts := tagCounts(targetHTML)
	candidateCounts := tagCounts(candidateHTML)

	tags := map[string]struct{}{}
	for t := range targetCounts {
		tags[t] = struct{}{}
	}
	for t := range candidateCounts {
		tags[t] = struct{}{}
	}
	if len(tags) == 0 {
		return 0
	}

	sum := 0.0
	for tag := range tags {
		a := targetCounts[tag]
		b := candidateCounts[tag]
		var ratio float64
		if a == 0 && b == 0 {
			ratio = 1
		} else {
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			ratio = float64(lo) / float64(hi)
		}
		sum += ratio
	}
	return (sum / float64(len(tags))) * 100
}

// tagCounts parses htmlStr as a fragment scoped to a <body> context node,
// rather than a full document, so golang.org/x/net/html's tree-construction
// algorithm does not synthesize html/head/body wrapper elements that were
// never present in the literal input — those would otherwise inflate every
// structureScore call with three guaranteed ratio=1 terms.
func tagCounts(htmlStr string) map[string]int {
	counts := map[string]int{}

	bodyCtx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(htmlStr), bodyCtx)
	if err != nil {
		return counts
	}

	root := &html.Node{Type: html.ElementNode, Data: "div"}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	doc := goquery.NewDocumentFromNode(root)
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		if len(sel.Nodes) == 0 {
			return
		}
		counts[sel.Nodes[0].Data]++
	})
	return counts
}
