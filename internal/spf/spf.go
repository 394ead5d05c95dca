// Package spf decomposes an already-fetched set of TXT records into the
// SPF mechanism breakdown of spec §4.8. This walks tokens directly
// rather than going through github.com/redsift/spf/v2 — see
// SPEC_FULL.md §4.8 for why that library's live-evaluation-only surface
// doesn't fit a purely syntactic decomposition of pre-fetched records.
package spf

import (
	"strings"

	"github.com/benithors/dnstwistgo/internal/scantypes"
)

var allMechanisms = map[string]struct{}{
	"~all": {}, "-all": {}, "?all": {}, "+all": {},
}

// Parse finds the first TXT record beginning with "v=spf1" and walks its
// space-separated terms into a scantypes.SpfReport. Absence of any SPF
// record is reported as SpfReport.Error, not a Go error — the caller
// treats this exactly like every other best-effort stage.
func Parse(txtRecords []string) *scantypes.SpfReport {
	var raw string
	found := false
	for _, r := range txtRecords {
		if strings.HasPrefix(r, "v=spf1") {
			raw = r
			found = true
			break
		}
	}
	if !found {
		return &scantypes.SpfReport{Error: "No SPF record found"}
	}

	tokens := strings.Fields(raw)
	report := &scantypes.SpfReport{
		Version:             "spf1",
		Mechanisms:          []scantypes.SpfMechanism{},
		Includes:            []string{},
		RawRecord:           raw,
		ProvidersByCategory: map[string][]string{},
		AllMechanism:        "~all",
	}

	if len(tokens) <= 1 {
		return report
	}

	allSeen := false
	for _, tok := range tokens[1:] {
		switch {
		case strings.HasPrefix(tok, "include:"):
			v := strings.TrimPrefix(tok, "include:")
			report.Mechanisms = append(report.Mechanisms, scantypes.SpfMechanism{Tag: "include", Value: v})
			report.Includes = append(report.Includes, v)
			report.LookupCount++
		case strings.HasPrefix(tok, "ip4:"):
			report.Mechanisms = append(report.Mechanisms, scantypes.SpfMechanism{Tag: "ip4", Value: strings.TrimPrefix(tok, "ip4:")})
		case strings.HasPrefix(tok, "ip6:"):
			report.Mechanisms = append(report.Mechanisms, scantypes.SpfMechanism{Tag: "ip6", Value: strings.TrimPrefix(tok, "ip6:")})
		case strings.HasPrefix(tok, "a:"):
			report.Mechanisms = append(report.Mechanisms, scantypes.SpfMechanism{Tag: "a", Value: strings.TrimPrefix(tok, "a:")})
			report.LookupCount++
		case strings.HasPrefix(tok, "mx:"):
			report.Mechanisms = append(report.Mechanisms, scantypes.SpfMechanism{Tag: "mx", Value: strings.TrimPrefix(tok, "mx:")})
			report.LookupCount++
		default:
			if _, ok := allMechanisms[tok]; ok {
				if !allSeen {
					report.AllMechanism = tok
					allSeen = true
				}
				continue
			}
			report.Mechanisms = append(report.Mechanisms, scantypes.SpfMechanism{Tag: "unknown", Value: tok})
		}
	}

	for _, inc := range report.Includes {
		name, category := categorize(inc)
		report.ProvidersByCategory[category] = append(report.ProvidersByCategory[category], name)
	}

	return report
}

// baseDomain returns the last two dot-separated labels of s.
func baseDomain(s string) string {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return s
	}
	return strings.Join(parts[len(parts)-2:], ".")
}
