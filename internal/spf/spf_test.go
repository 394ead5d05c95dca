package spf

import "testing"

func TestParse_NoRecord(t *testing.T) {
	t.Parallel()

	report := Parse([]string{"some other txt record"})
	if report.Error != "No SPF record found" {
		t.Fatalf("error=%q", report.Error)
	}
}

func TestParse_ExampleFromSpec(t *testing.T) {
	t.Parallel()

	report := Parse([]string{"v=spf1 include:_spf.google.com include:mail.example.com ip4:1.2.3.4 -all"})

	if report.LookupCount != 2 {
		t.Fatalf("lookup_count=%d, want 2", report.LookupCount)
	}
	if report.AllMechanism != "-all" {
		t.Fatalf("all_mechanism=%q, want -all", report.AllMechanism)
	}
	if len(report.Includes) != 2 || report.Includes[0] != "_spf.google.com" || report.Includes[1] != "mail.example.com" {
		t.Fatalf("includes=%v", report.Includes)
	}
	if names, ok := report.ProvidersByCategory["Email Workspaces"]; !ok || !containsStr(names, "Google Workspace") {
		t.Fatalf("expected Google Workspace under Email Workspaces, got %v", report.ProvidersByCategory)
	}
}

func TestParse_DefaultAllMechanism(t *testing.T) {
	t.Parallel()

	report := Parse([]string{"v=spf1 ip4:1.2.3.4"})
	if report.AllMechanism != "~all" {
		t.Fatalf("all_mechanism=%q, want ~all default", report.AllMechanism)
	}
}

func TestParse_UnknownToken(t *testing.T) {
	t.Parallel()

	report := Parse([]string{"v=spf1 exists:%{i}.example.com -all"})
	found := false
	for _, m := range report.Mechanisms {
		if m.Tag == "unknown" && m.Value == "exists:%{i}.example.com" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unknown mechanism for exists: token, got %+v", report.Mechanisms)
	}
}

func containsStr(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
