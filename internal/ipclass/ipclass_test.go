package ipclass

import (
	"testing"

	"github.com/benithors/dnstwistgo/internal/scantypes"
)

func TestClassify_PrivateAndPublicSplit(t *testing.T) {
	t.Parallel()

	got := Classify([]string{"10.0.0.5", "8.8.8.8"})
	if len(got.Public) != 1 || got.Public[0] != "8.8.8.8" {
		t.Fatalf("public=%v", got.Public)
	}
	if len(got.Internal) != 1 || got.Internal[0] != "10.0.0.5" {
		t.Fatalf("internal=%v", got.Internal)
	}
	if !containsFlag(got.Flags, scantypes.FlagPrivate10) {
		t.Fatalf("expected private_10 flag, got %v", got.Flags)
	}
}

func TestClassify_Localhost(t *testing.T) {
	t.Parallel()

	got := Classify([]string{"127.0.0.1"})
	if len(got.Public) != 0 {
		t.Fatalf("expected no public ips, got %v", got.Public)
	}
	if !containsFlag(got.Flags, scantypes.FlagLocalhost) {
		t.Fatalf("expected localhost flag, got %v", got.Flags)
	}
}

func TestClassify_172Range(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"172.15.0.1": false,
		"172.16.0.1": true,
		"172.31.255.255": true,
		"172.32.0.1": false,
	}
	for ip, wantPrivate := range cases {
		got := Classify([]string{ip})
		isPrivate := len(got.Internal) == 1
		if isPrivate != wantPrivate {
			t.Errorf("%s: private=%v, want %v", ip, isPrivate, wantPrivate)
		}
	}
}

func TestClassify_DisjointUnion(t *testing.T) {
	t.Parallel()

	ips := []string{"10.0.0.1", "192.168.1.1", "8.8.8.8", "1.1.1.1"}
	got := Classify(ips)
	if len(got.Public)+len(got.Internal) != len(ips) {
		t.Fatalf("public+internal=%d, want %d", len(got.Public)+len(got.Internal), len(ips))
	}
}

func containsFlag(flags []scantypes.IPFlag, f scantypes.IPFlag) bool {
	for _, x := range flags {
		if x == f {
			return true
		}
	}
	return false
}
