package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benithors/dnstwistgo/internal/domain"
	"github.com/benithors/dnstwistgo/internal/scantypes"
)

func newScanCmd(cfg *config) *cobra.Command {
	var (
		only        string
		sortBy      string
		whois       bool
		contentHash bool
		mxOnly      bool
		maxResults  int
		stdin       bool
	)

	cmd := &cobra.Command{
		Use:   "scan [domain]",
		Short: "Generate and probe domain-squatting permutations of one or more target domains",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := scanTargets(args, stdin, os.Stdin)
			if err != nil {
				return &cliError{Code: 1, Err: fmt.Errorf("failed to read target domains: %w", err), Cmd: cmd}
			}
			if len(targets) == 0 {
				return &cliError{Code: 2, ShowUsage: true, Cmd: cmd}
			}

			onlyVal := strings.ToLower(strings.TrimSpace(only))
			if onlyVal == "" {
				onlyVal = "all"
			}
			switch onlyVal {
			case "all", "resolved":
			case "registered":
				if !whois {
					return &cliError{Code: 2, Err: fmt.Errorf("--only registered requires --whois"), ShowUsage: true, Cmd: cmd}
				}
			default:
				return &cliError{Code: 2, Err: fmt.Errorf("invalid --only %q (use all|resolved|registered)", only), ShowUsage: true, Cmd: cmd}
			}

			sortVal := strings.ToLower(strings.TrimSpace(sortBy))
			if sortVal == "" {
				sortVal = "similarity"
			}
			switch sortVal {
			case "similarity", "domain", "kind":
			default:
				return &cliError{Code: 2, Err: fmt.Errorf("invalid --sort %q (use similarity|domain|kind)", sortBy), ShowUsage: true, Cmd: cmd}
			}

			opts := scantypes.ScanOptions{
				MaxConcurrency:      cfg.Concurrency,
				TimeoutPerCandidate: cfg.Timeout.Milliseconds(),
				WHOIS:               whois,
				ContentHash:         contentHash,
				MXOnly:              mxOnly,
			}

			var results []scantypes.ScanResult
			for _, target := range targets {
				ascii, err := domain.Normalize(target)
				if err != nil {
					return &cliError{Code: 2, Err: fmt.Errorf("invalid domain %q: %w", target, err), ShowUsage: true, Cmd: cmd}
				}

				var r []scantypes.ScanResult
				if mxOnly {
					r = cfg.coord.GetLiveMXDomains(cmd.Context(), ascii, opts)
				} else {
					r = cfg.coord.AnalyzeDomain(cmd.Context(), ascii, opts)
				}
				results = append(results, r...)
			}

			results = filterScanResults(results, onlyVal)
			sortScanResults(results, sortVal)

			if maxResults > 0 && len(results) > maxResults {
				results = results[:maxResults]
			}

			if err := writeResults(os.Stdout, cfg.outFormat, results); err != nil {
				return &cliError{Code: 1, Err: fmt.Errorf("failed to write output: %w", err), Cmd: cmd}
			}
			return nil
		},
	}

	cmd.SetFlagErrorFunc(usageErr)
	cmd.Flags().StringVar(&only, "only", "all", "Filter output: all|resolved|registered")
	cmd.Flags().StringVar(&sortBy, "sort", "similarity", "Sort output: similarity|domain|kind")
	cmd.Flags().BoolVar(&whois, "whois", false, "Resolve WHOIS/RDAP registration data for resolvable candidates")
	cmd.Flags().BoolVar(&contentHash, "content-hash", false, "Compare fetched content against the target's fingerprint")
	cmd.Flags().BoolVar(&mxOnly, "mx-only", false, "Only report candidates with live MX records")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Max results to output (0 = unlimited)")
	cmd.Flags().BoolVar(&stdin, "stdin", false, "Read target domains from stdin, one per line, instead of the positional argument")

	return cmd
}

// scanTargets resolves the command's target-domain list: the single
// positional argument, or (with --stdin) one domain per line of in,
// mutually exclusive with each other.
func scanTargets(args []string, useStdin bool, in *os.File) ([]string, error) {
	if useStdin {
		if len(args) > 0 {
			return nil, fmt.Errorf("do not combine --stdin with a positional domain argument")
		}
		return domain.ReadLines(in)
	}
	if len(args) == 0 {
		return nil, nil
	}
	return args, nil
}

func filterScanResults(results []scantypes.ScanResult, onlyVal string) []scantypes.ScanResult {
	if onlyVal == "all" {
		return results
	}
	filtered := results[:0]
	for _, r := range results {
		switch onlyVal {
		case "resolved":
			if r.Resolvable {
				filtered = append(filtered, r)
			}
		case "registered":
			if r.WHOIS != nil && r.WHOIS.Registered {
				filtered = append(filtered, r)
			}
		}
	}
	return filtered
}

func sortScanResults(results []scantypes.ScanResult, sortVal string) {
	switch sortVal {
	case "similarity":
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Fuzzy.JaroWinkler > results[j].Fuzzy.JaroWinkler
		})
	case "domain":
		sort.Slice(results, func(i, j int) bool { return results[i].FQDN < results[j].FQDN })
	case "kind":
		sort.SliceStable(results, func(i, j int) bool { return results[i].Kind < results[j].Kind })
	}
}
