package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/benithors/dnstwistgo/internal/domain"
	"github.com/benithors/dnstwistgo/internal/scantypes"
)

type outputFormat int

const (
	formatTable outputFormat = iota
	formatNDJSON
	formatJSON
	formatPlain
)

func resolveFormat(flagVal string, stdout *os.File) outputFormat {
	switch strings.ToLower(strings.TrimSpace(flagVal)) {
	case "table":
		return formatTable
	case "ndjson":
		return formatNDJSON
	case "json":
		return formatJSON
	case "plain":
		return formatPlain
	case "auto", "":
	default:
		// Unknown format: fall back to auto.
	}

	if term.IsTerminal(int(stdout.Fd())) {
		return formatTable
	}
	return formatNDJSON
}

func writeResults(w io.Writer, format outputFormat, results []scantypes.ScanResult) error {
	switch format {
	case formatNDJSON:
		enc := json.NewEncoder(w)
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	case formatJSON:
		enc := json.NewEncoder(w)
		return enc.Encode(results)
	case formatPlain:
		for _, r := range results {
			// Stable, line-oriented output for piping.
			if _, err := fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", r.FQDN, r.Kind, r.Resolvable, formatJaroWinkler(r)); err != nil {
				return err
			}
		}
		return nil
	case formatTable:
		fallthrough
	default:
		showWhois := false
		showContent := false
		for _, r := range results {
			if r.WHOIS != nil {
				showWhois = true
			}
			if r.ContentHash != nil {
				showContent = true
			}
		}

		tw := domain.NewTabWriter(w)
		switch {
		case showWhois && showContent:
			fmt.Fprintln(tw, "DOMAIN\tKIND\tRESOLVABLE\tMX\tSIMILARITY\tREGISTERED\tCONTENT_SCORE")
		case showWhois:
			fmt.Fprintln(tw, "DOMAIN\tKIND\tRESOLVABLE\tMX\tSIMILARITY\tREGISTERED")
		case showContent:
			fmt.Fprintln(tw, "DOMAIN\tKIND\tRESOLVABLE\tMX\tSIMILARITY\tCONTENT_SCORE")
		default:
			fmt.Fprintln(tw, "DOMAIN\tKIND\tRESOLVABLE\tMX\tSIMILARITY")
		}
		for _, r := range results {
			registeredStr := ""
			if r.WHOIS != nil {
				registeredStr = strconv.FormatBool(r.WHOIS.Registered)
			}
			contentStr := ""
			if r.ContentHash != nil {
				contentStr = strconv.Itoa(r.ContentHash.Score)
			}

			switch {
			case showWhois && showContent:
				fmt.Fprintf(tw, "%s\t%s\t%v\t%d\t%s\t%s\t%s\n",
					r.FQDN, r.Kind, r.Resolvable, len(r.MXRecords), formatJaroWinkler(r), registeredStr, contentStr)
			case showWhois:
				fmt.Fprintf(tw, "%s\t%s\t%v\t%d\t%s\t%s\n",
					r.FQDN, r.Kind, r.Resolvable, len(r.MXRecords), formatJaroWinkler(r), registeredStr)
			case showContent:
				fmt.Fprintf(tw, "%s\t%s\t%v\t%d\t%s\t%s\n",
					r.FQDN, r.Kind, r.Resolvable, len(r.MXRecords), formatJaroWinkler(r), contentStr)
			default:
				fmt.Fprintf(tw, "%s\t%s\t%v\t%d\t%s\n",
					r.FQDN, r.Kind, r.Resolvable, len(r.MXRecords), formatJaroWinkler(r))
			}
		}
		return tw.Flush()
	}
}

func formatJaroWinkler(r scantypes.ScanResult) string {
	return strconv.FormatFloat(r.Fuzzy.JaroWinkler, 'f', 3, 64)
}
