package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/benithors/dnstwistgo/internal/coordinator"
	"github.com/benithors/dnstwistgo/internal/dnsprobe"
	"github.com/benithors/dnstwistgo/internal/permute"
	"github.com/benithors/dnstwistgo/internal/rdap"
	"github.com/benithors/dnstwistgo/internal/resolver"
	"github.com/benithors/dnstwistgo/internal/whois"
)

type config struct {
	Version string

	// Global flags.
	VersionFlag bool
	Format      string
	JSON        bool
	NDJSON      bool
	Plain       bool
	Timeout     time.Duration
	Concurrency int
	TLDs        string
	Quiet       bool
	Verbose     bool

	// Derived runtime state.
	coord     *coordinator.Coordinator
	outFormat outputFormat
}

func newRootCmd(ver string) *cobra.Command {
	cfg := &config{Version: ver}

	root := &cobra.Command{
		Use:           "dnstwistgo",
		Short:         "Scan domain-squatting permutations of a target domain (best-effort)",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return &cliError{Code: 2, ShowUsage: true, Cmd: cmd}
		},
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SetFlagErrorFunc(usageErr)

	pf := root.PersistentFlags()
	pf.BoolVar(&cfg.VersionFlag, "version", false, "Print version and exit")
	pf.StringVar(&cfg.Format, "format", "auto", "Output format: auto|table|ndjson|json|plain")
	pf.BoolVar(&cfg.JSON, "json", false, "Alias for --format json (single JSON array)")
	pf.BoolVar(&cfg.NDJSON, "ndjson", false, "Alias for --format ndjson (one JSON object per line)")
	pf.BoolVar(&cfg.Plain, "plain", false, "Alias for --format plain (stable tab-separated)")
	pf.DurationVar(&cfg.Timeout, "timeout", 15*time.Second, "Per-candidate wall-clock timeout (e.g. 15s, 2s)")
	pf.IntVar(&cfg.Concurrency, "concurrency", 2*runtime.NumCPU(), "Max concurrent candidate probes")
	pf.StringVar(&cfg.TLDs, "tlds", "com,net,org,info,co", "Comma-separated alternative TLDs for TLD-swap candidates")
	pf.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Suppress non-essential stderr output")
	pf.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose stderr output (diagnostics)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cfg.VersionFlag {
			fmt.Fprintf(os.Stdout, "dnstwistgo %s (%s/%s)\n", cfg.Version, runtime.GOOS, runtime.GOARCH)
			return errExit0
		}

		formatStr := strings.ToLower(strings.TrimSpace(cfg.Format))
		if formatStr == "" {
			formatStr = "auto"
		}

		aliases := 0
		if cfg.JSON {
			aliases++
		}
		if cfg.NDJSON {
			aliases++
		}
		if cfg.Plain {
			aliases++
		}
		if aliases > 1 {
			return usageErr(cmd, fmt.Errorf("flags are mutually exclusive: --json, --ndjson, --plain"))
		}
		if formatStr != "auto" && aliases == 1 {
			return usageErr(cmd, fmt.Errorf("do not combine --format with --json/--ndjson/--plain"))
		}

		if cfg.JSON {
			formatStr = "json"
		}
		if cfg.NDJSON {
			formatStr = "ndjson"
		}
		if cfg.Plain {
			formatStr = "plain"
		}

		cfg.outFormat = resolveFormat(formatStr, os.Stdout)

		logLevel := zerolog.WarnLevel
		switch {
		case cfg.Quiet:
			logLevel = zerolog.Disabled
		case cfg.Verbose:
			logLevel = zerolog.DebugLevel
		}
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(logLevel).
			With().Timestamp().Logger()

		cfg.Concurrency = max(1, cfg.Concurrency)

		dnsClient := dnsprobe.New(cfg.Timeout)
		res := resolver.New(
			rdap.Options{Timeout: cfg.Timeout},
			whois.Options{ConnectTimeout: cfg.Timeout, ReadIdleTimeout: cfg.Timeout},
		)
		perm := permute.New(permute.Options{AlternativeTLDs: splitCommaList(cfg.TLDs)})

		cfg.coord = coordinator.New(perm, dnsClient, res, log)

		return nil
	}

	root.AddCommand(newScanCmd(cfg))

	return root
}
