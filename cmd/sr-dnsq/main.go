package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/haukened/sr-dns/internal/dns/common/log"
	"github.com/haukened/sr-dns/internal/dns/config"
	"github.com/haukened/sr-dns/internal/dns/domain"
	"github.com/haukened/sr-dns/internal/dns/ech"
	"github.com/haukened/sr-dns/internal/dns/gateways/transport"
	"github.com/haukened/sr-dns/internal/dns/gateways/wire"
	"github.com/haukened/sr-dns/internal/dns/repos/dnscache"
	"github.com/haukened/sr-dns/internal/dns/services/resolver"
)

const (
	// Version information
	version = "0.2.0"
	appName = "sr-dnsq"

	// cacheTTL bounds how long decoded answers are reused within a run.
	cacheTTL = 5 * time.Minute
)

// options holds the parsed command line for one invocation.
type options struct {
	hostnames    []string
	provider     domain.Provider
	protocol     domain.Protocol
	recordType   domain.RRType
	verbose      bool
	allProviders bool
	ech          bool
	race         bool
	fallback     bool
	showVersion  bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	opts, err := parseArgs(cfg, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if opts.showVersion {
		fmt.Printf("%s %s\n", appName, version)
		return
	}

	logLevel := cfg.LogLevel
	if opts.verbose {
		logLevel = "debug"
	}
	if err := log.Configure(cfg.Env, logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	// Ctrl-C tears down in-flight queries.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ctx, timeout := context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
	defer timeout()

	app.Run(ctx, os.Stdout, opts)
}

// parseArgs merges flag values over the environment-derived defaults.
func parseArgs(cfg *config.AppConfig, args []string) (*options, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)

	providerFlag := fs.String("provider", cfg.Provider, "DNS provider to use (cloudflare, google, quad9, nextdns)")
	protocolFlag := fs.String("protocol", cfg.Protocol, "transport protocol (doh, dot, doh3)")
	typeFlag := fs.String("type", cfg.RecordType, "DNS record type to query")
	verbose := fs.Bool("verbose", false, "show detailed diagnostic output")
	allProviders := fs.Bool("all-providers", false, "query every provider in turn")
	echFlag := fs.Bool("ech", false, "fetch ECH config from HTTPS records")
	raceFlag := fs.Bool("race", false, "query all providers simultaneously, use fastest response")
	fallbackFlag := fs.Bool("fallback", false, "try providers in random order until one succeeds")
	versionFlag := fs.Bool("version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] hostname [hostname...]\n\n", appName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *versionFlag {
		return &options{showVersion: true}, nil
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return nil, fmt.Errorf("at least one hostname is required")
	}

	provider, err := domain.ParseProvider(*providerFlag)
	if err != nil {
		return nil, err
	}
	protocol, err := domain.ParseProtocol(*protocolFlag)
	if err != nil {
		return nil, err
	}
	recordType, err := domain.ParseRRType(*typeFlag)
	if err != nil {
		return nil, err
	}

	if *raceFlag && *fallbackFlag {
		return nil, fmt.Errorf("-race and -fallback are mutually exclusive")
	}

	return &options{
		hostnames:    fs.Args(),
		provider:     provider,
		protocol:     protocol,
		recordType:   recordType,
		verbose:      *verbose,
		allProviders: *allProviders,
		ech:          *echFlag,
		race:         *raceFlag,
		fallback:     *fallbackFlag,
	}, nil
}

// Application holds the wired components for one CLI run.
type Application struct {
	resolver *resolver.Resolver
}

// buildApplication constructs all components and wires them together.
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	logger := log.GetLogger()
	codec := wire.NewCodec(logger)

	var cache resolver.Cache
	if cfg.CacheSize > 0 {
		c, err := dnscache.New(dnscache.Options{
			Size: cfg.CacheSize,
			TTL:  cacheTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build cache: %w", err)
		}
		cache = c
	}

	r, err := resolver.New(resolver.Options{
		Transports: transport.All(codec, logger),
		Cache:      cache,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build resolver: %w", err)
	}

	return &Application{resolver: r}, nil
}

// Run executes the requested resolution mode and renders results to w.
// Per-hostname failures are reported inline and never abort the run.
func (app *Application) Run(ctx context.Context, w io.Writer, opts *options) {
	fmt.Fprintln(w, strings.Repeat("═", 60))
	fmt.Fprintln(w, "  Secure DNS Resolver")
	fmt.Fprintln(w, strings.Repeat("═", 60))

	start := time.Now()

	switch {
	case opts.race:
		app.runRace(ctx, w, opts)
	case opts.fallback:
		app.runFallback(ctx, w, opts)
	default:
		app.runDirect(ctx, w, opts)
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("═", 60))
	fmt.Fprintf(w, "Total time: %v\n", time.Since(start).Round(time.Millisecond))
}

func (app *Application) runRace(ctx context.Context, w io.Writer, opts *options) {
	fmt.Fprintf(w, "\n▶ Mode: Race (all providers, fastest wins) via %s\n", opts.protocol)
	fmt.Fprintln(w, strings.Repeat("─", 50))

	if opts.ech {
		fmt.Fprintln(w, "  Fetching ECH Configs...")
		results := app.resolver.RaceBatchRaw(ctx, opts.hostnames, domain.RRTypeHTTPS, opts.protocol)
		for i, res := range results {
			hostname := opts.hostnames[i]
			if res.Err != nil {
				fmt.Fprintf(w, "  ✗ %s → %v\n", hostname, res.Err)
				continue
			}
			tag := fmt.Sprintf("[via %s in %v]", res.Provider, res.Elapsed.Round(time.Millisecond))
			printECH(w, hostname, tag, res.RDATA)
		}
		fmt.Fprintln(w, strings.Repeat("─", 50))
	}

	results := app.resolver.RaceBatch(ctx, opts.hostnames, opts.recordType, opts.protocol)
	fmt.Fprintf(w, "  %s Records:\n", opts.recordType)
	for i, res := range results {
		hostname := opts.hostnames[i]
		if res.Err != nil {
			fmt.Fprintf(w, "  ✗ %s → %v\n", hostname, res.Err)
			continue
		}
		fmt.Fprintf(w, "  ✓ %s [via %s in %v] → %s\n",
			hostname, res.Provider, res.Elapsed.Round(time.Millisecond), strings.Join(res.Records, ", "))
	}
}

func (app *Application) runFallback(ctx context.Context, w io.Writer, opts *options) {
	fmt.Fprintf(w, "\n▶ Mode: Fallback (random provider order) via %s\n", opts.protocol)
	fmt.Fprintln(w, strings.Repeat("─", 50))

	if opts.ech {
		fmt.Fprintln(w, "  Fetching ECH Configs...")
		results := app.resolver.FallbackBatchRaw(ctx, opts.hostnames, domain.RRTypeHTTPS, opts.protocol)
		for i, res := range results {
			hostname := opts.hostnames[i]
			if res.Err != nil {
				fmt.Fprintf(w, "  ✗ %s → %v\n", hostname, res.Err)
				continue
			}
			printECH(w, hostname, fmt.Sprintf("[via %s]", res.Provider), res.RDATA)
		}
		fmt.Fprintln(w, strings.Repeat("─", 50))
	}

	results := app.resolver.FallbackBatch(ctx, opts.hostnames, opts.recordType, opts.protocol)
	fmt.Fprintf(w, "  %s Records:\n", opts.recordType)
	for i, res := range results {
		hostname := opts.hostnames[i]
		if res.Err != nil {
			fmt.Fprintf(w, "  ✗ %s → %v\n", hostname, res.Err)
			continue
		}
		fmt.Fprintf(w, "  ✓ %s [via %s] → %s\n", hostname, res.Provider, strings.Join(res.Records, ", "))
	}
}

func (app *Application) runDirect(ctx context.Context, w io.Writer, opts *options) {
	providers := []domain.Provider{opts.provider}
	if opts.allProviders {
		providers = domain.AllProviders()
	}

	for _, provider := range providers {
		fmt.Fprintf(w, "\n▶ Provider: %s via %s\n", provider, opts.protocol)
		fmt.Fprintln(w, strings.Repeat("─", 50))

		if opts.ech {
			fmt.Fprintln(w, "  Fetching ECH Configs...")
			results := app.resolver.ResolveBatchRaw(ctx, opts.hostnames, domain.RRTypeHTTPS, provider, opts.protocol)
			for i, res := range results {
				hostname := opts.hostnames[i]
				if res.Err != nil {
					fmt.Fprintf(w, "  ✗ %s → %v\n", hostname, res.Err)
					continue
				}
				printECH(w, hostname, "", res.RDATA)
			}
			fmt.Fprintln(w, strings.Repeat("─", 50))
		}

		results := app.resolver.ResolveBatch(ctx, opts.hostnames, opts.recordType, provider, opts.protocol)
		fmt.Fprintf(w, "  %s Records:\n", opts.recordType)
		for i, res := range results {
			hostname := opts.hostnames[i]
			if res.Err != nil {
				fmt.Fprintf(w, "  ✗ %s → %v\n", hostname, res.Err)
				continue
			}
			fmt.Fprintf(w, "  ✓ %s → %s\n", hostname, strings.Join(res.Records, ", "))
		}
	}
}

// printECH renders the parsed ECH configs for one hostname, or a "not found"
// marker when the raw answer carries none.
func printECH(w io.Writer, hostname, tag string, rdata []byte) {
	if tag != "" {
		tag = " " + tag
	}
	configs := ech.Parse(rdata)
	if len(configs) == 0 {
		fmt.Fprintf(w, "  ○ %s%s → No ECH config found in HTTPS record\n", hostname, tag)
		return
	}
	fmt.Fprintf(w, "  ✓ %s%s ECH Config:\n", hostname, tag)
	for _, cfg := range configs {
		fmt.Fprintf(w, "    %s\n", cfg.String())
	}
}
