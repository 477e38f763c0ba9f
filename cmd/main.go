// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"pii-redact/internal/categories"
	"pii-redact/internal/config"
	"pii-redact/internal/core"
	"pii-redact/internal/detector"
	"pii-redact/internal/llm"
	"pii-redact/internal/observability"
	"pii-redact/internal/output"
	"pii-redact/internal/preprocessors"
	"pii-redact/internal/version"
	"pii-redact/internal/web"
)

// cliFlags holds command line flag values.
type cliFlags struct {
	text          string
	file          string
	categoryList  string
	configFile    string
	format        string
	outputDir     string
	serverMode    bool
	port          int
	noDetector    bool
	singlePass    bool
	listTypes     bool
	verbose       bool
	debug         bool
	noColor       bool
	showVersion   bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		fmt.Println(version.String())
		return
	}
	if flags.listTypes {
		printSupportedTypes(flags.noColor)
		return
	}

	cfg := loadConfiguration(flags.configFile)
	applyFlagOverrides(cfg, flags)

	if err := cfg.Validate(); err != nil {
		fatal(flags.noColor, "invalid configuration: %v", err)
	}

	if flags.noColor || !isTerminal() {
		color.NoColor = true
	}

	level := observability.LevelMetrics
	if cfg.Defaults.Debug {
		level = observability.LevelDebug
	}
	observer := observability.NewObserver(level, os.Stderr)

	var client detector.Client
	if cfg.Detector.Enabled {
		client = llm.NewClient(llm.Config{
			BaseURL: cfg.Detector.BaseURL,
			Model:   cfg.Detector.Model,
			Timeout: time.Duration(cfg.Detector.TimeoutSeconds) * time.Second,
		}, observer)
	}

	orch := core.New(client, observer, core.Options{
		MultiPass:     cfg.Redaction.MultiPass,
		AutoDetectAll: cfg.Redaction.AutoDetectAll,
	})

	if flags.serverMode {
		runServer(cfg, orch, client, observer)
		return
	}

	if flags.text == "" && flags.file == "" {
		fmt.Fprintln(os.Stderr, "Error: one of -text, -file, or -server is required")
		flag.Usage()
		os.Exit(2)
	}

	runOnce(cfg, orch, flags)
}

func parseFlags() *cliFlags {
	flags := &cliFlags{}
	flag.StringVar(&flags.text, "text", "", "Text to redact")
	flag.StringVar(&flags.file, "file", "", "File to redact (txt, md, csv, log, pdf, jpg, tiff)")
	flag.StringVar(&flags.categoryList, "categories", "", "Comma-separated PII categories, or 'all'")
	flag.StringVar(&flags.configFile, "config", "", "Path to configuration file")
	flag.StringVar(&flags.format, "format", "", "Output format: text or json")
	flag.StringVar(&flags.outputDir, "output-dir", "", "Directory for generated artifacts")
	flag.BoolVar(&flags.serverMode, "server", false, "Run the HTTP API server")
	flag.IntVar(&flags.port, "port", 0, "Server port (overrides config)")
	flag.BoolVar(&flags.noDetector, "no-detector", false, "Disable the generative detector, deterministic patterns only")
	flag.BoolVar(&flags.singlePass, "single-pass", false, "Skip gap validation and the verification re-pass")
	flag.BoolVar(&flags.listTypes, "list-categories", false, "List supported PII categories and exit")
	flag.BoolVar(&flags.verbose, "verbose", false, "Verbose output")
	flag.BoolVar(&flags.debug, "debug", false, "Emit debug records to stderr")
	flag.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&flags.showVersion, "version", false, "Show version and exit")
	flag.Parse()
	return flags
}

func loadConfiguration(configFile string) *config.Config {
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.Load("")
	}
	return cfg
}

// applyFlagOverrides layers command line flags over the loaded config.
// Flags win over both the file and the environment.
func applyFlagOverrides(cfg *config.Config, flags *cliFlags) {
	if flags.port > 0 {
		cfg.Server.Port = flags.port
	}
	if flags.outputDir != "" {
		cfg.Server.OutputDir = flags.outputDir
	}
	if flags.noDetector {
		cfg.Detector.Enabled = false
	}
	if flags.singlePass {
		cfg.Redaction.MultiPass = false
	}
	if flags.categoryList != "" {
		cfg.Defaults.Categories = flags.categoryList
	}
	if flags.format != "" {
		cfg.Defaults.Format = flags.format
	}
	if flags.verbose {
		cfg.Defaults.Verbose = true
	}
	if flags.debug {
		cfg.Defaults.Debug = true
	}
	if flags.noColor {
		cfg.Defaults.NoColor = true
	}
}

func runServer(cfg *config.Config, orch *core.Orchestrator, client detector.Client, observer *observability.Observer) {
	srv := web.NewServer(cfg, orch, client, observer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Starting server on %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	if err := srv.Start(ctx); err != nil {
		fatal(cfg.Defaults.NoColor, "server failed: %v", err)
	}
}

func runOnce(cfg *config.Config, orch *core.Orchestrator, flags *cliFlags) {
	text := flags.text
	sourceName := "stdin"
	if flags.file != "" {
		router := preprocessors.NewRouter()
		if !router.CanProcess(flags.file) {
			fatal(cfg.Defaults.NoColor, "unsupported file type: %s", flags.file)
		}
		content, err := router.Extract(flags.file)
		if err != nil {
			fatal(cfg.Defaults.NoColor, "failed to extract text: %v", err)
		}
		text = content.Text
		sourceName = content.Filename
	}

	cats, err := resolveCategories(cfg.Defaults.Categories)
	if err != nil {
		fatal(cfg.Defaults.NoColor, "%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := orch.Redact(ctx, core.Request{Text: text, Categories: cats})
	if err != nil {
		fatal(cfg.Defaults.NoColor, "redaction failed: %v", err)
	}

	switch strings.ToLower(cfg.Defaults.Format) {
	case "json":
		printJSON(result)
	default:
		printText(result, cfg.Defaults.Verbose)
	}

	// Only file inputs produce artifacts; inline text goes to stdout.
	if flags.file != "" {
		art, err := output.WriteText(cfg.Server.OutputDir, sourceName, result.Redacted)
		if err != nil {
			fatal(cfg.Defaults.NoColor, "failed to write artifact: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Redacted output written to %s\n", art.Path)
	}

	// Degraded output is only an error when the detector was wanted.
	if result.Degraded && cfg.Detector.Enabled {
		os.Exit(3)
	}
}

// resolveCategories turns the comma-separated setting into typed
// categories, defaulting to the full supported set.
func resolveCategories(raw string) ([]categories.Category, error) {
	keys := config.ParseCategoryList(raw)
	if keys == nil {
		return categories.All(), nil
	}
	cats := make([]categories.Category, 0, len(keys))
	for _, key := range keys {
		cat, ok := categories.Parse(key)
		if !ok {
			return nil, fmt.Errorf("invalid PII category %q", key)
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

func printJSON(result *detector.RedactionResult) {
	summary := make(map[string]int, len(result.Counts))
	for cat, n := range result.Counts {
		summary[cat.String()] = n
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(map[string]interface{}{
		"redacted":        result.Redacted,
		"summary":         summary,
		"degraded":        result.Degraded,
		"detector_status": result.DetectorStatus,
	})
}

func printText(result *detector.RedactionResult, verbose bool) {
	fmt.Println(result.Redacted)

	if !verbose {
		return
	}

	header := color.New(color.FgWhite, color.Bold)
	warn := color.New(color.FgYellow)
	ok := color.New(color.FgGreen)

	fmt.Fprintln(os.Stderr)
	header.Fprintln(os.Stderr, "Redaction summary:")

	type entry struct {
		name  string
		count int
	}
	var entries []entry
	for cat, n := range result.Counts {
		if n > 0 {
			entries = append(entries, entry{cat.String(), n})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	for _, e := range entries {
		fmt.Fprintf(os.Stderr, "  %-16s %d\n", e.name, e.count)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "  no PII found")
	}

	if result.Degraded {
		warn.Fprintf(os.Stderr, "Degraded: %s\n", result.DetectorStatus)
	} else {
		ok.Fprintln(os.Stderr, "Detector: connected")
	}
}

func printSupportedTypes(noColor bool) {
	if noColor || !isTerminal() {
		color.NoColor = true
	}
	header := color.New(color.FgCyan, color.Bold)
	header.Println("Supported PII categories:")
	for _, cat := range categories.All() {
		marker := "detector"
		if cat.Deterministic() {
			marker = "pattern + detector"
		}
		fmt.Printf("  %-16s %s\n", cat.String(), marker)
	}
}

func fatal(noColor bool, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if noColor || !isTerminal() {
		fmt.Fprintln(os.Stderr, "Error: "+msg)
	} else {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error: "+msg)
	}
	os.Exit(1)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
