package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/insightdelivered/xp-ledger/internal/api"
	"github.com/insightdelivered/xp-ledger/internal/config"
	"github.com/insightdelivered/xp-ledger/internal/cycle"
	"github.com/insightdelivered/xp-ledger/internal/extractor"
	"github.com/insightdelivered/xp-ledger/internal/logger"
	"github.com/insightdelivered/xp-ledger/internal/metrics"
	"github.com/insightdelivered/xp-ledger/internal/models"
	"github.com/insightdelivered/xp-ledger/internal/parser"
	"github.com/insightdelivered/xp-ledger/internal/store"
	"github.com/insightdelivered/xp-ledger/internal/writer"
)

// options are the cycle overrides given on the command line.
type options struct {
	start    string
	status   string
	xp       int
	uxp      int
	ultimate string
	today    time.Time
	output   string
	header   bool
	debug    bool
}

func main() {
	os.Exit(run())
}

// run is the CLI body; it returns the process exit code.
func run() int {
	startFlag := flag.String("start", "", "Cycle start month YYYY-MM (suggested from the export if omitted)")
	statusFlag := flag.String("status", "", "Starting status: explorer, silver, gold, platinum")
	xpFlag := flag.Int("xp", -1, "XP carried into the first cycle")
	uxpFlag := flag.Int("uxp", -1, "UXP carried into the first cycle")
	ultimateFlag := flag.String("ultimate", "", "Ultimate cycle type: qualification or reset")
	todayFlag := flag.String("today", "", "Evaluate as of this date YYYY-MM-DD (defaults to today)")
	outputFlag := flag.String("output", "", "Output file prefix (defaults to the input filename without extension)")
	headerFlag := flag.Bool("header", true, "Include export metadata rows in the flights CSV")
	debugFlag := flag.Bool("debug", false, "Print how every line of the export was classified")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API instead of converting files")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Flying Blue XP Ledger
by Insight Delivered

Reads Flying Blue activity exports (PDF or text) and rebuilds the
qualification cycles with a month-by-month XP ledger.

Usage:
  xp-ledger [flags] <export.pdf> [export2.pdf ...]
  xp-ledger -serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Parse an export and use the suggested cycle start
  xp-ledger activity.pdf

  # Start from a known requalification
  xp-ledger -start=2025-03 -status=gold -xp=42 activity.pdf

  # Pasted export text, written under a custom prefix
  xp-ledger -output=ledger/2025 activity.txt

  # Run the web API (address and limits from xpledger.yml or XPLEDGER_*)
  xp-ledger -serve

Output:
  <prefix>-flights.csv  one row per flight leg
  <prefix>-cycles.csv   one row per month of every qualification cycle
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("xp-ledger v%s\n", api.Version)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		return failf("Config error: %v\n", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return failf("Logger error: %v\n", err)
	}
	defer func() { _ = log.Sync() }()

	if *serveFlag {
		if err := serve(cfg, log); err != nil {
			log.Error("server stopped", zap.Error(err))
			return 1
		}
		return 0
	}

	if *helpFlag || flag.NArg() == 0 {
		flag.Usage()
		return 0
	}

	opts := options{
		start:    *startFlag,
		status:   *statusFlag,
		xp:       *xpFlag,
		uxp:      *uxpFlag,
		ultimate: *ultimateFlag,
		output:   *outputFlag,
		header:   *headerFlag,
		debug:    *debugFlag || cfg.DebugLines,
		today:    time.Now().UTC(),
	}
	if *todayFlag != "" {
		t, err := time.Parse("2006-01-02", *todayFlag)
		if err != nil {
			return failf("Invalid -today %q, want YYYY-MM-DD\n", *todayFlag)
		}
		opts.today = t
	}
	if opts.status != "" {
		if _, ok := models.ParseTier(opts.status); !ok {
			return failf("Unknown status %q. Supported: explorer, silver, gold, platinum\n", opts.status)
		}
	}
	if opts.start != "" {
		if _, ok := models.ParseMonthKey(opts.start); !ok {
			return failf("Invalid -start %q, want YYYY-MM\n", opts.start)
		}
	}
	switch models.UltimateCycleType(opts.ultimate) {
	case "", models.UltimateQualification, models.UltimateReset:
	default:
		return failf("Unknown ultimate cycle type %q. Supported: qualification, reset\n", opts.ultimate)
	}

	for i, inputPath := range flag.Args() {
		o := opts
		if o.output != "" && flag.NArg() > 1 {
			o.output = fmt.Sprintf("%s-%d", o.output, i+1)
		}
		if err := processFile(inputPath, o, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			return 1
		}
	}
	return 0
}

func processFile(inputPath string, opts options, log *zap.Logger) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	fmt.Printf("Processing: %s\n", inputPath)

	pages, err := extractor.Load(inputPath)
	if err != nil {
		return fmt.Errorf("text extraction failed: %w", err)
	}
	fmt.Printf("  Extracted text from %d page(s)\n", len(pages))

	result := parser.ParsePages(pages)
	log.Debug("export parsed",
		zap.String("file", inputPath),
		zap.String("language", result.Language),
		zap.Int("lines", len(result.DebugLines)),
	)

	if opts.debug {
		for _, l := range result.DebugLines {
			fmt.Printf("  %4d %-15s %-16s %s\n", l.LineNum, l.Result, l.Kind, l.Text)
		}
	}

	if result.Language != "" {
		fmt.Printf("  Language: %s\n", result.Language)
	}
	if result.DetectedTier != nil {
		fmt.Printf("  Status: %s\n", *result.DetectedTier)
	}
	fmt.Printf("  Found %d flight leg(s), %d monthly earning(s), %d requalification(s)\n",
		len(result.Flights), len(result.Earnings), len(result.Requalifications))

	if result.Empty() {
		fmt.Println("  Warning: No flights or earnings found. The export layout may not be supported.")
		fmt.Println("  Run again with -debug to see how each line was read.")
		return nil
	}

	settings := overrideSettings(cycle.SuggestSettings(result), opts)
	cycles := cycle.Build(cycle.Input{
		Settings: settings,
		Flights:  result.Flights,
		Earnings: result.Earnings,
		Today:    opts.today,
	})

	prefix := opts.output
	if prefix == "" {
		prefix = strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	}
	w := &writer.CSVWriter{IncludeHeader: opts.header}
	flightsPath, cyclesPath := prefix+"-flights.csv", prefix+"-cycles.csv"
	if err := w.WriteFlightsFile(flightsPath, result); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}
	if err := w.WriteLedgerFile(cyclesPath, cycles); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}

	fmt.Printf("  Cycle start: %s as %s with %d XP\n", settings.CycleStartMonth, settings.StartingStatus, settings.StartingXP)
	printCycles(cycles, opts.today)
	fmt.Printf("  Output: %s, %s\n", flightsPath, cyclesPath)
	fmt.Println("  Done.")
	return nil
}

// overrideSettings applies the command-line flags on top of the settings
// suggested from the export.
func overrideSettings(s models.CycleSettings, opts options) models.CycleSettings {
	if opts.start != "" {
		s.CycleStartMonth = opts.start
	}
	if opts.status != "" {
		s.StartingStatus, _ = models.ParseTier(opts.status)
	}
	if opts.xp >= 0 {
		s.StartingXP = opts.xp
	}
	if opts.uxp >= 0 {
		uxp := opts.uxp
		s.StartingUXP = &uxp
	}
	if opts.ultimate != "" {
		s.UltimateCycleType = models.UltimateCycleType(opts.ultimate)
	}
	return s
}

func printCycles(cycles []models.QualificationCycle, today time.Time) {
	active := cycle.ActiveCycle(cycles, today)
	for i, c := range cycles {
		marker := " "
		if i == active {
			marker = "*"
		}
		outcome := fmt.Sprintf("ends %s", c.EndTier)
		if c.EndedByLevelUp {
			outcome = fmt.Sprintf("level-up to %s", c.ProjectedEndTier)
			if !c.LevelUpIsActual {
				outcome += " (projected)"
			}
		}
		fmt.Printf("  %s %s..%s %-8s %3d/%3d XP (%d projected) %s\n",
			marker,
			models.MonthKey(c.Start), models.MonthKey(c.End.AddDate(0, -1, 0)),
			c.StartTier, c.ActualXP, c.Threshold, c.ProjectedXP, outcome)
		if c.IsUltimateTrack {
			fmt.Printf("      Ultimate: %d/1800 UXP counted, %d rolled over\n", c.Ultimate.Counted, c.Ultimate.RolloverOut)
		}
	}
}

func serve(cfg config.Config, log *zap.Logger) error {
	h := &api.Handler{
		Store:       store.New(cfg.ImportTTL),
		Metrics:     metrics.New(),
		Log:         log,
		DebugLines:  cfg.DebugLines,
		UploadLimit: cfg.UploadLimit,
	}
	app := api.NewApp(h, cfg.StaticDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.String("version", api.Version))
		errc <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func failf(format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, format, args...)
	return 1
}
