package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nuforcscraper/internal/browser"
	"nuforcscraper/pkg/config"
	"nuforcscraper/pkg/logger"
	"nuforcscraper/pkg/scraper"
	"nuforcscraper/pkg/ui"
)

var (
	// Scrape command flags
	targetURL     string
	outputPath    string
	delimiter     string
	writeSummary  bool
	maxPages      int
	tableTimeout  time.Duration
	settleDelay   time.Duration
	clickAttempts int
	partial       bool
	headless      bool
	chromePath    string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Export every page of the report index",
	Long: `Open the report index in a headless browser, read the data table on
every page and write all rows to one file.

The run stops when the next-page control is missing or disabled, when a
click on it fails, or after --max-pages pages. Nothing is written when the
start page cannot be loaded or the table never appears.`,
	Example: `  # Export with defaults to ./nuforc_all_reports_table.csv
  nuforcscraper scrape

  # First three pages only, tab separated, with a JSON run summary
  nuforcscraper scrape --max-pages 3 --output reports.tsv --delimiter '\t' --write-summary

  # Watch the browser work
  nuforcscraper scrape --headless=false --settle-delay 3s`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&targetURL, "url", "u", "", "report index URL")
	scrapeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default nuforc_all_reports_table.csv)")
	scrapeCmd.Flags().StringVar(&delimiter, "delimiter", "", `field delimiter, a single character or \t`)
	scrapeCmd.Flags().BoolVar(&writeSummary, "write-summary", false, "write a JSON run summary next to the output")
	scrapeCmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum number of pages to read (default 600)")
	scrapeCmd.Flags().DurationVar(&tableTimeout, "table-timeout", 0, "how long to wait for the table on the start page (default 10s)")
	scrapeCmd.Flags().DurationVar(&settleDelay, "settle-delay", 0, "wait after each page change before reading (default 2s)")
	scrapeCmd.Flags().IntVar(&clickAttempts, "click-attempts", 0, "attempts at clicking the next-page control (default 1)")
	scrapeCmd.Flags().BoolVar(&partial, "partial", false, "write rows gathered so far when a page lacks the table structure")
	scrapeCmd.Flags().BoolVar(&headless, "headless", true, "run Chrome without a window")
	scrapeCmd.Flags().StringVar(&chromePath, "chrome-path", "", "Chrome executable (default: found on PATH)")

	// Scrape is also the default action
	rootCmd.Flags().AddFlagSet(scrapeCmd.Flags())
	rootCmd.RunE = runScrape
}

// flagOverrides returns the explicitly set flags keyed the way
// config.MergeCommandLineFlags expects.
func flagOverrides(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("url") {
		flags["url"] = targetURL
	}
	if changed("output") {
		flags["output"] = outputPath
	}
	if changed("delimiter") {
		flags["delimiter"] = delimiter
	}
	if changed("write-summary") {
		flags["write-summary"] = writeSummary
	}
	if changed("max-pages") {
		flags["max-pages"] = maxPages
	}
	if changed("table-timeout") {
		flags["table-timeout"] = tableTimeout
	}
	if changed("settle-delay") {
		flags["settle-delay"] = settleDelay
	}
	if changed("click-attempts") {
		flags["click-attempts"] = clickAttempts
	}
	if changed("partial") {
		flags["partial"] = partial
	}
	if changed("headless") {
		flags["headless"] = headless
	}
	if changed("chrome-path") {
		flags["chrome-path"] = chromePath
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if logFormat != "" {
		flags["log-format"] = logFormat
	}
	return flags
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, flagOverrides(cmd))
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	ui.PrintInfo("Start URL", cfg.Target.URL)
	ui.PrintInfo("Output", cfg.Output.Path)
	ui.PrintInfo("Max pages", strconv.Itoa(cfg.Scrape.MaxPages))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scraper.New(cfg, browser.Opener(browser.OptionsFromConfig(cfg), log), log)
	s.SetReporter(ui.NewPageTracker())

	ui.PrintHighlight("\n[EXPORT STARTED]")
	result, err := s.Run(ctx)
	if result != nil {
		ui.PrintSummary(&result.Summary)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if result.Error != "" {
		ui.PrintWarning("Export stopped early", result.Error)
	}
	ui.PrintSuccess(fmt.Sprintf("Wrote %d total rows to %s", result.TotalRows, cfg.Output.Path))
	return nil
}
