package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"pagescraper/pkg/config"
	"pagescraper/pkg/logger"
	"pagescraper/pkg/scraper"
	"pagescraper/pkg/ui"
)

func newScrapeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Download every reachable image in the configured page range",
		Long: `Download every reachable image in the configured page range.

For each page the images are probed in order starting at 1. The first 404
ends the page, as does any other error status or a network failure. Existing
files are counted and never fetched again. A page that reaches the
max-images cap is reported so the cap can be raised.

The run exits non-zero only if it cannot start: invalid configuration or an
output directory that cannot be created.`,
		Example: `  # The reference layout: http://x/a/p_1/1.jpg, http://x/a/p_1/2.jpg, ...
  pagescraper scrape --base-url http://x/a --prefix p --start 1 --end 1 --max-images 5

  # PNG images on pages 10-20, written to ./images
  pagescraper scrape --base-url https://example.com/gallery --end 20 --start 10 --ext .png -o ./images

  # Retry transient failures and pace requests
  pagescraper scrape --config run.yaml --max-attempts 3 --rate-limit 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, opts)
		},
	}
	addScrapeFlags(cmd)
	return cmd
}

// addScrapeFlags registers the flags that map onto config keys
func addScrapeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("base-url", "", "base URL, pages live at {base-url}/{prefix}_{n}")
	f.String("prefix", "name", "page name prefix")
	f.Int("start", 1, "first page number")
	f.Int("end", 0, "last page number (inclusive)")
	f.String("ext", ".jpg", "image extension including the leading dot")
	f.Int("max-images", 200, "maximum images probed per page")
	f.StringP("output", "o", "scraped_pictures_by_page", "output root directory")
	f.Duration("timeout", 10*time.Second, "per-request timeout for connecting, response headers and each wait for body data")
	f.Int("concurrent-pages", 1, "number of pages processed at once")
	f.String("user-agent", "", "User-Agent header to send")
	f.Int("max-attempts", 1, "attempts per image; 1 disables retries")
	f.String("retry-strategy", "exponential", "backoff between attempts: exponential or constant")
	f.Float64("rate-limit", 0, "maximum requests per second; 0 disables pacing")
}

// collectFlags returns only the flags the user set, keyed the way
// config.MergeCommandLineFlags expects
func collectFlags(cmd *cobra.Command, opts *globalOptions) map[string]interface{} {
	f := cmd.Flags()
	flags := make(map[string]interface{})

	for _, name := range []string{"base-url", "prefix", "ext", "output", "user-agent", "retry-strategy"} {
		if f.Changed(name) {
			v, _ := f.GetString(name)
			flags[name] = v
		}
	}
	for _, name := range []string{"start", "end", "max-images", "concurrent-pages", "max-attempts"} {
		if f.Changed(name) {
			v, _ := f.GetInt(name)
			flags[name] = v
		}
	}
	if f.Changed("timeout") {
		v, _ := f.GetDuration("timeout")
		flags["timeout"] = v
	}
	if f.Changed("rate-limit") {
		v, _ := f.GetFloat64("rate-limit")
		flags["rate-limit"] = v
	}

	if f.Changed("log-level") {
		flags["log-level"] = opts.logLevel
	}
	if f.Changed("log-file") {
		flags["log-file"] = opts.logFile
	}
	if opts.noColor {
		flags["no-color"] = true
	}
	return flags
}

func runScrape(cmd *cobra.Command, opts *globalOptions) error {
	cfg, err := config.Load(opts.configFile, collectFlags(cmd, opts))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Logging.NoColor {
		ui.SetNoColor(true)
	}
	// Plain log lines whenever the console is not a colour terminal
	cfg.Logging.NoColor = !ui.ColorEnabled()

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Debug("pagescraper starting")

	ui.PrintBanner()
	ui.PrintInfo("Base URL", cfg.Target.BaseURL)
	ui.PrintInfo("Pages", fmt.Sprintf("%s_%d .. %s_%d", cfg.Target.PagePrefix, cfg.Target.StartPage, cfg.Target.PagePrefix, cfg.Target.EndPage))
	ui.PrintInfo("Max images per page", strconv.Itoa(cfg.Target.MaxImagesPerPage))
	ui.PrintInfo("Output", cfg.Output.BaseDirectory)

	s, err := scraper.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize scraper: %w", err)
	}

	summary := s.Run(cmd.Context())

	ui.PrintSummary(summary)
	if summary.Canceled {
		ui.PrintWarning("Interrupted")
	} else {
		ui.PrintSuccess("Run complete")
	}
	return nil
}
