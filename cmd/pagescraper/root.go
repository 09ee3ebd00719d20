package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"pagescraper/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// globalOptions are shared by every subcommand
type globalOptions struct {
	configFile string
	logLevel   string
	logFile    string
	noColor    bool
	quiet      bool
}

// newRootCmd builds the command tree. Running the root without a
// subcommand behaves like "scrape".
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "pagescraper",
		Short: "Download sequentially numbered images from sequentially numbered pages",
		Long: `pagescraper walks {base_url}/{prefix}_{n}/{i}{ext} for every page n in
[start, end] and every image i from 1 up to a cap, saving each image under
{output}/{prefix}_{n}/{i}{ext}.

A page ends at its first missing image. Files already on disk are skipped.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (PAGESCRAPER_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				ui.SetNoColor(true)
			}
			if opts.quiet || opts.logLevel == "error" {
				ui.SetQuietMode(true)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default is ./.pagescraper.yaml or $HOME/.pagescraper.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "also append JSON log lines to this file")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress banners and informational output")

	rootCmd.SetVersionTemplate(`pagescraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// The root accepts the scrape flags so "pagescraper --base-url ..." works
	addScrapeFlags(rootCmd)

	rootCmd.AddCommand(newScrapeCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pagescraper %s (commit: %s, built: %s)\n", version, gitCommit, buildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "Go Version: %s\nOS/Arch: %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
