package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"pagescraper/pkg/config"
	"pagescraper/pkg/ui"
)

const defaultConfigPath = ".pagescraper.yaml"

const exampleConfig = `# pagescraper configuration file
#
# Every key can also be set through an environment variable prefixed with
# PAGESCRAPER_, e.g. PAGESCRAPER_BASE_URL or PAGESCRAPER_END_PAGE.

# The URL space to enumerate: {base_url}/{page_prefix}_{n}/{i}{image_extension}
target:
  # Must start with http:// or https://
  base_url: "https://example.com/gallery"
  page_prefix: "name"
  start_page: 1
  end_page: 10
  # Must start with a dot
  image_extension: ".jpg"
  # Probing stops here even without a 404
  max_images_per_page: 200

output:
  # Pages are written to {base_directory}/{page_prefix}_{n}
  base_directory: "scraped_pictures_by_page"

download:
  # Bounds connecting and waiting for response headers
  timeout: 10s
  # Bytes per write while streaming a body to disk
  chunk_size: 8192
  # Pages processed at once; 1 keeps the run strictly sequential
  concurrent_pages: 1
  # Empty sends Go's default User-Agent
  user_agent: ""

# Off by default: the first failure ends a page
retry:
  max_attempts: 1
  # exponential or constant (constant waits initial_backoff every time)
  strategy: "exponential"
  initial_backoff: 1s
  max_backoff: 30s
  multiplier: 2.0

# Off by default
rate_limit:
  requests_per_second: 0
  burst: 1

logging:
  # debug, info, warn, error, disabled
  level: "info"
  # Optional file receiving JSON log lines
  file: ""
  no_color: false
`

func newConfigCmd(opts *globalOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create an example configuration file",
		Long: `Create an example configuration file with all available options.

The file is written to ./.pagescraper.yaml unless --config names a path.
An existing file is never overwritten.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(opts)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the merged configuration from every source",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, opts)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration without touching the network",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(cmd, opts)
		},
	})

	return configCmd
}

func runConfigInit(opts *globalOptions) error {
	path := opts.configFile
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := os.WriteFile(path, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + path)
	ui.PrintInfo("Next", "edit target.base_url and target.end_page, then run 'pagescraper config validate'")
	return nil
}

func runConfigShow(cmd *cobra.Command, opts *globalOptions) error {
	cfg, err := config.LoadUnvalidated(opts.configFile, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current configuration")
	fmt.Fprint(cmd.OutOrStdout(), string(data))

	source := opts.configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source == "" {
		source = "(none found)"
	}
	ui.PrintInfo("Configuration file", source)
	return nil
}

func runConfigValidate(cmd *cobra.Command, opts *globalOptions) error {
	path := opts.configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path != "" {
		ui.PrintInfo("Validating configuration", path)
	}

	cfg, err := config.Load(path, nil)
	if err != nil {
		return err
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Fprintf(cmd.OutOrStdout(), "  Pages: %s_%d .. %s_%d (%d pages)\n",
		cfg.Target.PagePrefix, cfg.Target.StartPage, cfg.Target.PagePrefix, cfg.Target.EndPage,
		cfg.Target.EndPage-cfg.Target.StartPage+1)
	fmt.Fprintf(cmd.OutOrStdout(), "  Image URL pattern: %s/%s_{n}/{i}%s\n",
		cfg.Target.BaseURL, cfg.Target.PagePrefix, cfg.Target.ImageExtension)
	fmt.Fprintf(cmd.OutOrStdout(), "  Max images per page: %d\n", cfg.Target.MaxImagesPerPage)
	fmt.Fprintf(cmd.OutOrStdout(), "  Output directory: %s\n", cfg.Output.BaseDirectory)
	fmt.Fprintf(cmd.OutOrStdout(), "  Retry attempts: %d\n", cfg.Retry.MaxAttempts)
	return nil
}
