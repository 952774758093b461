package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fotofetch/pkg/config"
	"fotofetch/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage fotofetch configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (FOTOFETCH_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.fotofetch.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources.

The password is masked for security.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".fotofetch.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# fotofetch configuration file
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with FOTOFETCH_
# For example: FOTOFETCH_EMAIL, FOTOFETCH_PASSWORD

# fotoshare.co site and account settings
fotoshare:
  # Site base URL; only change this for testing
  base_url: "https://fotoshare.co"

  # Account email (optional; only needed for albums that require login)
  email: ""

  # Account password (optional)
  # Prefer 'fotofetch auth login' over storing the password here
  password: ""

  # User agent string (optional)
  # Leave empty to use default
  user_agent: ""

# Download configuration
download:
  # Number of concurrent downloads
  # Range: 1-32
  workers: 4

  # Timeout for fetching the album page
  album_timeout: 30s

  # Timeout for fetching an individual photo page
  page_timeout: 15s

  # Timeout for a single image transfer
  download_timeout: 60s

# Output configuration
output:
  # Directory downloads go into; created if missing
  directory: "./album"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file to taste")
	fmt.Println("2. Run 'fotofetch config validate' to check the configuration")
	fmt.Println("3. Start downloading with 'fotofetch fetch <album-url>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Create a sanitized version for display
	displayCfg := *cfg
	if displayCfg.Fotoshare.Password != "" {
		displayCfg.Fotoshare.Password = "***"
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (FOTOFETCH_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		possiblePaths := []string{
			".fotofetch.yaml",
			".fotofetch.yml",
			filepath.Join(os.Getenv("HOME"), ".fotofetch.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "fotofetch", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	warnings := []string{}
	errs := []string{}

	if cfg.Fotoshare.Email == "" {
		warnings = append(warnings, "No account configured; albums that require login will fail")
	}

	if cfg.Output.Directory != "" {
		if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
			errs = append(errs, fmt.Sprintf("Cannot create output directory: %v", err))
		}
	}

	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errs = append(errs, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if len(errs) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, e := range errs {
			fmt.Printf("  - %s\n", e)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Output directory: %s\n", cfg.Output.Directory)
	fmt.Printf("  Workers: %d\n", cfg.Download.Workers)
	fmt.Printf("  Album timeout: %s\n", cfg.Download.AlbumTimeout)
	fmt.Printf("  Download timeout: %s\n", cfg.Download.DownloadTimeout)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
