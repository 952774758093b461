package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fotofetch/pkg/auth"
	"fotofetch/pkg/config"
	"fotofetch/pkg/logger"
	"fotofetch/pkg/scraper"
	"fotofetch/pkg/ui"
)

var (
	// Fetch command flags
	outputDir   string
	workers     int
	email       string
	password    string
	accountName string
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <album-url>",
	Short: "Download all images of a fotoshare.co album",
	Long: `Download every full-resolution image of a fotoshare.co album into a
local directory.

Login is optional; provide credentials only for albums that require an
account. Credentials can come from:
  - Stored accounts (use 'fotofetch auth login' to store)
  - The --email and --password flags
  - Environment variables (FOTOFETCH_EMAIL and FOTOFETCH_PASSWORD)
  - A configuration file

Files already present in the output directory are skipped, so an
interrupted run can simply be started again.`,
	Example: `  # Download a public album
  fotofetch fetch https://fotoshare.co/i/abc123

  # Download into a specific directory with more workers
  fotofetch fetch https://fotoshare.co/i/abc123 --output ./wedding --workers 8

  # Download an album that requires login
  fotofetch fetch https://fotoshare.co/i/abc123 --email me@example.com --password secret

  # Use a stored account
  fotofetch fetch https://fotoshare.co/i/abc123 --account me@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runFetch(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for downloads (default: ./album)")
	fetchCmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent downloads")
	fetchCmd.Flags().StringVar(&email, "email", "", "fotoshare.co account email")
	fetchCmd.Flags().StringVar(&password, "password", "", "fotoshare.co account password")
	fetchCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
}

// flagOverrides collects the flags the user actually set on the command
// line, so an explicit flag wins over config file and environment values
// even when it equals the flag's default
func flagOverrides(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if cmd.Flags().Changed("workers") {
		flags["workers"] = workers
	}
	if email != "" {
		flags["email"] = email
	}
	if password != "" {
		flags["password"] = password
	}
	if cmd.Flags().Changed("log-level") {
		flags["log-level"] = logLevel
	}
	return flags
}

func runFetch(cmd *cobra.Command, args []string) {
	albumURL := strings.TrimSpace(args[0])
	ui.PrintInfo("Album", albumURL)

	// Load configuration
	cfg, err := config.Load(configFile, flagOverrides(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	logger.WithField("version", version).Info("fotofetch starting")

	// A stored account overrides config credentials when requested
	if accountName != "" {
		credManager, err := auth.NewManager()
		if err != nil {
			ui.PrintError("Failed to initialize credential manager", err.Error())
			os.Exit(1)
		}

		account, err := credManager.Retrieve(accountName)
		if err != nil {
			ui.PrintError("Account not found", accountName)
			ui.PrintInfo("Available accounts", "Use 'fotofetch auth list' to see stored accounts")
			os.Exit(1)
		}

		cfg.Fotoshare.Email = account.Email
		cfg.Fotoshare.Password = account.Password
		logger.WithField("account", account.Email).Info("Using stored credentials")
		ui.PrintInfo("Using account", account.Email)
	}

	logger.WithField("album_url", albumURL).Info("Starting album download")

	s, err := scraper.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize downloader", err.Error())
		os.Exit(1)
	}

	summary, err := s.DownloadAlbum(context.Background(), albumURL)
	if err != nil {
		logger.WithError(err).WithField("album_url", albumURL).Error("Album download failed")
		ui.PrintError("DOWNLOAD FAILED", err.Error())
		os.Exit(1)
	}

	logger.WithFields(map[string]interface{}{
		"album_url":  albumURL,
		"downloaded": summary.Downloaded,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
	}).Info("Album download finished")

	if summary.Failed > 0 {
		// Individual transfer failures are reported but do not change the
		// exit status; re-running picks up only the missing files
		ui.PrintWarning(fmt.Sprintf("%d of %d images failed; run again to retry them", summary.Failed, summary.Total))
	}
	ui.PrintSuccess(fmt.Sprintf("Done: %d downloaded, %d skipped", summary.Downloaded, summary.Skipped))
}

// Make fetch the default command when no subcommand is specified
func init() {
	origRunE := rootCmd.RunE
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if origRunE != nil {
			return origRunE(cmd, args)
		}
		if len(args) > 0 && !isKnownCommand(args[0]) {
			// Treat a bare URL argument as a fetch; pass the command whose
			// flag set was actually parsed so Changed() checks stay accurate
			return fetchCmd.RunE(cmd, args)
		}
		return cmd.Help()
	}

	rootCmd.Args = cobra.ArbitraryArgs

	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for downloads (default: ./album)")
	rootCmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent downloads")
	rootCmd.Flags().StringVar(&email, "email", "", "fotoshare.co account email")
	rootCmd.Flags().StringVar(&password, "password", "", "fotoshare.co account password")
	rootCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
}

func isKnownCommand(arg string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}
	return false
}
