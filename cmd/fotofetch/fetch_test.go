package main

import (
	"testing"

	"github.com/spf13/cobra"
)

// newFlagTestCommand binds the fetch flag variables to a fresh command so
// Changed() state does not leak between tests
func newFlagTestCommand(t *testing.T) *cobra.Command {
	t.Helper()

	origOutput, origWorkers := outputDir, workers
	origEmail, origPassword, origLogLevel := email, password, logLevel
	t.Cleanup(func() {
		outputDir, workers = origOutput, origWorkers
		email, password, logLevel = origEmail, origPassword, origLogLevel
	})

	cmd := &cobra.Command{Use: "fetch"}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "")
	cmd.Flags().IntVar(&workers, "workers", 4, "")
	cmd.Flags().StringVar(&email, "email", "", "")
	cmd.Flags().StringVar(&password, "password", "", "")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "")
	return cmd
}

func TestFlagOverridesOmitsUnsetFlags(t *testing.T) {
	cmd := newFlagTestCommand(t)

	flags := flagOverrides(cmd)

	if len(flags) != 0 {
		t.Errorf("Expected no overrides without flags set, got %v", flags)
	}
}

func TestFlagOverridesHonorsExplicitDefault(t *testing.T) {
	cmd := newFlagTestCommand(t)

	// Setting a flag to its default value must still override config
	// file and environment values
	if err := cmd.Flags().Set("workers", "4"); err != nil {
		t.Fatalf("Failed to set workers flag: %v", err)
	}
	if err := cmd.Flags().Set("log-level", "info"); err != nil {
		t.Fatalf("Failed to set log-level flag: %v", err)
	}

	flags := flagOverrides(cmd)

	if got, ok := flags["workers"].(int); !ok || got != 4 {
		t.Errorf("Expected workers override 4, got %v", flags["workers"])
	}
	if got, ok := flags["log-level"].(string); !ok || got != "info" {
		t.Errorf("Expected log-level override %q, got %v", "info", flags["log-level"])
	}
}

func TestFlagOverridesCollectsSetValues(t *testing.T) {
	cmd := newFlagTestCommand(t)

	for flag, value := range map[string]string{
		"output":    "./wedding",
		"workers":   "8",
		"email":     "me@example.com",
		"password":  "secret",
		"log-level": "debug",
	} {
		if err := cmd.Flags().Set(flag, value); err != nil {
			t.Fatalf("Failed to set %s flag: %v", flag, err)
		}
	}

	flags := flagOverrides(cmd)

	if flags["output"] != "./wedding" {
		t.Errorf("Expected output override, got %v", flags["output"])
	}
	if flags["workers"] != 8 {
		t.Errorf("Expected workers override 8, got %v", flags["workers"])
	}
	if flags["email"] != "me@example.com" || flags["password"] != "secret" {
		t.Errorf("Expected credential overrides, got %v / %v", flags["email"], flags["password"])
	}
	if flags["log-level"] != "debug" {
		t.Errorf("Expected log-level override debug, got %v", flags["log-level"])
	}
}
