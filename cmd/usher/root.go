package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/usher/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "usher",
	Short: "Usher hands resources to the programs that can open them",
	Long: `Usher routes URIs to registered handler programs, keeps a single
attempt in flight, and records every outcome: opened, open_failed or
unsupported.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("handlers", "", "Handlers config file (YAML or JSON)")
	rootCmd.PersistentFlags().String("policies", "", "Directory with Loam policy documents")
	rootCmd.PersistentFlags().Bool("browser", false, "Route http/https to the system browser")
	rootCmd.PersistentFlags().String("journal", "memory", "Journal backend: memory, sqlite or redis")
	rootCmd.PersistentFlags().String("journal-path", "", "SQLite journal location (default .usher/journal.db)")
	rootCmd.PersistentFlags().String("redis-url", "", "Redis URL for the journal backend and the attempt gate")
	rootCmd.PersistentFlags().String("encrypt-key", "", "Hex-encoded 32-byte key for journal encryption at rest")
	rootCmd.PersistentFlags().StringSlice("redact", nil, "Query parameter patterns to redact before recording")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress decorative output")
}

// optionsFromFlags collects the persistent flags into cli.Options.
func optionsFromFlags(cmd *cobra.Command) cli.Options {
	handlers, _ := cmd.Flags().GetString("handlers")
	policies, _ := cmd.Flags().GetString("policies")
	browser, _ := cmd.Flags().GetBool("browser")
	journal, _ := cmd.Flags().GetString("journal")
	journalPath, _ := cmd.Flags().GetString("journal-path")
	redisURL, _ := cmd.Flags().GetString("redis-url")
	encryptKey, _ := cmd.Flags().GetString("encrypt-key")
	redact, _ := cmd.Flags().GetStringSlice("redact")
	debug, _ := cmd.Flags().GetBool("debug")
	quiet, _ := cmd.Flags().GetBool("quiet")

	return cli.Options{
		HandlersPath:   handlers,
		PolicyDir:      policies,
		Browser:        browser,
		JournalBackend: journal,
		JournalPath:    journalPath,
		RedisURL:       redisURL,
		EncryptKey:     encryptKey,
		RedactPatterns: redact,
		Debug:          debug,
		Quiet:          quiet,
	}
}
