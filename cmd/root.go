package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/chatpane/internal"
	"github.com/spf13/cobra"
)

var (
	verbose        bool
	configPath     string
	dataDir        string
	storageBackend string
	version        string = "dev"
	commit         string = "unknown"
	date           string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatpane",
	Short: "Chat with a text-generation endpoint from the terminal",
	Long: `A terminal chat client for a remote text-generation endpoint.

Replies are classified as Markdown tables, JSON documents or plain text and
rendered accordingly. Every conversation is kept client-side so it can be
reopened, renamed, deleted and exported later.

Features:
  • Interactive chat with history, edits, file uploads and voice input
  • Today / Previous 7 Days conversation list
  • Export tables to XLSX or CSV and JSON replies to files
  • Export whole sessions (JSONL, Markdown, YAML, JSON)
  • File, SQLite or in-memory storage

Quick Start:
  chatpane login                         # Sign in
  chatpane chat                          # Start chatting
  chatpane list                          # List recent conversations
  chatpane export --format md            # Export as Markdown`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $CHATPANE_CONFIG or ~/.config/chatpane/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding conversations (overrides config)")
	rootCmd.PersistentFlags().StringVar(&storageBackend, "storage", "", "Storage backend: file, sqlite or memory (overrides config)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
