package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/chatpane/internal"
	"github.com/iksnae/chatpane/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
	sessionID string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export conversations to files",
	Long: `Export conversations to various formats (jsonl, md, yaml, json).

You can export all conversations or a specific one with --session-id.
Use 'chatpane list' to see available session IDs. To export a single table or
JSON reply use 'chatpane export-message'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Create exporter first so a bad format fails before touching storage
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sessions := a.store.Sessions()
		if sessionID != "" {
			session, err := a.findSession(sessionID)
			if err != nil {
				return err
			}
			sessions = []internal.Session{session}
		}

		// Ensure output directory exists
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		exported := 0
		ctx := context.Background()
		err = internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d session(s) to %s", len(sessions), outputDir), func() error {
			for i := range sessions {
				session := &sessions[i]
				filename := fmt.Sprintf("session_%s.%s", session.ID, exporter.Extension())
				path := filepath.Join(outputDir, filename)

				file, err := os.Create(path)
				if err != nil {
					internal.LogError("Failed to create file %s: %v", path, err)
					continue
				}

				if err := exporter.Export(session, file); err != nil {
					_ = file.Close()
					internal.LogError("Failed to export session %s: %v", session.ID, err)
					continue
				}

				if err := file.Close(); err != nil {
					internal.LogWarn("Failed to close file %s: %v", path, err)
				}
				exported++
			}
			return nil
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Export complete: %d session(s) exported to %s", exported, outputDir))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format ("+export.FormatList()+")")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&sessionID, "session-id", "", "Export a specific session by ID or title")
}
