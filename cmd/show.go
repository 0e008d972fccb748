package cmd

import (
	"github.com/iksnae/chatpane/internal/export"
	"github.com/spf13/cobra"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show <id|title>",
	Short: "Show a conversation",
	Long: `Show every message of a conversation. The argument may be the full id, the
short id printed by 'chatpane list', or part of the title.

Message numbers in brackets are the indexes used by /edit and export-message.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.findSession(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if showFormat != "" {
			exporter, err := export.NewExporter(showFormat)
			if err != nil {
				return err
			}
			return exporter.Export(&session, out)
		}

		_, err = out.Write([]byte(newRenderer(out).RenderSession(session)))
		return err
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "", "Print in an export format ("+export.FormatList()+") instead")
}
