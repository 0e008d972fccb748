package cmd

import (
	"fmt"
	"strconv"

	"github.com/iksnae/chatpane/internal"
	"github.com/iksnae/chatpane/internal/export"
	"github.com/spf13/cobra"
)

var exportMessageCmd = &cobra.Command{
	Use:   "export-message <id|title> <index> <file>",
	Short: "Export one table or JSON reply",
	Long: `Export a single reply to a file. The format follows the file extension:

  table reply  .xlsx or .csv spreadsheet, .json record list
  JSON reply   indented JSON

Message indexes are shown by 'chatpane show'.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid message index %q", args[1])
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.findSession(args[0])
		if err != nil {
			return err
		}
		if index < 0 || index >= len(session.Messages) {
			return fmt.Errorf("no message %d in %q (it has %d)", index, session.Title, len(session.Messages))
		}

		filename := internal.ExpandPath(args[2])
		if err := export.ExportMessage(session.Messages[index], filename); err != nil {
			return err
		}

		internal.PrintSuccess(cmd.OutOrStdout(), "Exported to "+filename)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportMessageCmd)
}
