package cmd

import (
	"fmt"

	"github.com/iksnae/chatpane/internal"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id|title>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
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
		if err := a.store.DeleteSession(session.ID); err != nil {
			return err
		}

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Deleted %q", session.Title))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
