package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/chatpane/internal"
	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <id|title> <new title>",
	Short: "Rename a conversation",
	Long:  `Rename a conversation. Titles longer than 30 characters are shortened.`,
	Args:  cobra.MinimumNArgs(2),
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
		if err := a.store.RenameSession(session.ID, strings.Join(args[1:], " ")); err != nil {
			return err
		}

		renamed, _ := a.store.Get(session.ID)
		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Renamed %q to %q", session.Title, renamed.Title))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
}
