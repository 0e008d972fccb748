package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iksnae/chatpane/internal"
	"github.com/spf13/cobra"
)

var (
	sendSession string
	sendFile    string
	sendModel   string
)

var sendCmd = &cobra.Command{
	Use:   "send [prompt]",
	Short: "Send one prompt and print the reply",
	Long: `Send one prompt and print the classified reply.

Without --session a new conversation is started, titled after the prompt.
With --file the file is uploaded and the prompt is optional.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")
		if strings.TrimSpace(prompt) == "" && sendFile == "" {
			return errors.New("nothing to send: give a prompt or --file")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.requireUser()
		if err != nil {
			return err
		}
		if sendModel != "" && !a.cfg.HasModel(sendModel) {
			return fmt.Errorf("unknown model %q (available: %s)", sendModel, strings.Join(a.cfg.Models, ", "))
		}

		if sendSession != "" {
			session, err := a.findSession(sendSession)
			if err != nil {
				return err
			}
			if err := a.store.SetActive(session.ID); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctrl := a.controller(user, sendModel)

		var result internal.SendResult
		err = internal.ShowProgress(ctx, "Generating...", func() error {
			var err error
			if sendFile != "" {
				result, err = ctrl.SendFile(ctx, internal.ExpandPath(sendFile), prompt)
			} else {
				result, err = ctrl.SendPrompt(ctx, prompt)
			}
			return err
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, newRenderer(out).RenderMessage(result.Reply, false))
		internal.LogInfo("Reply stored in session %s", result.SessionID)

		if result.Status == internal.SendFailed {
			return errors.New("request failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendSession, "session", "s", "", "Continue a conversation (id or title)")
	sendCmd.Flags().StringVar(&sendFile, "file", "", "Upload a file with the prompt")
	sendCmd.Flags().StringVarP(&sendModel, "model", "m", "", "Model to use (default from config)")
}
