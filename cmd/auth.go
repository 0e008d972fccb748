package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iksnae/chatpane/internal"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

var (
	authEmail       string
	authPassword    string
	authName        string
	authProfilePic  string
	authNewPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the chat service",
	Long: `Sign in with email and password. The password is prompted for when
--password is not given and stdin is a terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := requireFlag("email", authEmail)
		if err != nil {
			return err
		}
		password, err := secretOrPrompt("password", authPassword, "Password: ")
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var user *internal.User
		err = internal.ShowProgress(commandContext(cmd), "Signing in...", func() error {
			var err error
			user, err = a.authClient.Login(commandContext(cmd), email, password)
			return err
		})
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := a.auth.Save(user); err != nil {
			return err
		}

		internal.PrintSuccess(cmd.OutOrStdout(), "Logged in as "+displayName(user))
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := requireFlag("name", authName)
		if err != nil {
			return err
		}
		email, err := requireFlag("email", authEmail)
		if err != nil {
			return err
		}
		password, err := secretOrPrompt("password", authPassword, "Password: ")
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.authClient.Signup(commandContext(cmd), internal.SignupRequest{
			Name:           name,
			Email:          email,
			Password:       password,
			ProfilePicPath: internal.ExpandPath(authProfilePic),
		})
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}
		if err := a.auth.Save(user); err != nil {
			return err
		}

		internal.PrintSuccess(cmd.OutOrStdout(), "Account created. Logged in as "+displayName(user))
		return nil
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Set a new password for an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := requireFlag("email", authEmail)
		if err != nil {
			return err
		}
		newPassword, err := secretOrPrompt("new-password", authNewPassword, "New password: ")
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		message, err := a.authClient.ForgotPassword(commandContext(cmd), email, newPassword)
		if err != nil {
			return fmt.Errorf("password reset failed: %w", err)
		}

		internal.PrintSuccess(cmd.OutOrStdout(), message)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.auth.Logout(); err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.requireUser()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), displayName(user))
		return nil
	},
}

func displayName(u *internal.User) string {
	if u.Name == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func requireFlag(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("--%s is required", name)
	}
	return value, nil
}

// secretOrPrompt returns value, or reads it without echo when stdin is a terminal
func secretOrPrompt(flag, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	if !internal.IsTerminal(os.Stdin) {
		return "", fmt.Errorf("--%s is required", flag)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	secret, err := line.PasswordPrompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", errors.New("aborted")
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", flag, err)
	}
	if secret == "" {
		return "", fmt.Errorf("%s cannot be empty", flag)
	}
	return secret, nil
}

func init() {
	rootCmd.AddCommand(loginCmd, signupCmd, forgotPasswordCmd, logoutCmd, whoamiCmd)

	for _, c := range []*cobra.Command{loginCmd, signupCmd, forgotPasswordCmd} {
		c.Flags().StringVarP(&authEmail, "email", "e", "", "Account email")
	}
	loginCmd.Flags().StringVarP(&authPassword, "password", "p", "", "Account password (prompted when omitted)")
	signupCmd.Flags().StringVarP(&authPassword, "password", "p", "", "Account password (prompted when omitted)")
	signupCmd.Flags().StringVarP(&authName, "name", "n", "", "Display name")
	signupCmd.Flags().StringVar(&authProfilePic, "profile-pic", "", "Profile picture to upload")
	forgotPasswordCmd.Flags().StringVar(&authNewPassword, "new-password", "", "New password (prompted when omitted)")
}
