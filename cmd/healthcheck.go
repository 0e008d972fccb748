package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chatpane/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckDetails bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, storage and endpoint reachability",
	Long: `Check the health of chatpane by verifying:
  • Configuration loads and validates
  • Conversation storage can be opened and read
  • A user is signed in
  • The generation and auth endpoints answer

This command is useful for debugging setup issues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := commandContext(cmd)
		failed := false

		fmt.Fprintln(out, sectionStyle.Render("🔍 Chatpane Health Check"))
		fmt.Fprintln(out)

		// Step 1: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Configuration invalid:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Configuration valid"))
		if healthcheckDetails {
			path := configPath
			if path == "" {
				path = internal.DefaultConfigPath()
			}
			fmt.Fprintf(out, "   Config file: %s\n", path)
			fmt.Fprintf(out, "   Model: %s\n", cfg.Model)
			fmt.Fprintf(out, "   Storage: %s in %s\n", cfg.Storage, cfg.DataPath())
		}
		fmt.Fprintln(out)

		// Step 2: Storage
		fmt.Fprintln(out, infoStyle.Render("Step 2: Opening conversation storage..."))
		slot, closer, err := cfg.OpenSlot()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to open storage:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		defer func() { _ = closer.Close() }()

		if _, _, err := slot.Read(internal.SessionsKey); err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to read conversations:"), err)
			failed = true
		} else {
			sessions := internal.NewSessionStore(slot).LoadAll()
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Found %d conversation(s)", len(sessions))))
			if healthcheckDetails {
				printSlotKeys(out, slot)
			}
		}
		fmt.Fprintln(out)

		// Step 3: Login
		fmt.Fprintln(out, infoStyle.Render("Step 3: Checking sign-in..."))
		if user, ok := internal.NewAuthStore(slot).Current(); ok {
			fmt.Fprintln(out, successStyle.Render("✅ Signed in as "+displayName(user)))
		} else {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Not signed in (run 'chatpane login')"))
		}
		fmt.Fprintln(out)

		// Step 4: Endpoints
		fmt.Fprintln(out, infoStyle.Render("Step 4: Contacting endpoints..."))
		checks := []struct {
			name string
			url  string
			ping func(context.Context) error
		}{
			{"Generation endpoint", cfg.BaseURL, internal.NewClient(cfg.BaseURL, cfg.RequestTimeout).Ping},
			{"Auth endpoint", cfg.AuthURL, internal.NewAuthClient(cfg.AuthURL, cfg.AuthTimeout).Ping},
		}
		for _, check := range checks {
			if err := check.ping(ctx); err != nil {
				fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("❌ %s unreachable (%s)", check.name, check.url)))
				if healthcheckDetails {
					fmt.Fprintf(out, "   %v\n", err)
				}
				failed = true
				continue
			}
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ %s reachable (%s)", check.name, check.url)))
		}
		fmt.Fprintln(out)

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		if failed {
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed")
		}
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

// printSlotKeys lists stored keys when the backend can enumerate them
func printSlotKeys(out io.Writer, slot internal.Slot) {
	lister, ok := slot.(interface{ Keys() ([]string, error) })
	if !ok {
		return
	}
	keys, err := lister.Keys()
	if err != nil {
		fmt.Fprintf(out, "   Failed to list keys: %v\n", err)
		return
	}
	for _, key := range keys {
		fmt.Fprintf(out, "   • %s\n", key)
	}
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckDetails, "details", false, "Show detailed diagnostic information")
}
