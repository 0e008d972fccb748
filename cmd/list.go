package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chatpane/internal"
	"github.com/spf13/cobra"
)

var (
	listAll bool
	now     = time.Now
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	Long: `List conversations the way the sidebar groups them: Today and Previous 7 Days.
Older conversations are only shown with --all.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if listAll {
			displaySessions(out, a.store.Sessions(), now())
			return nil
		}

		fmt.Fprint(out, internal.RenderSidebar(a.store.Groups(now()), ""))
		return nil
	},
}

// displaySessions prints every session, newest first, as an aligned table
func displaySessions(out io.Writer, sessions []internal.Session, at time.Time) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📋 No sessions found"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d session(s)", len(sessions))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Created")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 80))

	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		title := s.Title
		if title == "" {
			title = "Untitled"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			idStyle.Render(internal.ShortID(s.ID)),
			title,
			countStyle.Render(strconv.Itoa(len(s.Messages))),
			dateStyle.Render(formatCreated(s.Timestamp, at)),
		)
	}
	_ = w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, idStyle.Render("💡 Tip: use the ID or part of the title with `chatpane show <id>`"))
}

func formatCreated(t, at time.Time) string {
	if t.IsZero() {
		return "-"
	}
	t = t.In(at.Location())
	diff := at.Sub(t)
	switch {
	case diff < 24*time.Hour && t.Day() == at.Day():
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listAll, "all", false, "List every conversation, including older ones")
}
