package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	botLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Renderer turns messages into terminal output
type Renderer struct {
	width    int
	color    bool
	markdown *glamour.TermRenderer
}

// NewRenderer creates a renderer wrapping text at width. Without color, bot
// text is rendered with glamour's plain style and JSON is not highlighted.
func NewRenderer(width int, color bool) *Renderer {
	if width <= 0 {
		width = 80
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if color {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(styles.NoTTYStyle))
	}

	md, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		LogDebug("Markdown renderer unavailable, printing raw text: %v", err)
		md = nil
	}

	return &Renderer{width: width, color: color, markdown: md}
}

// RenderMessage renders one message. When tableAsJSON is set a table reply is
// shown as its record list instead.
func (r *Renderer) RenderMessage(msg Message, tableAsJSON bool) string {
	if msg.Sender == SenderUser {
		return r.renderUser(msg)
	}
	if msg.Error {
		return r.style(errorStyle, "✗ ") + msg.Text()
	}

	switch payload := msg.Payload.(type) {
	case *TableData:
		if tableAsJSON {
			return r.renderJSON(TableToRecordList(payload))
		}
		return r.renderTable(payload)
	case JSONData:
		return r.renderJSON(payload)
	default:
		return r.renderText(msg.Text())
	}
}

// RenderSession renders every message in order, numbered so /edit and
// export-message can refer to them.
func (r *Renderer) RenderSession(s Session) string {
	var b strings.Builder
	b.WriteString(r.style(headingStyle, s.Title))
	b.WriteString("\n\n")
	for i, msg := range s.Messages {
		label := "bot"
		labelStyle := botLabelStyle
		if msg.Sender == SenderUser {
			label = "you"
			labelStyle = userStyle
		}
		fmt.Fprintf(&b, "%s %s\n", r.style(dimStyle, fmt.Sprintf("[%d]", i)), r.style(labelStyle, label))
		b.WriteString(r.RenderMessage(msg, false))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func (r *Renderer) renderUser(msg Message) string {
	text := msg.Text()
	if msg.Attachment != "" && msg.Attachment != text {
		text = fmt.Sprintf("%s\n📎 %s", text, msg.Attachment)
	} else if msg.Attachment != "" {
		text = "📎 " + text
	}
	return r.style(userStyle, "> ") + text
}

func (r *Renderer) renderText(text string) string {
	if r.markdown == nil {
		return text
	}
	out, err := r.markdown.Render(text)
	if err != nil {
		LogDebug("Markdown render failed: %v", err)
		return text
	}
	return strings.Trim(out, "\n")
}

func (r *Renderer) renderTable(t *TableData) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	return tbl.String()
}

func (r *Renderer) renderJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	if !r.color {
		return string(data)
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, string(data), "json", "terminal256", "monokai"); err != nil {
		return string(data)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

// RenderSidebar lists the Today and Previous 7 Days groups. The active
// session is marked with an asterisk.
func RenderSidebar(groups SidebarGroups, activeID string) string {
	var b strings.Builder
	section := func(name string, sessions []Session) {
		if len(sessions) == 0 {
			return
		}
		b.WriteString(headingStyle.Render(name))
		b.WriteString("\n")
		for _, s := range sessions {
			marker := " "
			if s.ID == activeID {
				marker = "*"
			}
			fmt.Fprintf(&b, "%s %s  %s\n", marker, dimStyle.Render(ShortID(s.ID)), s.Title)
		}
		b.WriteString("\n")
	}

	section("Today", groups.Today)
	section("Previous 7 Days", groups.Previous7Days)

	if b.Len() == 0 {
		return "No recent conversations.\n"
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// ShortID returns the last eight characters of a session id. UUIDv7 ids share
// their leading timestamp digits, so the tail tells sessions apart.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
