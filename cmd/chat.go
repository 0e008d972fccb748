package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/iksnae/chatpane/internal"
	"github.com/iksnae/chatpane/internal/export"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

var chatModel string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Start an interactive chat session.

Type a prompt and press Enter to send it. Lines starting with / are commands;
type /help to list them. History is kept in the data directory.`,
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
		if chatModel != "" && !a.cfg.HasModel(chatModel) {
			return fmt.Errorf("unknown model %q (available: %s)", chatModel, strings.Join(a.cfg.Models, ", "))
		}

		r := newREPL(a, a.controller(user, chatModel), cmd.OutOrStdout())
		return r.run(cmd.Context())
	},
}

var slashCommands = []struct {
	name, args, help string
}{
	{"/new", "", "start a new conversation"},
	{"/list", "", "show recent conversations"},
	{"/open", "<id|title>", "switch to a conversation"},
	{"/rename", "<title>", "rename the current conversation"},
	{"/delete", "[id|title]", "delete a conversation (default: current)"},
	{"/edit", "<n> <text>", "replace prompt n and regenerate its reply"},
	{"/file", "<path> [prompt]", "upload a file with an optional prompt"},
	{"/voice", "", "start or stop voice input"},
	{"/model", "[name]", "show or select the model"},
	{"/json", "", "toggle the JSON view of table replies"},
	{"/copy", "", "copy the last reply to the clipboard"},
	{"/export", "<n> <file>", "export reply n (.xlsx, .csv or .json)"},
	{"/help", "", "show this help"},
	{"/exit", "", "leave the chat"},
}

type voiceOutcome struct {
	result internal.VoiceResult
	err    error
}

// repl drives a Controller from typed lines
type repl struct {
	app      *app
	ctrl     *internal.Controller
	renderer *internal.Renderer
	out      io.Writer

	tableAsJSON bool

	mu          sync.Mutex
	voice       *voiceOutcome
	listening   bool
	voiceCancel context.CancelFunc
	wg          sync.WaitGroup
}

func newREPL(a *app, ctrl *internal.Controller, out io.Writer) *repl {
	return &repl{
		app:      a,
		ctrl:     ctrl,
		renderer: newRenderer(out),
		out:      out,
	}
}

func (r *repl) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeSlash)

	historyPath := filepath.Join(r.app.cfg.DataPath(), "history")
	if f, err := os.Open(historyPath); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		f, err := os.OpenFile(historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			internal.LogDebug("Failed to save history: %v", err)
			return
		}
		_, _ = line.WriteHistory(f)
		f.Close()
	}()

	internal.PrintInfo(r.out, fmt.Sprintf("Chatting with %s. Type /help for commands.", r.ctrl.State().Model))

	for {
		suggestion := r.takeVoiceOutcome()

		var input string
		var err error
		if suggestion != "" {
			input, err = line.PromptWithSuggestion(r.prompt(), suggestion, -1)
		} else {
			input, err = line.Prompt(r.prompt())
		}
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		exit, err := r.handle(ctx, input)
		if err != nil {
			internal.PrintError(r.out, err.Error())
		}
		if exit {
			break
		}
	}

	r.shutdown()
	return nil
}

// shutdown stops a running voice capture and waits for background work
func (r *repl) shutdown() {
	r.mu.Lock()
	cancel := r.voiceCancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

func (r *repl) prompt() string {
	r.mu.Lock()
	listening := r.listening
	r.mu.Unlock()
	if listening {
		return "🎙 > "
	}
	return "> "
}

func completeSlash(line string) []string {
	if !strings.HasPrefix(line, "/") || strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, c := range slashCommands {
		if strings.HasPrefix(c.name, line) {
			out = append(out, c.name+" ")
		}
	}
	return out
}

// handle processes one input line. It reports whether the chat should end.
func (r *repl) handle(ctx context.Context, input string) (bool, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false, nil
	}
	if !strings.HasPrefix(input, "/") {
		return false, r.send(ctx, input)
	}

	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "/exit", "/quit":
		return true, nil
	case "/help":
		r.printHelp()
	case "/new":
		r.app.store.ClearActive()
		internal.PrintInfo(r.out, "New conversation. Your next prompt starts it.")
	case "/list":
		fmt.Fprint(r.out, internal.RenderSidebar(r.app.store.Groups(now()), r.app.store.ActiveID()))
	case "/open":
		return false, r.open(rest)
	case "/rename":
		return false, r.rename(rest)
	case "/delete":
		return false, r.delete(rest)
	case "/edit":
		return false, r.edit(ctx, rest)
	case "/file":
		return false, r.file(ctx, rest)
	case "/voice":
		r.toggleVoice(ctx)
	case "/model":
		return false, r.model(rest)
	case "/json":
		r.tableAsJSON = !r.tableAsJSON
		state := "off"
		if r.tableAsJSON {
			state = "on"
		}
		internal.PrintInfo(r.out, "JSON view of tables "+state)
		r.showLastReply()
	case "/copy":
		return false, r.copyLast()
	case "/export":
		return false, r.exportMessage(rest)
	default:
		return false, fmt.Errorf("unknown command %s (type /help)", name)
	}
	return false, nil
}

func (r *repl) printHelp() {
	for _, c := range slashCommands {
		usage := c.name
		if c.args != "" {
			usage += " " + c.args
		}
		fmt.Fprintf(r.out, "  %-24s %s\n", usage, c.help)
	}
}

func (r *repl) send(ctx context.Context, text string) error {
	var result internal.SendResult
	err := internal.ShowProgress(ctx, "Generating...", func() error {
		var err error
		result, err = r.ctrl.SendPrompt(ctx, text)
		return err
	})
	if err != nil {
		return err
	}
	r.printResult(result)
	return nil
}

func (r *repl) printResult(result internal.SendResult) {
	if result.Status == internal.SendIgnored {
		return
	}
	fmt.Fprintln(r.out, r.renderer.RenderMessage(result.Reply, r.tableAsJSON))
}

func (r *repl) open(query string) error {
	if query == "" {
		return errors.New("usage: /open <id|title>")
	}
	session, err := r.app.findSession(query)
	if err != nil {
		return err
	}
	if err := r.app.store.SetActive(session.ID); err != nil {
		return err
	}
	fmt.Fprint(r.out, r.renderer.RenderSession(session))
	return nil
}

func (r *repl) rename(title string) error {
	session, ok := r.app.store.Active()
	if !ok {
		return errors.New("no active conversation")
	}
	if err := r.app.store.RenameSession(session.ID, title); err != nil {
		return err
	}
	renamed, _ := r.app.store.Get(session.ID)
	internal.PrintSuccess(r.out, fmt.Sprintf("Renamed to %q", renamed.Title))
	return nil
}

func (r *repl) delete(query string) error {
	var session internal.Session
	if query == "" {
		active, ok := r.app.store.Active()
		if !ok {
			return errors.New("no active conversation")
		}
		session = active
	} else {
		found, err := r.app.findSession(query)
		if err != nil {
			return err
		}
		session = found
	}

	if err := r.app.store.DeleteSession(session.ID); err != nil {
		return err
	}
	internal.PrintSuccess(r.out, fmt.Sprintf("Deleted %q", session.Title))
	return nil
}

func (r *repl) edit(ctx context.Context, args string) error {
	n, text, _ := strings.Cut(args, " ")
	index, err := strconv.Atoi(n)
	if err != nil || strings.TrimSpace(text) == "" {
		return errors.New("usage: /edit <n> <text>")
	}

	var result internal.SendResult
	err = internal.ShowProgress(ctx, "Generating...", func() error {
		var err error
		result, err = r.ctrl.EditPrompt(ctx, index, text)
		return err
	})
	if err != nil {
		return err
	}
	r.printResult(result)
	return nil
}

func (r *repl) file(ctx context.Context, args string) error {
	path, prompt, _ := strings.Cut(args, " ")
	if path == "" {
		return errors.New("usage: /file <path> [prompt]")
	}

	var result internal.SendResult
	err := internal.ShowProgress(ctx, "Uploading "+filepath.Base(path)+"...", func() error {
		var err error
		result, err = r.ctrl.SendFile(ctx, internal.ExpandPath(path), prompt)
		return err
	})
	if err != nil {
		return err
	}
	r.printResult(result)
	return nil
}

// toggleVoice starts a capture in the background, or stops the running one.
// The transcript pre-fills the next prompt.
func (r *repl) toggleVoice(ctx context.Context) {
	r.mu.Lock()
	if r.listening {
		cancel := r.voiceCancel
		r.mu.Unlock()
		cancel()
		internal.PrintInfo(r.out, "Voice input stopped")
		return
	}
	vctx, cancel := context.WithCancel(ctx)
	r.listening = true
	r.voiceCancel = cancel
	r.mu.Unlock()

	internal.PrintInfo(r.out, "Listening... press Enter when done, or /voice to stop")
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		result, err := r.ctrl.Voice(vctx)
		r.mu.Lock()
		r.listening = false
		r.voiceCancel = nil
		if !result.Stopped {
			r.voice = &voiceOutcome{result: result, err: err}
		}
		r.mu.Unlock()
	}()
}

// takeVoiceOutcome reports a finished capture and returns its transcript
func (r *repl) takeVoiceOutcome() string {
	r.mu.Lock()
	outcome := r.voice
	r.voice = nil
	r.mu.Unlock()

	if outcome == nil {
		return ""
	}
	if outcome.err != nil {
		internal.PrintError(r.out, outcome.err.Error())
		return ""
	}
	if outcome.result.Failed {
		if session, ok := r.app.store.Active(); ok && len(session.Messages) > 0 {
			fmt.Fprintln(r.out, r.renderer.RenderMessage(session.Messages[len(session.Messages)-1], false))
		}
		return ""
	}
	return outcome.result.Transcript
}

func (r *repl) model(name string) error {
	if name == "" {
		fmt.Fprintf(r.out, "Current model: %s\nAvailable: %s\n", r.ctrl.State().Model, strings.Join(r.app.cfg.Models, ", "))
		return nil
	}
	if !r.app.cfg.HasModel(name) {
		return fmt.Errorf("unknown model %q (available: %s)", name, strings.Join(r.app.cfg.Models, ", "))
	}
	r.ctrl.SetModel(name)
	internal.PrintSuccess(r.out, "Model set to "+name)
	return nil
}

func (r *repl) lastReply() (internal.Message, bool) {
	session, ok := r.app.store.Active()
	if !ok {
		return internal.Message{}, false
	}
	i := session.LastBotMessage()
	if i < 0 {
		return internal.Message{}, false
	}
	return session.Messages[i], true
}

func (r *repl) showLastReply() {
	msg, ok := r.lastReply()
	if !ok {
		return
	}
	if _, isTable := msg.Table(); isTable {
		fmt.Fprintln(r.out, r.renderer.RenderMessage(msg, r.tableAsJSON))
	}
}

func (r *repl) copyLast() error {
	msg, ok := r.lastReply()
	if !ok {
		return errors.New("nothing to copy")
	}

	text := msg.Raw
	if table, isTable := msg.Table(); isTable && r.tableAsJSON {
		data, err := json.MarshalIndent(internal.TableToRecordList(table), "", "  ")
		if err != nil {
			return err
		}
		text = string(data)
	}

	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	internal.PrintSuccess(r.out, "Copied to clipboard")
	return nil
}

func (r *repl) exportMessage(args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return errors.New("usage: /export <n> <file>")
	}
	index, err := strconv.Atoi(fields[0])
	if err != nil {
		return errors.New("usage: /export <n> <file>")
	}

	session, ok := r.app.store.Active()
	if !ok {
		return errors.New("no active conversation")
	}
	if index < 0 || index >= len(session.Messages) {
		return fmt.Errorf("no message %d (conversation has %d)", index, len(session.Messages))
	}

	filename := internal.ExpandPath(fields[1])
	if err := export.ExportMessage(session.Messages[index], filename); err != nil {
		return err
	}
	internal.PrintSuccess(r.out, "Exported to "+filename)
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "Model to chat with (default from config)")
}
