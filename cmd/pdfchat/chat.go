package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/pdfchat/internal/models"
	"github.com/zulandar/pdfchat/internal/session"
)

const chatHelp = `Commands:
  /upload <file.pdf...>  upload PDFs (replaces the current conversation)
  /export [dir]          save the conversation as chat-history-<date>.txt
  /status                show the session state
  /help                  show this help
  /quit                  leave
Anything else is sent as a question about the uploaded documents.`

func newChatCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "chat [file.pdf...]",
		Short: "Start an interactive chat about PDF documents",
		Long:  "Starts an interactive chat. PDFs given as arguments are uploaded first; use /upload to load others.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, configPath, args)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runChat(cmd *cobra.Command, configPath string, paths []string) error {
	a, err := newApp(cmd, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &repl{
		app:         a,
		out:         cmd.OutOrStdout(),
		interactive: isTerminal(cmd.InOrStdin()),
	}

	if len(paths) > 0 {
		r.doUpload(ctx, paths)
	} else {
		fmt.Fprintln(r.out, "Upload one or more PDF files with /upload to start chatting. Type /help for commands.")
	}
	return r.run(ctx, cmd.InOrStdin())
}

// repl reads lines and turns them into session intents.
type repl struct {
	app         *app
	out         io.Writer
	interactive bool
	lastShown   uint64
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		r.prompt()
		if !scanner.Scan() {
			break
		}
		if !r.handle(ctx, scanner.Text()) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("chat: read input: %w", err)
	}
	return nil
}

func (r *repl) prompt() {
	if !r.interactive {
		return
	}
	fmt.Fprint(r.out, r.app.ctrl.Snapshot().Placeholder()+"\n> ")
}

// handle processes one input line; it returns false when the user quits.
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if !strings.HasPrefix(line, "/") {
		r.ask(ctx, line)
		return true
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return false
	case "/help":
		fmt.Fprintln(r.out, chatHelp)
	case "/status":
		r.status()
	case "/upload":
		if len(fields) < 2 {
			fmt.Fprintln(r.out, "usage: /upload <file.pdf...>")
			return true
		}
		r.doUpload(ctx, fields[1:])
	case "/export":
		dir := r.app.cfg.Export.Dir
		if len(fields) > 1 {
			dir = fields[1]
		}
		r.export(dir)
	default:
		fmt.Fprintf(r.out, "Unknown command %s. Type /help for commands.\n", fields[0])
	}
	return true
}

func (r *repl) doUpload(ctx context.Context, paths []string) {
	fmt.Fprintf(r.out, "Uploading %s...\n", strings.Join(paths, ", "))
	// Outcome notifications are printed by the notifier.
	if err := r.app.upload(ctx, paths); err != nil && !isIntentRejection(err) {
		fmt.Fprintf(r.out, "Error: %v\n", err)
	}
	r.showNew()
}

func (r *repl) ask(ctx context.Context, text string) {
	err := r.app.ctrl.SendMessage(ctx, text)
	if errors.Is(err, session.ErrBusy) {
		fmt.Fprintln(r.out, "Please wait for the current request to finish.")
	}
	r.showNew()
}

func (r *repl) export(dir string) {
	path, err := r.app.ctrl.ExportToFile(dir)
	switch {
	case errors.Is(err, session.ErrEmptyHistory):
		fmt.Fprintln(r.out, "Nothing to export yet.")
	case err != nil:
		fmt.Fprintf(r.out, "Error: %v\n", err)
	default:
		fmt.Fprintf(r.out, "Saved %s\n", path)
	}
}

func (r *repl) status() {
	s := r.app.ctrl.Snapshot()
	doc := s.DocumentName
	if doc == "" {
		doc = "(none)"
	}
	fmt.Fprintf(r.out, "State:    %s\nDocument: %s\nMessages: %d\nBackend:  %s\n",
		s.Phase, doc, len(s.Messages), r.app.cfg.API.BaseURL)
}

// showNew prints assistant messages added since the last call. The user's
// own messages are already on screen.
func (r *repl) showNew() {
	for _, m := range r.app.ctrl.Snapshot().Messages {
		if m.ID <= r.lastShown {
			continue
		}
		r.lastShown = m.ID
		if m.Role == models.RoleAssistant {
			fmt.Fprintf(r.out, "%s: %s\n", m.Speaker(), m.Body)
		}
	}
}

// isIntentRejection reports whether err is a precondition failure the
// controller has already reported through a notification.
func isIntentRejection(err error) bool {
	return errors.Is(err, session.ErrInvalidFileType) ||
		errors.Is(err, session.ErrBusy) ||
		errors.Is(err, session.ErrNoDocument) ||
		errors.Is(err, session.ErrNoFiles)
}
