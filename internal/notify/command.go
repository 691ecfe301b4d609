package notify

import (
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Environment variables carrying the notification to the command hook.
// Templates that need a value outside single quotes should reference these
// (e.g. "$PDFCHAT_NOTIFY_DETAIL") instead of a placeholder.
const (
	EnvTitle    = "PDFCHAT_NOTIFY_TITLE"
	EnvDetail   = "PDFCHAT_NOTIFY_DETAIL"
	EnvKind     = "PDFCHAT_NOTIFY_KIND"
	EnvSeverity = "PDFCHAT_NOTIFY_SEVERITY"
)

// Command runs a shell command template for each notification, e.g.
// "notify-send '{{.Title}}' '{{.Detail}}'". Placeholders are only safe
// inside single quotes: values are escaped for that context and nothing
// else. The same values are exported as PDFCHAT_NOTIFY_* variables.
// Inside tmux it also shows the notification in the status line.
//
// Hooks run in the background so a slow command never stalls the caller;
// Wait blocks until those started so far have finished. Failures are logged.
type Command struct {
	Template string
	Logger   *slog.Logger

	run func(env []string, name string, args ...string) ([]byte, error)
	wg  sync.WaitGroup
}

// NewCommand builds a Command notifier; an empty template disables the shell
// hook but keeps the tmux message.
func NewCommand(template string, logger *slog.Logger) *Command {
	if logger == nil {
		logger = slog.Default()
	}
	return &Command{Template: template, Logger: logger, run: runCombined}
}

// Notify starts the configured hooks and returns without waiting for them.
func (c *Command) Notify(n Notification) {
	inTmux := os.Getenv("TMUX") != ""
	if c.Template == "" && !inTmux {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.execute(n, inTmux)
	}()
}

// Wait blocks until every hook started by Notify has exited.
func (c *Command) Wait() {
	c.wg.Wait()
}

func (c *Command) execute(n Notification, inTmux bool) {
	if c.Template != "" {
		cmdStr := templateNotification(c.Template, n)
		if out, err := c.run(notificationEnv(n), "sh", "-c", cmdStr); err != nil {
			c.Logger.Warn("notify: command failed", "error", err, "output", strings.TrimSpace(string(out)))
		}
	}

	if inTmux {
		if _, err := c.run(nil, "tmux", "display-message", "pdfchat: "+n.Title); err != nil {
			c.Logger.Warn("notify: tmux display-message failed", "error", err)
		}
	}
}

// templateNotification replaces placeholders with values escaped for use
// inside '...': a single quote becomes '\'' so the argument stays whole.
func templateNotification(command string, n Notification) string {
	esc := func(s string) string { return strings.ReplaceAll(s, "'", `'\''`) }
	r := strings.NewReplacer(
		"{{.Title}}", esc(n.Title),
		"{{.Detail}}", esc(n.Detail),
		"{{.Kind}}", esc(string(n.Kind)),
		"{{.Severity}}", esc(string(n.Severity)),
	)
	return r.Replace(command)
}

// notificationEnv returns the PDFCHAT_NOTIFY_* assignments for n.
func notificationEnv(n Notification) []string {
	return []string{
		EnvTitle + "=" + n.Title,
		EnvDetail + "=" + n.Detail,
		EnvKind + "=" + string(n.Kind),
		EnvSeverity + "=" + string(n.Severity),
	}
}

func runCombined(env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	return cmd.CombinedOutput()
}
