package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/pdfchat/internal/attachment"
	"github.com/zulandar/pdfchat/internal/config"
	"github.com/zulandar/pdfchat/internal/gateway"
	"github.com/zulandar/pdfchat/internal/logging"
	"github.com/zulandar/pdfchat/internal/notify"
	"github.com/zulandar/pdfchat/internal/session"
	"golang.org/x/term"
)

// app is the wiring shared by the client commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	ctrl   *session.Controller
	hook   *notify.Command
}

func addConfigFlag(cmd *cobra.Command, configPath *string) {
	cmd.Flags().StringVarP(configPath, "config", "c", config.DefaultPath, "path to pdfchat config file")
}

// loadConfig loads the config and installs the default logger on stderr.
func loadConfig(cmd *cobra.Command, configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.Init(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	return cfg, logger, nil
}

// newApp builds the session controller. Notifications are printed on stderr,
// sent to the configured hook, and to any extra notifiers given.
func newApp(cmd *cobra.Command, configPath string, extra ...notify.Notifier) (*app, error) {
	cfg, logger, err := loadConfig(cmd, configPath)
	if err != nil {
		return nil, err
	}

	client, err := gateway.NewClient(gateway.ClientOpts{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	hook := notify.NewCommand(cfg.Notify.Command, logger)
	notifiers := notify.Multi{
		notify.NewWriter(cmd.ErrOrStderr()),
		hook,
	}
	notifiers = append(notifiers, extra...)

	ctrl, err := session.New(session.Opts{
		Gateway:  client,
		Notifier: notifiers,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, ctrl: ctrl, hook: hook}, nil
}

// close waits for notification hooks still running.
func (a *app) close() {
	a.hook.Wait()
}

// upload reads paths from disk and starts an upload with them.
func (a *app) upload(ctx context.Context, paths []string) error {
	files, err := attachment.LoadAll(paths, a.cfg.Upload.MaxFileBytes)
	if err != nil {
		return err
	}
	return a.ctrl.StartUpload(ctx, files...)
}

// interruptContext returns a context cancelled on SIGINT or SIGTERM.
func interruptContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
