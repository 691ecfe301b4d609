package main

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"github.com/zulandar/pdfchat/internal/notify"
)

func newAskCmd() *cobra.Command {
	var (
		configPath string
		files      []string
		exportDir  string
	)

	cmd := &cobra.Command{
		Use:   "ask --file <file.pdf> <question>",
		Short: "Upload PDFs and ask a single question",
		Long:  "Uploads the given PDFs, asks one question about them and prints the answer.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, configPath, files, strings.Join(args, " "), exportDir)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "PDF file to upload (repeatable)")
	cmd.Flags().StringVar(&exportDir, "export", "", "also save the conversation into this directory")
	cmd.MarkFlagRequired("file")
	return cmd
}

func runAsk(cmd *cobra.Command, configPath string, files []string, question, exportDir string) error {
	var queryFailed atomic.Bool
	watch := notify.Func(func(n notify.Notification) {
		if n.Kind == notify.KindQueryFailed {
			queryFailed.Store(true)
		}
	})

	a, err := newApp(cmd, configPath, watch)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	if err := a.upload(ctx, files); err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	if !a.ctrl.Snapshot().DocumentReady() {
		return fmt.Errorf("ask: %s was not processed", strings.Join(files, ", "))
	}

	if err := a.ctrl.SendMessage(ctx, question); err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	msgs := a.ctrl.Snapshot().Messages
	fmt.Fprintln(cmd.OutOrStdout(), msgs[len(msgs)-1].Body)

	if exportDir != "" {
		if _, err := a.ctrl.ExportToFile(exportDir); err != nil {
			return fmt.Errorf("ask: %w", err)
		}
	}
	if queryFailed.Load() {
		return fmt.Errorf("ask: query failed")
	}
	return nil
}
