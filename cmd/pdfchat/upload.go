package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "upload <file.pdf...>",
		Short: "Upload PDFs and print the document summary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, configPath, args)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runUpload(cmd *cobra.Command, configPath string, paths []string) error {
	a, err := newApp(cmd, configPath)
	if err != nil {
		return err
	}
	defer a.close()
	return uploadAndReport(cmd, a, paths)
}

// uploadAndReport uploads paths, prints the assistant's reply, and fails
// unless a document is ready afterwards.
func uploadAndReport(cmd *cobra.Command, a *app, paths []string) error {
	if err := a.upload(context.Background(), paths); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	s := a.ctrl.Snapshot()
	for _, m := range s.Messages {
		fmt.Fprintln(cmd.OutOrStdout(), m.Body)
	}
	if !s.DocumentReady() {
		return fmt.Errorf("upload: %s was not processed", strings.Join(paths, ", "))
	}
	return nil
}
