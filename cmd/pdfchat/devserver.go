package main

import (
	"github.com/spf13/cobra"
	"github.com/zulandar/pdfchat/internal/devserver"
)

func newDevServerCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local stand-in for the question-answering service",
		Long: "Serves the upload and query endpoints locally, storing PDFs on disk and in a SQLite catalog.\n" +
			"Answers are placeholders; use it to try the client without the real service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevServer(cmd, configPath, port)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config, 8000)")
	return cmd
}

func runDevServer(cmd *cobra.Command, configPath string, port int) error {
	cfg, logger, err := loadConfig(cmd, configPath)
	if err != nil {
		return err
	}
	dev := cfg.DevServer
	if port > 0 {
		dev.Port = port
	}
	if err := devserver.ValidateSchedule(dev.Retention); err != nil {
		return err
	}

	ctx, cancel := interruptContext(cmd)
	defer cancel()

	return devserver.Start(ctx, devserver.StartOpts{
		Config:       dev,
		MaxFileBytes: cfg.Upload.MaxFileBytes,
		Logger:       logger,
		Out:          cmd.OutOrStdout(),
	})
}
