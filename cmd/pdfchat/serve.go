package main

import (
	"github.com/spf13/cobra"
	"github.com/zulandar/pdfchat/internal/notify"
	"github.com/zulandar/pdfchat/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat web interface",
		Long:  "Launches a local web page for uploading PDFs and chatting about them in the browser.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config, 5173)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	broker := notify.NewBroker(16)
	notices := web.NewNotices(5)

	a, err := newApp(cmd, configPath, broker, notices)
	if err != nil {
		return err
	}
	defer a.close()
	if port <= 0 {
		port = a.cfg.Web.Port
	}

	ctx, cancel := interruptContext(cmd)
	defer cancel()

	return web.Start(ctx, web.StartOpts{
		Controller:   a.ctrl,
		Broker:       broker,
		Notices:      notices,
		Port:         port,
		MaxFileBytes: a.cfg.Upload.MaxFileBytes,
		Logger:       a.logger,
		Out:          cmd.OutOrStdout(),
	})
}
