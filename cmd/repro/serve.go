package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bug-reproducer/internal/di"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a browser session over HTTP for remote runs",
	RunE:  runServer,
}

func init() {
	serveCmd.Flags().String("addr", ":8787", "listen address")
	_ = v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := di.NewLogger(cfg.Log, "browser-service")
	if err != nil {
		return err
	}
	defer log.Close()

	log.Info("Starting browser service", "addr", cfg.Server.Addr, "version", Version)
	if err := di.NewServer(cfg, log).ListenAndServe(ctx); err != nil {
		return err
	}
	log.Info("Browser service stopped")
	return nil
}
