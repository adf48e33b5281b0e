package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/southbay/edlconv/internal/api"
	"github.com/southbay/edlconv/internal/config"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local conversion API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port on 127.0.0.1 (default from EDLCONV_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.Port()
	if cmd.Flags().Changed("port") {
		if servePort < 1 || servePort > 65535 {
			return fmt.Errorf("port must be between 1 and 65535")
		}
		port = servePort
	}

	a.logger.Info("starting edlconv server",
		"version", config.Version,
		"history", a.repo != nil,
		"auth", a.cfg.AuthToken() != "",
	)

	srvCfg := api.ServerConfig{
		Port:      port,
		Service:   a.service(),
		History:   a.repo,
		Defaults:  a.settings(),
		AuthToken: a.cfg.AuthToken(),
		Logger:    a.logger,
		StartTime: startTime,
		Version:   config.Version,
	}
	apiServer := api.NewServer(srvCfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", "error", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}
