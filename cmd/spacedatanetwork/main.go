// Package main provides the entry point for the XTCE codec service: an
// HTTP and CLI front end over internal/xtce's bit-level decode/encode engine.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"

	"github.com/spacedatanetwork/sdn-server/internal/api"
	"github.com/spacedatanetwork/sdn-server/internal/config"
)

var log = logging.Logger("sdn-xtce")

var rootCmd = &cobra.Command{
	Use:   "sdn-xtce",
	Short: "XTCE telemetry/command codec service",
	Long: `sdn-xtce loads XTCE 1.3 schema documents and exposes HTTP and CLI
entry points for converting them to JSON Schema/FlatBuffers and for
decoding and encoding packets and commands against them.`,
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the XTCE HTTP API",
	Long:  `Start the HTTP server exposing schema conversion and packet/command decode+encode routes.`,
	RunE:  runDaemon,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE:  runInit,
}

var (
	configPath string
	listenAddr string
	debug      bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	daemonCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "override listen address")

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if debug {
			logging.SetAllLoggers(logging.LevelDebug)
		} else {
			logging.SetAllLoggers(logging.LevelInfo)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	addr := cfg.Admin.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}
	if addr == "" {
		addr = "127.0.0.1:5001"
	}

	scheme := "http"
	certFile := strings.TrimSpace(cfg.Admin.TLSCertFile)
	keyFile := strings.TrimSpace(cfg.Admin.TLSKeyFile)
	if cfg.Admin.TLSEnabled {
		scheme = "https"
		if certFile == "" || keyFile == "" {
			return fmt.Errorf("tls is enabled but tls_cert_file or tls_key_file is empty")
		}
	}

	mux := http.NewServeMux()

	xtceAPI := api.NewXTCEHandler()
	xtceAPI.RegisterRoutes(mux)
	log.Infof("XTCE schema conversion API at %s://%s/api/v1/xtce/convert", scheme, addr)
	log.Infof("XTCE packet decode API at %s://%s/api/v1/xtce/decode", scheme, addr)
	log.Infof("XTCE packet/command encode API at %s://%s/api/v1/xtce/encode", scheme, addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.Admin.TLSEnabled {
			errCh <- server.ListenAndServeTLS(certFile, keyFile)
		} else {
			errCh <- server.ListenAndServe()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sigChan:
		log.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()

	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	log.Infof("Initialized sdn-xtce configuration at %s", path)
	return nil
}
