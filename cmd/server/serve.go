package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/photo-share/internal/config"
	"github.com/sakif/photo-share/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and block until SIGINT or SIGTERM.

Without a session secret every restart signs users out, because a new
random secret is generated for the process.

Example:
  server serve --port 8080
  SESSION_SECRET=$(openssl rand -hex 32) server serve`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "port to listen on (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions) error {
	cfg, logger, err := prepareServe(opts)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Start blocks until shutdown and closes the database.
	return srv.Start()
}

// prepareServe resolves the final config and logger for serve.
func prepareServe(opts *ServeOptions) (config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return config.Config{}, nil, err
	}
	if opts.Port != 0 {
		cfg.Port = opts.Port
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}

	if cfg.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return config.Config{}, nil, err
		}
		cfg.SessionSecret = secret
		logger.Warn("SESSION_SECRET not set, using a random secret; sessions end on restart")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
