// Package cmd provides the CLI commands for the Shopie client.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shopie/shopie-cli/internal/config"
)

var (
	cfgFile   string
	outFormat string
	noPersist bool
)

var rootCmd = &cobra.Command{
	Use:   "shopie",
	Short: "Shopie - e-commerce demo client",
	Long: `Shopie is a command-line client for the Shopie e-commerce demo backend.

It signs in against the backend, keeps the session on disk, mirrors the
server-side cart, and runs the checkout sequence.

Quick start:
  1. Start a backend, or run the built-in mock: shopie mock
  2. shopie register "Ada Lovelace" ada@example.com secret
  3. shopie products
  4. shopie cart add 1
  5. shopie checkout --method Stripe

Configuration:
  Config is loaded from shopie.yaml in the current directory or $HOME/.shopie/.
  Environment variables override config values with the SHOPIE_ prefix.
  Example: SHOPIE_API_BASE_URL=http://localhost:8081/api`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./shopie.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outFormat, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&noPersist, "no-persist", false, "keep the session in memory only")
}

func initConfig() {
	config.InitViper(cfgFile)
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
