package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ledgerline/erp-client/internal/apiclient"
	"github.com/ledgerline/erp-client/internal/config"
	"github.com/ledgerline/erp-client/internal/credstore"
	"github.com/ledgerline/erp-client/internal/services"
	"github.com/spf13/cobra"
)

var logLevel *slog.LevelVar = new(slog.LevelVar)

// app holds what the commands share once the configuration is loaded.
type app struct {
	config   config.Config
	client   *apiclient.Client
	registry *services.Registry
}

func newRootCmd() *cobra.Command {
	var configDir, profile string
	var debug bool
	current := &app{}

	rootCmd := &cobra.Command{
		Use:           "erpctl",
		Short:         "Command line client for the ERP REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel})))
			paths := []string{}
			if configDir != "" {
				paths = append(paths, configDir)
			}
			cfg, err := config.NewConfigHandler(paths...).Config()
			if err != nil {
				return fmt.Errorf("loading the configuration failed: %w", err)
			}
			if debug || cfg.DebugMode {
				logLevel.Set(slog.LevelDebug)
			}
			store, err := credstore.NewFromConfig(cfg.Credentials, cfg.Redis)
			if err != nil {
				return err
			}
			options := []apiclient.ClientOption{
				apiclient.WithConfig(cfg.Client),
				apiclient.WithCredentialsConfig(cfg.Credentials),
				apiclient.WithCredentialStore(store),
			}
			if profile != "" {
				options = append(options, apiclient.WithProfile(profile))
			}
			client, err := apiclient.NewClient(options...)
			if err != nil {
				return err
			}
			current.config = cfg
			current.client = client
			current.registry = services.NewRegistry(client)
			slog.Debug("CLI", "message", "client ready", "baseURL", client.BaseURL(), "profile", client.Profile(), "store", cfg.Credentials.Store)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "", "Directory containing config.yaml and secret_config.yaml")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "Credential profile (overrides credentials.id)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newLoginCmd(current), newLogoutCmd(current), newRefreshCmd(current), newRequestCmd(current))
	for _, name := range services.CollectionNames() {
		rootCmd.AddCommand(newResourceCmd(current, name))
	}
	return rootCmd
}

func printJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
