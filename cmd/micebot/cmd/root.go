package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"micebot/internal/api"
	"micebot/internal/config"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "micebot",
	Short:         "Chat bot and CLI for the mice product and order API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (yaml, json, toml or env)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	_ = viper.BindPFlag("CONFIG_FILE", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("LOG_LEVEL", rootCmd.PersistentFlags().Lookup("log-level"))
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger.
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, config.NewLogger(cfg.Logger, os.Stderr), nil
}

// newClient builds the API client from the configuration.
func newClient(cfg *config.Config, logger zerolog.Logger, opts ...api.Option) *api.Client {
	httpClient := &http.Client{Timeout: cfg.API.RequestTimeout()}
	opts = append([]api.Option{api.WithHTTPClient(httpClient)}, opts...)

	return api.New(cfg.API.Endpoint, cfg.API.Username, cfg.API.Password, logger, opts...)
}
