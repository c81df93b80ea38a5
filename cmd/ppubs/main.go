// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ppubs CLI, a client for the
// USPTO Public Search application: query the patent index, fetch
// highlighted documents, and export per-document PDFs through the
// asynchronous print-job workflow.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ppubs/internal/secrets"
	"github.com/pdiddy/ppubs/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "ppubs/0.1"
)

// loadedSecrets holds keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the ppubs CLI.
var rootCmd = &cobra.Command{
	Use:   "ppubs",
	Short: "Search USPTO Public Search and export patent PDFs",
	Long: `ppubs is a client for the USPTO Public Search application. It manages the
service's session-and-token authentication, runs paginated queries against the
patent index, fetches highlighted full-text documents, and exports per-document
PDFs through the service's asynchronous print-job workflow.

Exports are idempotent: a document whose PDF already exists in the destination
directory is skipped without any network activity.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ppubs.yaml or ~/.config/ppubs/config.yaml)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	rootCmd.PersistentFlags().String("user-agent", "", "User-Agent header (default ppubs/0.1)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ppubs")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ppubs"))
		}
	}

	viper.SetEnvPrefix("PPUBS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// clientConfig assembles the client configuration from flags, the config
// file, and loaded secrets, in that order of precedence.
func clientConfig(cmd *cobra.Command) types.ClientConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("timeout")
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	userAgent, _ := cmd.Flags().GetString("user-agent")
	if userAgent == "" {
		userAgent = viper.GetString("user_agent")
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	userAgent = secrets.UserAgent(userAgent, loadedSecrets)

	return types.ClientConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: userAgent,
		},
		PollInterval: viper.GetDuration("poll_interval"),
		MaxPolls:     viper.GetInt("max_polls"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
