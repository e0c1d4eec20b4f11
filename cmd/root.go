// ABOUTME: Root command for the kumactl CLI
// ABOUTME: Handles global flags, config discovery, and session setup

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kumactl/kumactl/internal/config"
	"github.com/kumactl/kumactl/internal/kuma"
)

var (
	configPath  string
	jsonOutput  bool
	waitSeconds int
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "kumactl",
	Short: "CLI for managing monitors, notifications, and status pages",
	Long: `kumactl manages monitors, notification providers, and status pages on a
remote monitoring server over its real-time event API.

Environment Variables:
  KUMACTL_CONFIG  Config file path (overrides the default search locations)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (overrides KUMACTL_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().IntVar(&waitSeconds, "timeout", 30, "Wait bound in seconds for server responses")
	rootCmd.Version = appVersion
}

// GetConfigPath returns the config path from flag, env, or empty for the
// default location search (in priority order).
func GetConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("KUMACTL_CONFIG"); envPath != "" {
		return envPath
	}
	return ""
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// waitBound returns the configured wait bound for calls and refreshes.
func waitBound() time.Duration {
	if waitSeconds <= 0 {
		return kuma.DefaultTimeout
	}
	return time.Duration(waitSeconds) * time.Second
}

// openSession loads the config, connects, and logs in. Transport and
// authentication failures are fatal for the whole command.
func openSession(ctx context.Context, w io.Writer) (*kuma.Client, error) {
	cfg, path, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w (run 'kumactl config create' first)", err)
	}

	client, err := kuma.Connect(ctx, cfg.URL, nil, kuma.WithTimeout(waitBound()))
	if err != nil {
		return nil, err
	}

	if _, err := client.Login(ctx, cfg.User, cfg.Password); err != nil {
		client.Disconnect()
		return nil, fmt.Errorf("login to %s failed: %w", cfg.URL, err)
	}

	if !IsJSONOutput() {
		fmt.Fprintf(w, "Connected to %s (config: %s)\n", cfg.URL, path)
	}
	return client, nil
}
