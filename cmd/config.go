// ABOUTME: Config commands for the kumactl CLI
// ABOUTME: Create (interactive form or flags), show with redacted secrets, delete

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kumactl/kumactl/internal/config"
	"github.com/kumactl/kumactl/internal/tui"
)

var (
	configURL      string
	configUser     string
	configPassword string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the kumactl configuration file",
}

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file",
	Long: `Create a configuration file holding the server URL and credentials.

Values may be supplied with flags; anything left out is collected through
an interactive form. The file is written with owner-only permissions.`,
	Run: func(cmd *cobra.Command, args []string) {
		if runConfigCreate(os.Stdout) != 0 {
			os.Exit(2)
		}
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active configuration with the password redacted",
	Run: func(cmd *cobra.Command, args []string) {
		if runConfigShow(os.Stdout) != 0 {
			os.Exit(2)
		}
	},
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		if runConfigDelete(os.Stdout) != 0 {
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCreateCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configDeleteCmd)

	configCreateCmd.Flags().StringVar(&configURL, "url", "", "Monitoring server URL")
	configCreateCmd.Flags().StringVar(&configUser, "user", "", "Login username")
	configCreateCmd.Flags().StringVar(&configPassword, "password", "", "Login password")
}

func runConfigCreate(w io.Writer) int {
	cfg := config.Config{
		URL:      configURL,
		User:     configUser,
		Password: configPassword,
	}

	if cfg.URL == "" || cfg.User == "" || cfg.Password == "" {
		if err := tui.ConfigForm(&cfg); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	path := GetConfigPath()
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.Save(&cfg, path); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	fmt.Fprintf(w, "Config written to %s\n", path)
	return 0
}

func runConfigShow(w io.Writer) int {
	cfg, path, err := config.Load(GetConfigPath())
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	redacted := cfg.Redacted()
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(redacted, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	fmt.Fprintf(w, "Config file: %s\n", path)
	fmt.Fprint(w, tui.Table([]string{"key", "value"}, [][]string{
		{"url", redacted.URL},
		{"user", redacted.User},
		{"password", redacted.Password},
	}))
	return 0
}

func runConfigDelete(w io.Writer) int {
	path, err := config.Delete(GetConfigPath())
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	fmt.Fprintf(w, "Config removed: %s\n", path)
	return 0
}
