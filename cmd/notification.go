// ABOUTME: Notification commands for the kumactl CLI
// ABOUTME: Bulk add/delete from YAML data, list, and provider schema help

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kumactl/kumactl/internal/input"
	"github.com/kumactl/kumactl/internal/kuma"
	"github.com/kumactl/kumactl/internal/tui"
)

var (
	notificationDataPath string
	notificationName     string
	notificationVerbose  bool
)

var notificationCmd = &cobra.Command{
	Use:   "notification",
	Short: "Manage notification providers",
}

var notificationAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add notification providers from YAML data",
	Long: `Add notification providers described in a YAML document.

Each entry is validated against the provider's required field set before
any remote call is issued; providers that already exist are skipped.

Exit codes:
  0 - All providers processed
  1 - One or more providers failed
  2 - Error (config, connectivity, authentication, bad input)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runNotificationAdd(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var notificationDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete notification providers",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runNotificationDelete(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var notificationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notification providers",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runNotificationList(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var notificationProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported notification provider types",
	Run: func(cmd *cobra.Command, args []string) {
		runNotificationProviders(os.Stdout)
	},
}

var notificationProviderArgsCmd = &cobra.Command{
	Use:   "provider-args <provider>",
	Short: "Show the argument keys for one provider type",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if runNotificationProviderArgs(os.Stdout, args[0]) != 0 {
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(notificationCmd)
	notificationCmd.AddCommand(notificationAddCmd)
	notificationCmd.AddCommand(notificationDeleteCmd)
	notificationCmd.AddCommand(notificationListCmd)
	notificationCmd.AddCommand(notificationProvidersCmd)
	notificationCmd.AddCommand(notificationProviderArgsCmd)

	notificationAddCmd.Flags().StringVarP(&notificationDataPath, "notifications", "n", "", "Notification data file (required)")
	_ = notificationAddCmd.MarkFlagRequired("notifications")

	notificationDeleteCmd.Flags().StringVar(&notificationDataPath, "notifications", "", "Notification data file")
	notificationDeleteCmd.Flags().StringVarP(&notificationName, "name", "n", "", "Name of the provider to delete")
	notificationDeleteCmd.MarkFlagsMutuallyExclusive("notifications", "name")
	notificationDeleteCmd.MarkFlagsOneRequired("notifications", "name")

	notificationListCmd.Flags().BoolVar(&notificationVerbose, "verbose", false, "Show flattened provider configuration")
}

func runNotificationAdd(ctx context.Context, w io.Writer) int {
	specs, err := input.LoadNotifications(notificationDataPath)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	client, err := openSession(ctx, w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer client.Disconnect()

	if reportResults(w, client.ApplyNotifications(ctx, specs), "created") > 0 {
		return 1
	}
	return 0
}

func runNotificationDelete(ctx context.Context, w io.Writer) int {
	client, err := openSession(ctx, w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer client.Disconnect()

	var results []kuma.ApplyResult
	if notificationName != "" {
		skipped, err := client.DeleteNotificationByName(ctx, notificationName)
		results = append(results, kuma.ApplyResult{Name: notificationName, Skipped: skipped, Err: err})
	} else {
		specs, err := input.LoadNotifications(notificationDataPath)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		results = client.DeleteNotifications(ctx, specs)
	}

	if reportResults(w, results, "deleted") > 0 {
		return 1
	}
	return 0
}

func runNotificationList(ctx context.Context, w io.Writer) int {
	client, err := openSession(ctx, w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer client.Disconnect()

	notifications, err := client.Notifications(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if notificationVerbose || IsJSONOutput() {
		flattened := make([]map[string]any, 0, len(notifications))
		for _, n := range notifications {
			flat, err := n.Flatten()
			if err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return 2
			}
			flattened = append(flattened, flat)
		}
		data, _ := json.MarshalIndent(flattened, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	if len(notifications) == 0 {
		fmt.Fprintln(w, "No notification providers found.")
		return 0
	}

	rows := make([][]string, 0, len(notifications))
	for _, n := range notifications {
		rows = append(rows, []string{
			strconv.FormatInt(n.ID, 10),
			n.Type(),
			n.Name,
			strconv.FormatBool(n.Active),
			strconv.FormatBool(n.IsDefault),
		})
	}
	fmt.Fprint(w, tui.Table([]string{"id", "type", "name", "active", "isDefault"}, rows))
	return 0
}

func runNotificationProviders(w io.Writer) {
	rows := make([][]string, 0)
	for _, name := range kuma.NotificationProviderNames() {
		rows = append(rows, []string{name})
	}
	fmt.Fprint(w, tui.Table([]string{"supported providers"}, rows))
}

func runNotificationProviderArgs(w io.Writer, provider string) int {
	fields, ok := kuma.NotificationProviderFields(provider)
	if !ok {
		fmt.Fprintf(w, "Error: unknown provider '%s'\n", provider)
		return 2
	}
	rows := make([][]string, 0, len(fields))
	for _, field := range fields {
		rows = append(rows, []string{field.Name, strconv.FormatBool(field.Required)})
	}
	fmt.Fprint(w, tui.Table([]string{"argument key", "required"}, rows))
	return 0
}
