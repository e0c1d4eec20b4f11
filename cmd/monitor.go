// ABOUTME: Monitor commands for the kumactl CLI
// ABOUTME: Bulk add/delete from YAML documents plus list and detail views

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
	monitorDataPath    string
	monitorName        string
	monitorID          int64
	monitorShowGroups  bool
	monitorShowProcs   bool
	monitorVerbose     bool
	monitorInteractive bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Manage monitors",
}

var monitorAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add one or more monitors from YAML data",
	Long: `Add monitors described in one or more YAML documents.

Monitors are grouped under named groups; the reserved group name
'default' holds ungrouped monitors. Groups are created on demand and
existing monitors are left untouched.

Exit codes:
  0 - All monitors processed
  1 - One or more monitors failed
  2 - Error (config, connectivity, authentication, bad input)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runMonitorAdd(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var monitorDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete one or more monitors",
	Long: `Delete monitors by YAML data, by name, or by id.

Monitors that do not exist are skipped, not treated as failures.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runMonitorDelete(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var monitorTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List supported monitor types",
	Run: func(cmd *cobra.Command, args []string) {
		runMonitorTypes(os.Stdout)
	},
}

var monitorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List monitor groups and processes",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runMonitorList(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.AddCommand(monitorAddCmd)
	monitorCmd.AddCommand(monitorDeleteCmd)
	monitorCmd.AddCommand(monitorListCmd)
	monitorCmd.AddCommand(monitorTypesCmd)

	monitorAddCmd.Flags().StringVarP(&monitorDataPath, "monitors", "m", "", "Monitor data file or directory (required)")
	_ = monitorAddCmd.MarkFlagRequired("monitors")

	monitorDeleteCmd.Flags().StringVarP(&monitorDataPath, "monitors", "m", "", "Monitor data file or directory")
	monitorDeleteCmd.Flags().StringVarP(&monitorName, "name", "n", "", "Name of the monitor to delete")
	monitorDeleteCmd.Flags().Int64VarP(&monitorID, "id", "i", 0, "ID of the monitor to delete")
	monitorDeleteCmd.MarkFlagsMutuallyExclusive("monitors", "name", "id")
	monitorDeleteCmd.MarkFlagsOneRequired("monitors", "name", "id")

	monitorListCmd.Flags().Int64VarP(&monitorID, "id", "i", 0, "Show details for one monitor id")
	monitorListCmd.Flags().BoolVar(&monitorShowGroups, "groups", false, "Show only monitor groups")
	monitorListCmd.Flags().BoolVar(&monitorShowProcs, "processes", false, "Show only monitor processes")
	monitorListCmd.Flags().BoolVar(&monitorVerbose, "verbose", false, "Show raw entity data")
	monitorListCmd.Flags().BoolVar(&monitorInteractive, "interactive", false, "Browse monitors interactively")
	monitorListCmd.MarkFlagsMutuallyExclusive("groups", "processes")
}

// runMonitorAdd applies every monitor document under the data path.
func runMonitorAdd(ctx context.Context, w io.Writer) int {
	files, err := input.CollectFiles(monitorDataPath, input.KeyMonitors)
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

	failed := 0
	for _, file := range files {
		groups, err := input.LoadMonitors(file)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			failed++
			continue
		}
		results := client.ApplyMonitors(ctx, groups)
		failed += reportResults(w, results, "created")
	}

	if failed > 0 {
		return 1
	}
	return 0
}

// runMonitorDelete deletes by data files, by name, or by id.
func runMonitorDelete(ctx context.Context, w io.Writer) int {
	client, err := openSession(ctx, w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer client.Disconnect()

	var results []kuma.ApplyResult
	switch {
	case monitorName != "":
		skipped, err := client.DeleteMonitorByName(ctx, monitorName)
		results = append(results, kuma.ApplyResult{Name: monitorName, Skipped: skipped, Err: err})
	case monitorID != 0:
		skipped, err := client.DeleteMonitorByID(ctx, monitorID)
		results = append(results, kuma.ApplyResult{Name: strconv.FormatInt(monitorID, 10), Skipped: skipped, Err: err})
	default:
		files, err := input.CollectFiles(monitorDataPath, input.KeyMonitors)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		for _, file := range files {
			groups, err := input.LoadMonitors(file)
			if err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return 2
			}
			results = append(results, client.DeleteMonitors(ctx, groups)...)
		}
	}

	if reportResults(w, results, "deleted") > 0 {
		return 1
	}
	return 0
}

// runMonitorList renders the monitor snapshot as a table, raw JSON, a
// single-entity detail view, or the interactive browser.
func runMonitorList(ctx context.Context, w io.Writer) int {
	client, err := openSession(ctx, w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer client.Disconnect()

	monitors, err := client.Monitors(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if monitorID != 0 {
		return printMonitorDetails(w, monitors, monitorID)
	}

	if monitorInteractive {
		if err := tui.RunBrowser(monitors); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		return 0
	}

	filtered := monitors[:0:0]
	for _, m := range monitors {
		if monitorShowGroups && !m.IsGroup() {
			continue
		}
		if monitorShowProcs && m.IsGroup() {
			continue
		}
		filtered = append(filtered, m)
	}

	if monitorVerbose || IsJSONOutput() {
		data, _ := json.MarshalIndent(filtered, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	if len(filtered) == 0 {
		fmt.Fprintln(w, "No monitors found.")
		return 0
	}

	rows := make([][]string, 0, len(filtered))
	for _, m := range filtered {
		rows = append(rows, []string{
			strconv.FormatInt(m.ID, 10),
			m.Name,
			string(m.Type),
		})
	}
	fmt.Fprint(w, tui.Table([]string{"id", "name", "type"}, rows))
	return 0
}

func runMonitorTypes(w io.Writer) {
	rows := make([][]string, 0)
	for _, t := range kuma.MonitorTypes() {
		rows = append(rows, []string{string(t)})
	}
	fmt.Fprint(w, tui.Table([]string{"supported types"}, rows))
}

func printMonitorDetails(w io.Writer, monitors []kuma.Monitor, id int64) int {
	for _, m := range monitors {
		if m.ID == id {
			data, _ := json.MarshalIndent(m, "", "  ")
			fmt.Fprintln(w, string(data))
			return 0
		}
	}
	fmt.Fprintf(w, "Monitor with ID %d does not exist.\n", id)
	return 2
}
