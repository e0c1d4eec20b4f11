// ABOUTME: Status page commands for the kumactl CLI
// ABOUTME: Add (optionally with full config save), delete, list, and show

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
	statusPageDataPath string
	statusPageTitle    string
	statusPageSlug     string
	statusPageSave     bool
)

var statusPageCmd = &cobra.Command{
	Use:   "statuspage",
	Short: "Manage status pages",
}

var statusPageAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add status pages",
	Long: `Add status pages, either one page by title and slug or a batch
described in a YAML document.

With --save the full page configuration (description, theme, icon,
published monitor groups) is pushed after the page exists. Monitor
group entries that name unknown monitors are left out of the saved
configuration.

Exit codes:
  0 - All pages processed
  1 - One or more pages failed
  2 - Error (config, connectivity, authentication, bad input)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runStatusPageAdd(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var statusPageDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete status pages",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runStatusPageDelete(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var statusPageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List status pages",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runStatusPageList(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var statusPageShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show the full configuration of one status page",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runStatusPageShow(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusPageCmd)
	statusPageCmd.AddCommand(statusPageAddCmd)
	statusPageCmd.AddCommand(statusPageDeleteCmd)
	statusPageCmd.AddCommand(statusPageListCmd)
	statusPageCmd.AddCommand(statusPageShowCmd)

	statusPageAddCmd.Flags().StringVar(&statusPageDataPath, "statuspages", "", "Status page data file")
	statusPageAddCmd.Flags().StringVarP(&statusPageTitle, "title", "t", "", "Title of a single page to add")
	statusPageAddCmd.Flags().StringVarP(&statusPageSlug, "slug", "s", "", "Slug of a single page to add")
	statusPageAddCmd.Flags().BoolVar(&statusPageSave, "save", false, "Push the full page configuration after creation")
	statusPageAddCmd.MarkFlagsMutuallyExclusive("statuspages", "title")
	statusPageAddCmd.MarkFlagsMutuallyExclusive("statuspages", "slug")
	statusPageAddCmd.MarkFlagsRequiredTogether("title", "slug")
	statusPageAddCmd.MarkFlagsOneRequired("statuspages", "title")

	statusPageDeleteCmd.Flags().StringVar(&statusPageDataPath, "statuspages", "", "Status page data file")
	statusPageDeleteCmd.Flags().StringVarP(&statusPageSlug, "slug", "s", "", "Slug of the page to delete")
	statusPageDeleteCmd.MarkFlagsMutuallyExclusive("statuspages", "slug")
	statusPageDeleteCmd.MarkFlagsOneRequired("statuspages", "slug")
}

func runStatusPageAdd(ctx context.Context, w io.Writer) int {
	var specs []kuma.StatusPageSpec
	if statusPageDataPath != "" {
		loaded, err := input.LoadStatusPages(statusPageDataPath)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		specs = loaded
	} else {
		specs = []kuma.StatusPageSpec{{Title: statusPageTitle, Slug: statusPageSlug}}
	}

	client, err := openSession(ctx, w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer client.Disconnect()

	if reportResults(w, client.ApplyStatusPages(ctx, specs, statusPageSave), "created") > 0 {
		return 1
	}
	return 0
}

func runStatusPageDelete(ctx context.Context, w io.Writer) int {
	var slugs []string
	if statusPageSlug != "" {
		slugs = []string{statusPageSlug}
	} else {
		specs, err := input.LoadStatusPages(statusPageDataPath)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		for _, spec := range specs {
			slugs = append(slugs, spec.Slug)
		}
	}

	client, err := openSession(ctx, w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer client.Disconnect()

	results := make([]kuma.ApplyResult, 0, len(slugs))
	for _, slug := range slugs {
		skipped, err := client.DeleteStatusPage(ctx, slug)
		results = append(results, kuma.ApplyResult{Name: slug, Skipped: skipped, Err: err})
	}

	if reportResults(w, results, "deleted") > 0 {
		return 1
	}
	return 0
}

func runStatusPageList(ctx context.Context, w io.Writer) int {
	client, err := openSession(ctx, w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer client.Disconnect()

	pages, err := client.StatusPages(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(pages, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	if len(pages) == 0 {
		fmt.Fprintln(w, "No status pages found.")
		return 0
	}

	rows := make([][]string, 0, len(pages))
	for _, page := range pages {
		rows = append(rows, []string{
			strconv.FormatInt(page.ID, 10),
			page.Slug,
			page.Title,
			page.Theme,
			strconv.FormatBool(page.Published),
		})
	}
	fmt.Fprint(w, tui.Table([]string{"id", "slug", "title", "theme", "published"}, rows))
	return 0
}

func runStatusPageShow(ctx context.Context, w io.Writer, slug string) int {
	client, err := openSession(ctx, w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer client.Disconnect()

	details, found, err := client.StatusPageDetails(ctx, slug)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if !found {
		fmt.Fprintf(w, "Error: status page '%s' not found\n", slug)
		return 2
	}
	details["url"] = fmt.Sprintf("%s/status/%s", client.BaseURL(), slug)

	data, _ := json.MarshalIndent(details, "", "  ")
	fmt.Fprintln(w, string(data))
	return 0
}
