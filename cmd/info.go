// ABOUTME: Info command for the kumactl CLI
// ABOUTME: Prints version, homepage, and runtime details

package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/kumactl/kumactl/internal/tui"
)

const (
	appVersion  = "0.1.0"
	appHomepage = "https://github.com/kumactl/kumactl"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show version and project information",
	Run: func(cmd *cobra.Command, args []string) {
		runInfo(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(w io.Writer) {
	fmt.Fprint(w, tui.Table([]string{"key", "value"}, [][]string{
		{"version", appVersion},
		{"homepage", appHomepage},
		{"go", runtime.Version()},
		{"platform", runtime.GOOS + "/" + runtime.GOARCH},
	}))
}
