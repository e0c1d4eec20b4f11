// ABOUTME: Entry point for the kumactl CLI
// ABOUTME: Command-line tool for managing monitors, notifications, and status pages

package main

import (
	"fmt"
	"os"

	"github.com/kumactl/kumactl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
