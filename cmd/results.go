// ABOUTME: Shared batch-result reporting for bulk commands
// ABOUTME: Renders per-entity outcomes and computes the command exit code

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kumactl/kumactl/internal/kuma"
	"github.com/kumactl/kumactl/internal/tui/styles"
)

// reportResults prints one line per entity outcome and returns the number
// of failures. verb names the attempted operation ("created", "deleted").
func reportResults(w io.Writer, results []kuma.ApplyResult, verb string) int {
	if IsJSONOutput() {
		return reportResultsJSON(w, results, verb)
	}

	failed := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(w, "%s %s: %v\n", styles.Failed.Render("✗"), r.Name, r.Err)
		case r.Skipped:
			fmt.Fprintf(w, "%s %s: does not exist, skipped\n", styles.Skipped.Render("-"), r.Name)
		case r.Created:
			fmt.Fprintf(w, "%s %s %s (id %d)\n", styles.Created.Render("✓"), r.Name, verb, r.ID)
		default:
			fmt.Fprintf(w, "%s %s already exists (id %d)\n", styles.Skipped.Render("="), r.Name, r.ID)
		}
	}

	if failed > 0 {
		fmt.Fprintf(w, "\nFAILED: %d of %d item(s)\n", failed, len(results))
	} else {
		fmt.Fprintf(w, "\nOK: %d item(s) processed\n", len(results))
	}
	return failed
}

func reportResultsJSON(w io.Writer, results []kuma.ApplyResult, verb string) int {
	type item struct {
		Group  string `json:"group,omitempty"`
		Name   string `json:"name"`
		ID     int64  `json:"id,omitempty"`
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}

	failed := 0
	items := make([]item, 0, len(results))
	for _, r := range results {
		entry := item{Group: r.Group, Name: r.Name, ID: r.ID}
		switch {
		case r.Err != nil:
			failed++
			entry.Status = "failed"
			entry.Error = r.Err.Error()
		case r.Skipped:
			entry.Status = "skipped"
		case r.Created:
			entry.Status = verb
		default:
			entry.Status = "exists"
		}
		items = append(items, entry)
	}

	status := "ok"
	if failed > 0 {
		status = "failed"
	}
	data, _ := json.MarshalIndent(map[string]any{
		"status": status,
		"items":  items,
	}, "", "  ")
	fmt.Fprintln(w, string(data))
	return failed
}
