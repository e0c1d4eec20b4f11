// ABOUTME: Plain-text table renderer for command list output
// ABOUTME: Column-aligned rows with a styled header, no full TUI required

package tui

import (
	"fmt"
	"strings"

	"github.com/kumactl/kumactl/internal/tui/styles"
)

// Table renders headers and rows as an aligned text table with a styled
// header row and a rule beneath it.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder

	headerCells := make([]string, len(headers))
	for i, h := range headers {
		headerCells[i] = pad(h, widths[i])
	}
	b.WriteString(styles.TableHeader.Render(strings.Join(headerCells, "  ")))
	b.WriteString("\n")

	rules := make([]string, len(headers))
	for i := range headers {
		rules[i] = strings.Repeat("─", widths[i])
	}
	b.WriteString(styles.TableBorder.Render(strings.Join(rules, "  ")))
	b.WriteString("\n")

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i < len(widths) {
				cells[i] = pad(cell, widths[i])
			} else {
				cells[i] = cell
			}
		}
		b.WriteString(strings.Join(cells, "  "))
		b.WriteString("\n")
	}

	return b.String()
}

func pad(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}
