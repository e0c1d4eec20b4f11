// ABOUTME: Interactive monitor browser for `monitor list --interactive`
// ABOUTME: Bubbletea model wrapping a bubbles table over the monitor snapshot

package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kumactl/kumactl/internal/kuma"
	"github.com/kumactl/kumactl/internal/tui/styles"
)

// Browser is the interactive monitor list model.
type Browser struct {
	table    table.Model
	monitors []kuma.Monitor
}

// NewBrowser builds the browser over a monitor snapshot. Group membership
// is shown by resolving each monitor's parent id within the snapshot.
func NewBrowser(monitors []kuma.Monitor) *Browser {
	groupNames := make(map[int64]string)
	for _, m := range monitors {
		if m.IsGroup() {
			groupNames[m.ID] = m.Name
		}
	}

	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 32},
		{Title: "Type", Width: 14},
		{Title: "Group", Width: 20},
		{Title: "Target", Width: 36},
	}

	rows := make([]table.Row, 0, len(monitors))
	for _, m := range monitors {
		group := ""
		if m.Parent != nil {
			group = groupNames[*m.Parent]
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(m.ID, 10),
			m.Name,
			string(m.Type),
			group,
			monitorTarget(m),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows)+1, 20)),
	)

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	ts.Selected = ts.Selected.
		Foreground(styles.Text).
		Background(styles.Primary).
		Bold(false)
	t.SetStyles(ts)

	return &Browser{table: t, monitors: monitors}
}

// monitorTarget summarizes what a monitor points at.
func monitorTarget(m kuma.Monitor) string {
	switch {
	case m.URL != "":
		return m.URL
	case m.Hostname != "" && m.Port != 0:
		return fmt.Sprintf("%s:%d", m.Hostname, m.Port)
	case m.Hostname != "":
		return m.Hostname
	default:
		return ""
	}
}

// Init implements tea.Model.
func (b *Browser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return b, tea.Quit
		}
	case tea.WindowSizeMsg:
		b.table.SetHeight(min(len(b.table.Rows())+1, msg.Height-4))
	}

	var cmd tea.Cmd
	b.table, cmd = b.table.Update(msg)
	return b, cmd
}

// View implements tea.Model.
func (b *Browser) View() string {
	title := styles.Title.Render(fmt.Sprintf("Monitors (%d)", len(b.monitors)))
	help := styles.Help.Render("↑/↓ move · q quit")
	return title + "\n" + b.table.View() + "\n" + help + "\n"
}

// RunBrowser launches the interactive browser and blocks until quit.
func RunBrowser(monitors []kuma.Monitor) error {
	_, err := tea.NewProgram(NewBrowser(monitors)).Run()
	return err
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
