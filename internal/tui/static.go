package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/cryptogamefiverse/nftdash/internal/table"
)

var (
	staticHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	staticCell   = lipgloss.NewStyle().Padding(0, 1)
	staticNumber = staticCell.Align(lipgloss.Right)
	staticBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderStatic draws one page of the table for non-interactive output.
func RenderStatic(snap table.Snapshot) string {
	headers := make([]string, 0, len(columnSpecs))
	for _, c := range columnSpecs {
		headers = append(headers, headerTitle(snap, c))
	}

	rows := make([][]string, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		c := cells(r, nameWidth)
		if r.Selected {
			c[1] = "* " + c[1]
		}
		rows = append(rows, c[1:])
	}

	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(staticBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == ltable.HeaderRow:
				return staticHeader
			case col == 0:
				return staticCell
			}
			return staticNumber
		})

	return t.Render()
}

// StaticFooter summarizes the page under a static table.
func StaticFooter(snap table.Snapshot) string {
	return fmt.Sprintf("page %d/%d · %d rows/page · %d collections · window %s",
		snap.Page.PageIndex+1, max(snap.Pages, 1), snap.Page.PageSize, snap.Total, snap.Window.Label())
}
