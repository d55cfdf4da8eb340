package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/gridplanner/internal/client/models"
	"github.com/dmitrijs2005/gridplanner/internal/client/services"
	"github.com/dmitrijs2005/gridplanner/internal/client/snapshot"
	"github.com/dmitrijs2005/gridplanner/internal/common"
)

const cellWidth = 24

var (
	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Width(cellWidth).
			Height(4).
			Padding(0, 1)
	placeholderStyle = cellStyle.BorderForeground(lipgloss.Color("240")).
				Foreground(lipgloss.Color("240"))
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f39c12")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d"))
)

const timeLayout = "2006-01-02 15:04"

func cellText(c snapshot.Cell) string {
	if c.Placeholder {
		return fmt.Sprintf("#%d\n(empty)", c.Index+1)
	}
	p := c.Item.Payload
	lines := []string{fmt.Sprintf("#%d %s", c.Index+1, c.Item.ID)}
	if p.Caption != "" {
		lines = append(lines, p.Caption)
	}
	if p.ScheduledAt != nil {
		lines = append(lines, "@ "+p.ScheduledAt.Local().Format(timeLayout))
	}
	if n := len(p.ImageKeys); n > 0 {
		lines = append(lines, fmt.Sprintf("%d image(s)", n))
	}
	return strings.Join(lines, "\n")
}

func renderCell(c snapshot.Cell) string {
	if c.Placeholder {
		return placeholderStyle.Render(cellText(c))
	}
	return cellStyle.Render(cellText(c))
}

// renderGrid draws the view as rows of common.GridColumns cells.
func renderGrid(w io.Writer, view *services.GridView) {
	if view.Offline {
		fmt.Fprintln(w, bannerStyle.Render(fmt.Sprintf("offline: showing local copy from %s", view.SyncedAt.Local().Format(timeLayout))))
	}

	var rows []string
	for _, row := range snapshot.Rows(view.Cells, common.GridColumns) {
		rendered := make([]string, 0, len(row))
		for _, c := range row {
			rendered = append(rendered, renderCell(c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, rows...))

	if len(view.Anomalies) > 0 {
		fmt.Fprintln(w, bannerStyle.Render(fmt.Sprintf("%d position anomalies, run \"gridcli grid repair %s\"", len(view.Anomalies), view.ContainerID)))
		for _, a := range view.Anomalies {
			fmt.Fprintf(w, "  %s: %s at %d\n", a.Kind, a.ItemID, a.Position)
		}
	}
}

func renderContainers(w io.Writer, cs []models.Container) {
	if len(cs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no containers"))
		return
	}
	for _, c := range cs {
		fmt.Fprintf(w, "%s  %-24s %s\n", c.ID, c.Name, mutedStyle.Render(c.Permission))
	}
}

func renderShares(w io.Writer, shares []models.Share) {
	if len(shares) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("not shared"))
		return
	}
	for _, s := range shares {
		fmt.Fprintf(w, "%-20s %s  %s\n", s.GranteeName, s.Permission, mutedStyle.Render(s.CreatedAt.Local().Format(timeLayout)))
	}
}

func renderComment(w io.Writer, c models.Comment) {
	stamp := c.CreatedAt.Local().Format(timeLayout)
	if c.UpdatedAt.After(c.CreatedAt) {
		stamp += " (edited)"
	}
	fmt.Fprintf(w, "%s %s %s\n", mutedStyle.Render(c.ID), c.AuthorName, mutedStyle.Render(stamp))
	for _, line := range strings.Split(c.Content, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

func renderComments(w io.Writer, cs []models.Comment) {
	if len(cs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no comments"))
		return
	}
	for _, c := range cs {
		renderComment(w, c)
	}
}

// parseWhen accepts RFC 3339 or "YYYY-MM-DD HH:MM" in local time.
func parseWhen(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, use %q or RFC 3339: %w", s, timeLayout, common.ErrorValidation)
	}
	return t, nil
}
