// Package report renders a gate decision for humans: a per-route table of
// counts plus the itemized missing and hidden keys, so a failing build can be
// acted on without re-running anything.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tidgate/internal/gate"
	"tidgate/internal/verify"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	passStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22c55e"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#eab308"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// Renderer turns decisions into terminal output. Plain mode strips styling
// for CI logs.
type Renderer struct {
	plain bool
}

// NewRenderer creates a renderer; plain disables colors and bolding.
func NewRenderer(plain bool) *Renderer {
	return &Renderer{plain: plain}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if r.plain {
		return text
	}
	return s.Render(text)
}

// Render produces the full report for one decision.
func (r *Renderer) Render(d *gate.Decision) string {
	var sb strings.Builder

	sb.WriteString(r.style(titleStyle, fmt.Sprintf("testid gate run %s", d.RunID)))
	sb.WriteString("\n\n")
	sb.WriteString(r.renderTable(d))
	sb.WriteString("\n")

	for _, route := range d.Routes {
		r.renderRouteDetail(&sb, route)
	}

	if d.Pass {
		sb.WriteString(r.style(passStyle, "PASS") + ": all critical routes have their required testids\n")
	} else {
		sb.WriteString(r.style(failStyle, "FAIL") + ": missing testids block the gate\n")
	}
	return sb.String()
}

func (r *Renderer) renderTable(d *gate.Decision) string {
	headers := []string{"ROUTE", "PRESENT", "HIDDEN", "MISSING", "REMOTE"}
	rows := make([][]string, 0, len(d.Routes))
	for _, route := range d.Routes {
		remote := "ok"
		if route.Result.RemoteErr != "" {
			remote = "error"
		} else if route.Result.Remote == nil {
			remote = "-"
		}
		rows = append(rows, []string{
			route.Route,
			fmt.Sprintf("%d", len(route.Result.Present())),
			fmt.Sprintf("%d", len(route.Result.Hidden())),
			fmt.Sprintf("%d", len(route.Result.Missing())),
			remote,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	for i, h := range headers {
		sb.WriteString(r.cell(headerStyle, h, widths[i]))
	}
	sb.WriteString("\n")
	for _, row := range rows {
		for i, c := range row {
			sb.WriteString(r.cell(cellStyle, c, widths[i]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *Renderer) cell(s lipgloss.Style, text string, width int) string {
	padded := text + strings.Repeat(" ", width-len(text))
	if r.plain {
		return " " + padded + " "
	}
	return s.Render(padded)
}

func (r *Renderer) renderRouteDetail(sb *strings.Builder, route gate.RouteReport) {
	res := route.Result
	if len(res.Missing()) > 0 {
		sb.WriteString(r.style(failStyle, fmt.Sprintf("missing on %s:", route.Route)))
		sb.WriteString("\n")
		for _, k := range verify.SortedKeys(res.Missing()) {
			sb.WriteString(fmt.Sprintf("  - %s\n", k))
		}
	}
	if len(res.Hidden()) > 0 {
		sb.WriteString(r.style(warnStyle, fmt.Sprintf("hidden on %s (tolerated):", route.Route)))
		sb.WriteString("\n")
		for _, k := range verify.SortedKeys(res.Hidden()) {
			sb.WriteString(fmt.Sprintf("  - %s\n", k))
		}
	}
	if res.RemoteErr != "" {
		sb.WriteString(r.style(mutedStyle, fmt.Sprintf("remote verification unavailable for %s: %s", route.Route, res.RemoteErr)))
		sb.WriteString("\n")
	}
	for _, dis := range res.Disagreements {
		sb.WriteString(r.style(mutedStyle, fmt.Sprintf("disagreement on %s: %s local=%s remote=%s",
			route.Route, dis.Key, dis.Local, dis.Remote)))
		sb.WriteString("\n")
	}
}
