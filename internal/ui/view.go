package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	styles := buildStyles(m.noColor)
	width := m.width
	if width < 0 {
		width = 0
	}
	canvasFrameWidth := styles.canvas.GetHorizontalFrameSize()
	contentWidth := width - canvasFrameWidth
	if contentWidth < 0 {
		contentWidth = 0
	}
	contentHeight := m.height - styles.canvas.GetVerticalFrameSize()
	if contentHeight < 0 {
		contentHeight = 0
	}

	innerWidth := func(outer int, style lipgloss.Style) int {
		return max(0, outer-style.GetHorizontalFrameSize())
	}

	logo := styles.logo.Width(innerWidth(contentWidth, styles.logo)).Render(renderLogo(styles))
	barWidth := innerWidth(contentWidth, styles.bar)
	chromeContent := renderHeaderMeta(styles)
	if barWidth > 0 {
		chromeContent = lipgloss.NewStyle().MaxWidth(barWidth).Render(chromeContent)
	}
	chrome := styles.bar.Width(barWidth).Render(chromeContent)

	gap := styles.gap.Render(" ")
	available := contentWidth - 2
	if available < 0 {
		available = 0
	}

	sidebarOuter := 28
	sidebarMinOuter := styles.sidebar.GetHorizontalFrameSize() + 14
	mainMinOuter := styles.panel.GetHorizontalFrameSize() + 20

	var body string
	if available < sidebarMinOuter+mainMinOuter {
		sidebar := styles.sidebar.Width(innerWidth(contentWidth, styles.sidebar)).Render(renderSidebar(m, styles))
		main := styles.panel.Width(innerWidth(contentWidth, styles.panel)).Render(renderViewContent(m, styles))
		body = lipgloss.JoinVertical(lipgloss.Left, sidebar, main)
	} else {
		if sidebarOuter > available-mainMinOuter {
			sidebarOuter = available - mainMinOuter
		}
		if sidebarOuter < sidebarMinOuter {
			sidebarOuter = sidebarMinOuter
		}
		mainOuter := available - sidebarOuter
		sidebar := styles.sidebar.Width(innerWidth(sidebarOuter, styles.sidebar)).Render(renderSidebar(m, styles))
		main := styles.panel.Width(innerWidth(mainOuter, styles.panel)).Render(renderViewContent(m, styles))
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, gap, main)
	}
	body = lipgloss.NewStyle().Width(contentWidth).Render(body)

	statusWidth := innerWidth(contentWidth, styles.status)
	statusContent := renderStatus(m, styles)
	if statusWidth > 0 {
		statusContent = lipgloss.NewStyle().MaxWidth(statusWidth).Render(statusContent)
	}
	status := styles.status.Width(statusWidth).Render(statusContent)

	layout := lipgloss.JoinVertical(lipgloss.Left, logo, chrome, body, status)
	canvas := styles.canvas.Width(contentWidth)
	if m.height > 0 {
		canvas = canvas.Height(contentHeight)
	}
	return canvas.Render(layout)
}

func renderSidebar(m Model, styles uiStyles) string {
	srv := m.snapshot.Server
	stg := m.snapshot.Storage
	lines := []string{
		styles.accent.Render("VIEWS"),
		viewLine(m, styles, "dashboard"),
		viewLine(m, styles, "messages"),
		viewLine(m, styles, "log"),
		"",
		styles.accent.Render("LINKS"),
		linkLine(styles, "server", srv.State.String()),
		linkLine(styles, "storage", stg.State.String()),
		"",
		styles.accent.Render("TOTALS"),
		styles.good.Render(fmt.Sprintf("received: %d", m.snapshot.TotalReceived)),
		styles.good.Render(fmt.Sprintf("saved:    %d", m.snapshot.TotalSaved)),
		styles.bad.Render(fmt.Sprintf("failed:   %d", m.snapshot.TotalFailed)),
		styles.muted.Render(fmt.Sprintf("stored:   %d", stg.StoredCount)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderViewContent(m Model, styles uiStyles) string {
	lines := []string{}
	if m.lastErr != "" {
		lines = append(lines, styles.bad.Render("error: "+m.lastErr), "")
	}
	if m.confirmMode {
		prompt := styles.warn.Render("Clear all messages? (y/n) ")
		lines = append(lines, prompt)
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	switch m.view {
	case "dashboard":
		lines = append(lines, renderDashboard(m, styles)...)
	case "messages":
		lines = append(lines, renderMessages(m, styles)...)
	case "log":
		lines = append(lines, renderActivityLog(m)...)
	default:
		lines = append(lines, "Unknown view.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderStatus(m Model, styles uiStyles) string {
	key := func(combo, desc string) string {
		return styles.accent.Render(combo) + styles.muted.Render(" "+desc)
	}
	parts := []string{
		key("tab", "views"),
		key("s", "server"),
		key("d", "storage"),
		key("r", "refresh"),
		key("q", "quit"),
	}
	if m.view == "messages" {
		parts = append(parts, key("x", "delete"), key("X", "clear"))
	}
	status := strings.Join(parts, styles.gap.Render("  "))
	status += styles.muted.Render("  | view: " + strings.ToUpper(m.view))
	if addr := m.snapshot.Server.Addr; addr != "" {
		status += styles.muted.Render("  | bind: " + addr)
	}
	return status
}

func viewLine(m Model, styles uiStyles, view string) string {
	label := strings.ToUpper(view)
	if m.view == view {
		return styles.active.Render("[" + label + "]")
	}
	return styles.inactive.Render(" " + label + " ")
}

func linkLine(styles uiStyles, label, state string) string {
	value := styles.chipValue.Render(state)
	if state == "error" {
		value = styles.bad.Render(state)
	}
	if state == "up" {
		value = styles.good.Render(state)
	}
	return styles.chipLabel.Render(label+": ") + value
}
