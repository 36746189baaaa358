package ui

import (
	"github.com/charmbracelet/lipgloss"
)

type uiStyles struct {
	bar       lipgloss.Style
	panel     lipgloss.Style
	sidebar   lipgloss.Style
	status    lipgloss.Style
	active    lipgloss.Style
	inactive  lipgloss.Style
	muted     lipgloss.Style
	accent    lipgloss.Style
	warn      lipgloss.Style
	good      lipgloss.Style
	bad       lipgloss.Style
	canvas    lipgloss.Style
	logo      lipgloss.Style
	meta      lipgloss.Style
	chipLabel lipgloss.Style
	chipValue lipgloss.Style
	gap       lipgloss.Style
}

const baseBGHex = "#0B1120"

func buildStyles(noColor bool) uiStyles {
	if noColor {
		border := lipgloss.Border{
			Top: "-", Bottom: "-", Left: "|", Right: "|",
			TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
		}
		plain := lipgloss.NewStyle()
		return uiStyles{
			bar:       plain.Padding(0, 1).Border(border),
			panel:     plain.Padding(1, 1).Border(border),
			sidebar:   plain.Padding(1, 1).Border(border),
			status:    plain.Padding(0, 1).Border(border),
			active:    lipgloss.NewStyle().Bold(true),
			inactive:  plain,
			muted:     plain,
			accent:    plain,
			warn:      plain,
			good:      plain,
			bad:       plain,
			canvas:    plain,
			logo:      plain,
			meta:      plain,
			chipLabel: plain,
			chipValue: plain,
			gap:       plain,
		}
	}

	border := lipgloss.Border{
		Top: "─", Bottom: "─", Left: "│", Right: "│",
		TopLeft: "╭", TopRight: "╮", BottomLeft: "╰", BottomRight: "╯",
	}

	primary := lipgloss.Color("#38BDF8")
	accent := lipgloss.Color("#F59E0B")
	muted := lipgloss.Color("#94A3B8")
	bg := lipgloss.Color(baseBGHex)
	good := lipgloss.Color("#22C55E")
	warn := lipgloss.Color("#FBBF24")
	bad := lipgloss.Color("#EF4444")

	return uiStyles{
		bar:       lipgloss.NewStyle().Padding(0, 2).Border(border).BorderForeground(primary).Background(bg),
		panel:     lipgloss.NewStyle().Padding(1, 2).Border(border).BorderForeground(primary).Background(bg),
		sidebar:   lipgloss.NewStyle().Padding(1, 2).Border(border).BorderForeground(accent).Background(bg),
		status:    lipgloss.NewStyle().Padding(0, 2).Border(border).BorderForeground(accent).Background(bg),
		active:    lipgloss.NewStyle().Bold(true).Foreground(primary).Background(bg).Padding(0, 1),
		inactive:  lipgloss.NewStyle().Foreground(muted).Background(bg),
		muted:     lipgloss.NewStyle().Foreground(muted).Background(bg),
		accent:    lipgloss.NewStyle().Foreground(accent).Bold(true).Background(bg),
		warn:      lipgloss.NewStyle().Foreground(warn).Bold(true).Background(bg),
		good:      lipgloss.NewStyle().Foreground(good).Background(bg),
		bad:       lipgloss.NewStyle().Foreground(bad).Background(bg),
		canvas:    lipgloss.NewStyle().Foreground(lipgloss.Color("#E2E8F0")).Background(bg).Padding(1, 2),
		logo:      lipgloss.NewStyle().Padding(1, 2).Background(bg),
		meta:      lipgloss.NewStyle().Foreground(muted).Background(bg),
		chipLabel: lipgloss.NewStyle().Foreground(muted).Bold(true).Background(bg),
		chipValue: lipgloss.NewStyle().Foreground(primary).Background(bg),
		gap:       lipgloss.NewStyle().Background(bg),
	}
}

func renderLogo(styles uiStyles) string {
	logo := []string{
		" ██████╗ ██████╗ ██╗   ██╗██████╗ ██╗███████╗██████╗ ",
		"██╔════╝██╔═══██╗██║   ██║██╔══██╗██║██╔════╝██╔══██╗",
		"██║     ██║   ██║██║   ██║██████╔╝██║█████╗  ██████╔╝",
		"██║     ██║   ██║██║   ██║██╔══██╗██║██╔══╝  ██╔══██╗",
		"╚██████╗╚██████╔╝╚██████╔╝██║  ██║██║███████╗██║  ██║",
		" ╚═════╝ ╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝╚══════╝╚═╝  ╚═╝",
		"            lan message drop · tcp receiver           ",
	}
	colored := make([]string, 0, len(logo))
	for _, line := range logo {
		colored = append(colored, styles.accent.Render(line))
	}
	out := colored[0]
	for _, line := range colored[1:] {
		out += "\n" + line
	}
	return out
}

func renderHeaderMeta(styles uiStyles) string {
	left := styles.active.Render("Courier")
	right := styles.meta.Render("message receiver console · tcp ingestion · postgres")
	return left + styles.gap.Render("  ") + right
}
