package ui

import (
	"fmt"
	"strings"

	"courier/internal/model"
)

func renderDashboard(m Model, styles uiStyles) []string {
	srv := m.snapshot.Server
	stg := m.snapshot.Storage

	lines := []string{
		styles.accent.Render("RECEIVER"),
		"server:  " + srv.State.String() + addrSuffix(srv.Addr, srv.State),
		"storage: " + stg.State.String(),
	}
	if srv.ErrMsg != "" {
		lines = append(lines, styles.bad.Render("  "+srv.ErrMsg))
	}
	if stg.ErrMsg != "" {
		lines = append(lines, styles.bad.Render("  "+stg.ErrMsg))
	}
	lines = append(lines,
		"",
		"msgs/s  "+sparkline(m.snapshot.Stats.MsgsPerSec),
		"errors  "+sparkline(m.snapshot.Stats.ErrorsPerMin),
		"",
		styles.accent.Render("LATEST"),
	)

	latest := m.snapshot.Messages
	if len(latest) > 8 {
		latest = latest[:8]
	}
	if len(latest) == 0 {
		return append(lines, "(no messages yet)")
	}
	for _, msg := range latest {
		lines = append(lines, messageRow(msg, styles, false))
	}
	return lines
}

func renderMessages(m Model, styles uiStyles) []string {
	if len(m.snapshot.Messages) == 0 {
		return []string{"No messages received."}
	}
	lines := make([]string, 0, len(m.snapshot.Messages)+1)
	lines = append(lines, fmt.Sprintf("%d messages, newest first", len(m.snapshot.Messages)))
	viewport := m.height - 14
	if viewport < 5 {
		viewport = 5
	}
	msgs := m.snapshot.Messages
	if len(msgs) > viewport {
		msgs = msgs[:viewport]
	}
	for i, msg := range msgs {
		cursor := " "
		if i == m.selected {
			cursor = ">"
		}
		lines = append(lines, cursor+" "+messageRow(msg, styles, i == m.selected))
	}
	return lines
}

func renderActivityLog(m Model) []string {
	entries := m.snapshot.Activity
	if len(entries) == 0 {
		return []string{"(no activity yet)"}
	}
	viewport := m.height - 12
	if viewport < 5 {
		viewport = 5
	}
	end := len(entries) - m.scroll
	if end < 0 {
		end = 0
	}
	start := end - viewport
	if start < 0 {
		start = 0
	}
	return entries[start:end]
}

func messageRow(msg model.Message, styles uiStyles, selected bool) string {
	id := "   -"
	if msg.ID != 0 {
		id = fmt.Sprintf("#%3d", msg.ID)
	}
	row := fmt.Sprintf(
		"%s %s %s %s %s",
		id,
		msg.FormattedTime(),
		padRight(msg.SenderIP, 15),
		padRight(statusBadge(msg.Status), 9),
		truncateText(msg.Content, 48),
	)
	switch msg.Status {
	case model.StatusSaved:
		row = styles.good.Render(row)
	case model.StatusError, model.StatusNotSaved:
		row = styles.bad.Render(row)
	}
	if selected {
		row = styles.active.Render(row)
	}
	return row
}

func statusBadge(status model.Status) string {
	switch status {
	case model.StatusSaved:
		return "saved"
	case model.StatusError:
		return "error"
	case model.StatusNotSaved:
		return "not-saved"
	case model.StatusReceived:
		return "received"
	default:
		return "unknown"
	}
}

func addrSuffix(addr string, state model.LinkState) string {
	if addr == "" || state != model.LinkUp {
		return ""
	}
	return " on " + addr
}

func padRight(text string, width int) string {
	if len(text) >= width {
		return text
	}
	return text + strings.Repeat(" ", width-len(text))
}

func truncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

func sparkline(values []uint64) string {
	if len(values) == 0 {
		return "(no data)"
	}
	var peak uint64
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return strings.Repeat("▁", len(values))
	}
	var out strings.Builder
	for _, v := range values {
		idx := int(v * uint64(len(sparkRunes)-1) / peak)
		out.WriteRune(sparkRunes[idx])
	}
	return out.String()
}
