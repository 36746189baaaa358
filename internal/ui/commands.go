package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"courier/internal/engine"
	"courier/internal/model"
)

func sendCommand(m Model, cmdType engine.CommandType, messageSeq int64) tea.Cmd {
	respCh := make(chan engine.CommandResult, 1)
	m.engine.UICmdCh() <- engine.Command{
		Type:       cmdType,
		MessageSeq: messageSeq,
		RespCh:     respCh,
	}
	return waitForCommandResult(respCh)
}

func sendDeleteSelected(m Model) tea.Cmd {
	msg, ok := selectedMessage(m)
	if !ok {
		return nil
	}
	return sendCommand(m, engine.CommandDeleteMessage, msg.Seq)
}

func selectedMessage(m Model) (model.Message, bool) {
	if len(m.snapshot.Messages) == 0 || m.selected < 0 || m.selected >= len(m.snapshot.Messages) {
		return model.Message{}, false
	}
	return m.snapshot.Messages[m.selected], true
}

func requestSnapshot(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		eng.SnapshotReqCh() <- engine.SnapshotRequest{}
		return snapshotMsg(<-eng.SnapshotRespCh())
	}
}

func waitForCommandResult(ch <-chan engine.CommandResult) tea.Cmd {
	return func() tea.Msg {
		return cmdResultMsg(<-ch)
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func nextView(view string) string {
	switch view {
	case "dashboard":
		return "messages"
	case "messages":
		return "log"
	default:
		return "dashboard"
	}
}
