package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"courier/internal/config"
	"courier/internal/engine"
	"courier/internal/model"
)

type tickMsg time.Time

type snapshotMsg engine.Snapshot

type cmdResultMsg engine.CommandResult

type Model struct {
	cfg      config.Settings
	noColor  bool
	engine   *engine.Engine
	cancel   context.CancelFunc
	snapshot engine.Snapshot

	view        string
	selected    int
	scroll      int
	lastErr     string
	width       int
	height      int
	confirmMode bool
}

func New(cfg config.Settings, noColor bool, eng *engine.Engine, cancel context.CancelFunc) Model {
	return Model{
		cfg:     cfg,
		noColor: noColor,
		engine:  eng,
		cancel:  cancel,
		view:    "dashboard",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(requestSnapshot(m.engine), scheduleTick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return m, nil
	case tickMsg:
		return m, tea.Batch(requestSnapshot(m.engine), scheduleTick())
	case snapshotMsg:
		m.snapshot = engine.Snapshot(typed)
		if m.selected >= len(m.snapshot.Messages) {
			m.selected = max(0, len(m.snapshot.Messages)-1)
		}
		return m, nil
	case cmdResultMsg:
		result := engine.CommandResult(typed)
		if result.Err != nil {
			m.lastErr = result.Err.Error()
		} else {
			m.lastErr = ""
		}
		return m, requestSnapshot(m.engine)
	case tea.KeyMsg:
		if m.confirmMode {
			return handleConfirmInput(m, typed)
		}
		switch typed.String() {
		case "ctrl+c", "q":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "up", "k":
			if m.view == "log" {
				m.scroll = min(m.scroll+1, max(0, len(m.snapshot.Activity)-1))
				return m, nil
			}
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.view == "log" {
				m.scroll = max(0, m.scroll-1)
				return m, nil
			}
			if m.selected < len(m.snapshot.Messages)-1 {
				m.selected++
			}
			return m, nil
		case "tab":
			m.view = nextView(m.view)
			return m, requestSnapshot(m.engine)
		case "s":
			if m.snapshot.Server.State == model.LinkUp {
				return m, sendCommand(m, engine.CommandStopServer, 0)
			}
			return m, sendCommand(m, engine.CommandStartServer, 0)
		case "d":
			if m.snapshot.Storage.State == model.LinkUp {
				return m, sendCommand(m, engine.CommandDisconnectStorage, 0)
			}
			return m, sendCommand(m, engine.CommandConnectStorage, 0)
		case "r":
			return m, sendCommand(m, engine.CommandRefresh, 0)
		case "x":
			if m.view == "messages" {
				return m, sendDeleteSelected(m)
			}
			return m, nil
		case "X":
			if m.view == "messages" {
				m.confirmMode = true
			}
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}
