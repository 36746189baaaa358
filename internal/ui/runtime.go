package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"courier/internal/config"
	"courier/internal/engine"
	"courier/internal/server"
	"courier/internal/storage"
)

// Run composes the receiver: one storage gateway, one engine loop, one
// ingestion server, one TUI program. The engine goroutine is the only
// consumer of the server's notification channels.
func Run(cfg config.Settings, noColor bool) error {
	gateway := storage.New(cfg.Database)
	eng := engine.New(cfg, gateway, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !noColor {
		prevBg := termenv.BackgroundColor()
		termenv.SetBackgroundColor(termenv.RGBColor(baseBGHex))
		if prevBg != nil {
			defer termenv.SetBackgroundColor(prevBg)
		}
	}

	srv := server.New(cfg, eng.DataSink(), eng.StatusSink(), eng.ErrorSink())
	eng.AttachServer(srv.Start, srv.Stop, srv.Info)

	go func() {
		_ = eng.Run(ctx)
	}()

	p := tea.NewProgram(New(cfg, noColor, eng, cancel), tea.WithAltScreen())
	_, err := p.Run()
	srv.Stop()
	_ = gateway.Disconnect()
	return err
}
