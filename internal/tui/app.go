package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/flutter-demon/fdemon/internal/config"
	"github.com/flutter-demon/fdemon/internal/engine"
	"github.com/flutter-demon/fdemon/internal/logging"
)

// App wraps the BubbleTea program bound to a running engine.
type App struct {
	program *tea.Program
}

// NewApp constructs the TUI program. The engine must already be started
// (Engine.Start) before Run is called.
func NewApp(ctx context.Context, eng *engine.Engine, cfg *config.Config, logger *logging.Logger) *App {
	model := New(ctx, eng, cfg, logger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	return &App{program: program}
}

// Run blocks until the user quits or the program errors.
func (a *App) Run() error {
	if _, err := a.program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// Shutdown requests the program exit.
func (a *App) Shutdown() {
	a.program.Quit()
}
