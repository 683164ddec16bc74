// Package tui implements the terminal front-end: a BubbleTea program that
// renders AppState between ticks and is the sole translator from
// terminal key events into protocol.InputKey (spec §4.10, component 10).
// It never mutates AppState directly; every user action becomes a
// Message sent through Engine.Send, and the engine's single-writer loop
// applies it.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flutter-demon/fdemon/internal/config"
	"github.com/flutter-demon/fdemon/internal/engine"
	"github.com/flutter-demon/fdemon/internal/logging"
	"github.com/flutter-demon/fdemon/internal/protocol"
	"github.com/flutter-demon/fdemon/internal/session"
)

// refreshInterval is the renderer's own poll cadence, independent of the
// engine's flush-tick (Config.FlushTickInterval): it only needs to be
// fast enough that user input feels live.
const refreshInterval = 100 * time.Millisecond

// Model is the BubbleTea model driving the TUI. It holds no engine state
// of its own beyond what's needed to render between polls; State() is
// read fresh on every tickMsg (spec: "the TUI renderer ... must only
// read it between ticks").
type Model struct {
	ctx    context.Context
	engine *engine.Engine
	logger *logging.Logger
	config *config.Config

	width, height int
	ready         bool
	quitting      bool
	err           error

	deviceCursor int
}

type tickMsg time.Time

// New constructs a TUI model bound to a running engine.
func New(ctx context.Context, eng *engine.Engine, cfg *config.Config, logger *logging.Logger) Model {
	return Model{
		ctx:    ctx,
		engine: eng,
		logger: logger,
		config: cfg,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		if m.engine.State().Quitting {
			m.quitting = true
			return m, tea.Quit
		}
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		m.engine.Send(protocol.NewMessage(protocol.MsgAppStop, "", nil))
		return m, tea.Quit
	}

	state := m.engine.State()
	if state.Mode != engine.ModeNormal {
		return m.handleDialogKey(msg, state)
	}

	if msg.Type == tea.KeyRunes {
		switch string(msg.Runes) {
		case "q":
			m.engine.Send(protocol.NewMessage(protocol.MsgOpenDialog, "", protocol.OpenDialogPayload{Dialog: protocol.DialogConfirmQuit}))
			return m, nil
		case "n":
			m.engine.Send(protocol.NewMessage(protocol.MsgRequestDevices, "", nil))
			m.engine.Send(protocol.NewMessage(protocol.MsgOpenDialog, "", protocol.OpenDialogPayload{Dialog: protocol.DialogNewSession}))
			return m, nil
		case "x":
			m.engine.Send(protocol.NewMessage(protocol.MsgCloseCurrentSession, "", nil))
			return m, nil
		case "s":
			m.engine.Send(protocol.NewMessage(protocol.MsgOpenDialog, "", protocol.OpenDialogPayload{Dialog: protocol.DialogSettings}))
			return m, nil
		case "v":
			m.engine.Send(protocol.NewMessage(protocol.MsgOpenDialog, "", protocol.OpenDialogPayload{Dialog: protocol.DialogDevTools}))
			return m, nil
		}
	}

	if key, ok := translateKey(msg); ok {
		sessionID := protocol.SessionID("")
		if sel, ok := state.Sessions.Selected(); ok {
			sessionID = sel.ID
		}
		m.engine.Send(protocol.NewMessage(protocol.MsgKey, sessionID, protocol.KeyPayload{Key: key}))
	}
	return m, nil
}

func (m Model) handleDialogKey(msg tea.KeyMsg, state *engine.AppState) (tea.Model, tea.Cmd) {
	switch state.Mode {
	case engine.ModeConfirmQuit:
		switch msg.Type {
		case tea.KeyEnter:
			m.engine.Send(protocol.NewMessage(protocol.MsgDialogConfirm, "", nil))
			return m, nil
		case tea.KeyEsc:
			m.engine.Send(protocol.NewMessage(protocol.MsgDialogCancel, "", nil))
			return m, nil
		}
	case engine.ModeNewSessionDialog:
		switch msg.Type {
		case tea.KeyEsc:
			m.engine.Send(protocol.NewMessage(protocol.MsgDialogCancel, "", nil))
			return m, nil
		case tea.KeyUp:
			if m.deviceCursor > 0 {
				m.deviceCursor--
			}
			return m, nil
		case tea.KeyDown:
			if m.deviceCursor < len(state.Devices)-1 {
				m.deviceCursor++
			}
			return m, nil
		case tea.KeyEnter:
			if m.deviceCursor < len(state.Devices) {
				dev := state.Devices[m.deviceCursor]
				m.engine.Send(protocol.NewMessage(protocol.MsgSpawnSession, "", protocol.SpawnSessionPayload{
					DeviceID: dev.DeviceID,
					Name:     dev.Name,
					Config:   defaultLaunchConfig(state),
				}))
				m.engine.Send(protocol.NewMessage(protocol.MsgDialogCancel, "", nil))
			}
			return m, nil
		}
	default:
		if msg.Type == tea.KeyEsc {
			m.engine.Send(protocol.NewMessage(protocol.MsgDialogCancel, "", nil))
		}
	}
	return m, nil
}

func defaultLaunchConfig(state *engine.AppState) *protocol.LaunchConfig {
	if len(state.Settings.LaunchConfigs) > 0 {
		cfg := state.Settings.LaunchConfigs[0]
		return &cfg
	}
	return &protocol.LaunchConfig{Mode: "debug"}
}

func (m Model) View() string {
	if !m.ready {
		return "starting fdemon...\n"
	}
	if m.quitting {
		return "shutting down sessions...\n"
	}

	state := m.engine.State()
	if state.Startup == engine.StartupDiscoveringTools {
		return "detecting flutter/dart toolchain...\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(renderHeader(state, m.width)))
	b.WriteString("\n\n")

	ids := state.Sessions.SessionIDsInOrder()
	if len(ids) == 0 {
		b.WriteString("  no sessions. press 'n' to launch one.\n")
	} else {
		for i, id := range ids {
			s, ok := state.Sessions.Get(id)
			if !ok {
				continue
			}
			b.WriteString(renderSessionLine(s, i == state.Sessions.SelectedIndex()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if sel, ok := state.Sessions.Selected(); ok {
			b.WriteString(renderLogTail(sel, m.height))
		}
	}

	b.WriteString("\n")
	switch state.Mode {
	case engine.ModeNewSessionDialog:
		b.WriteString(renderNewSessionDialog(state.Devices, m.deviceCursor))
	case engine.ModeConfirmQuit:
		b.WriteString(dialogStyle.Render("quit fdemon and stop all sessions? [enter: yes] [esc: cancel]"))
	case engine.ModeSettings:
		b.WriteString(dialogStyle.Render(renderSettings(state)))
	case engine.ModeDevTools:
		b.WriteString(dialogStyle.Render(renderDevTools(state)))
	default:
		b.WriteString(footerStyle.Render("tab: switch  n: new  x: close  r: reload  R: restart  s: settings  v: devtools  q: quit"))
	}

	return b.String()
}

func renderHeader(state *engine.AppState, width int) string {
	title := fmt.Sprintf("fdemon — %d session(s)", state.Sessions.Count())
	return center(title, width)
}

func renderSessionLine(s *session.Session, selected bool) string {
	marker := "  "
	if selected {
		marker = "> "
	}
	line := fmt.Sprintf("%s%-16s %-10s %-16s vm:%v", marker, truncate(s.Name, 16), s.Phase(), s.DeviceID, s.VmConnected)
	if selected {
		return focusedStyle.Render(line)
	}
	return phaseStyle(s.Phase()).Render(line)
}

func renderLogTail(s *session.Session, height int) string {
	maxLines := height - 10
	if maxLines < 3 {
		maxLines = 3
	}
	items := s.Logs.Items()
	if len(items) > maxLines {
		items = items[len(items)-maxLines:]
	}
	var b strings.Builder
	for _, entry := range items {
		b.WriteString(fmt.Sprintf("[%s] %s\n", entry.Source, entry.Message))
	}
	return b.String()
}

func renderNewSessionDialog(devices []protocol.DeviceDescriptor, cursor int) string {
	if len(devices) == 0 {
		return dialogStyle.Render("discovering devices...  [esc: cancel]")
	}
	var b strings.Builder
	b.WriteString("select a device  [enter: launch] [esc: cancel]\n")
	for i, d := range devices {
		marker := "  "
		if i == cursor {
			marker = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s (%s)\n", marker, d.Name, d.DeviceID))
	}
	return dialogStyle.Render(b.String())
}

func renderSettings(state *engine.AppState) string {
	return fmt.Sprintf("auto-restore: %v   minimal-mode: %v   [esc: close]",
		state.Settings.AutoRestore, state.Settings.MinimalMode)
}

func renderDevTools(state *engine.AppState) string {
	status := "no widget tree fetched"
	if state.DevTools.WidgetTreeLoading {
		status = "fetching widget tree..."
	} else if state.DevTools.WidgetTree != nil {
		status = "widget tree loaded"
	}
	if state.DevTools.VMConnectionErr != "" {
		status = "error: " + state.DevTools.VMConnectionErr
	}
	return status + "   [esc: close]"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func center(s string, width int) string {
	if width <= len(s) {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	footerStyle  = lipgloss.NewStyle().Faint(true)
	focusedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dialogStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func phaseStyle(p session.Phase) lipgloss.Style {
	switch p {
	case session.Running:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	case session.Reloading, session.Restarting:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	case session.Stopping, session.Stopped:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	}
}
