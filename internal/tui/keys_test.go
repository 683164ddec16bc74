package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/flutter-demon/fdemon/internal/protocol"
)

func TestTranslateKeyArrowsAndControl(t *testing.T) {
	cases := []struct {
		in   tea.KeyMsg
		want protocol.InputKey
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, protocol.InputKey{Kind: protocol.KeyArrowUp}},
		{tea.KeyMsg{Type: tea.KeyDown}, protocol.InputKey{Kind: protocol.KeyArrowDown}},
		{tea.KeyMsg{Type: tea.KeyEnter}, protocol.InputKey{Kind: protocol.KeyEnter}},
		{tea.KeyMsg{Type: tea.KeyEsc}, protocol.InputKey{Kind: protocol.KeyEsc}},
		{tea.KeyMsg{Type: tea.KeyTab}, protocol.InputKey{Kind: protocol.KeyTab}},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, protocol.InputKey{Kind: protocol.KeyBackTab}},
		{tea.KeyMsg{Type: tea.KeyCtrlR}, protocol.CtrlChar('r')},
		{tea.KeyMsg{Type: tea.KeyF5}, protocol.Function(5)},
	}
	for _, c := range cases {
		got, ok := translateKey(c.in)
		if !ok {
			t.Fatalf("translateKey(%v) reported not ok", c.in)
		}
		if got != c.want {
			t.Errorf("translateKey(%v) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestTranslateKeyRune(t *testing.T) {
	got, ok := translateKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if !ok {
		t.Fatal("expected ok for printable rune")
	}
	if got != protocol.Char('r') {
		t.Errorf("got %+v, want Char('r')", got)
	}
}

func TestTranslateKeyEmptyRunesIsNotOk(t *testing.T) {
	if _, ok := translateKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: nil}); ok {
		t.Fatal("expected not ok for empty rune slice")
	}
}
