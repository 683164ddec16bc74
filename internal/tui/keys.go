package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/flutter-demon/fdemon/internal/protocol"
)

// translateKey is the sole place a tea.KeyMsg is converted into the
// engine's abstract InputKey (internal/protocol/inputkey.go); the engine
// core never imports a terminal library.
func translateKey(msg tea.KeyMsg) (protocol.InputKey, bool) {
	switch msg.Type {
	case tea.KeyUp:
		return protocol.InputKey{Kind: protocol.KeyArrowUp}, true
	case tea.KeyDown:
		return protocol.InputKey{Kind: protocol.KeyArrowDown}, true
	case tea.KeyLeft:
		return protocol.InputKey{Kind: protocol.KeyArrowLeft}, true
	case tea.KeyRight:
		return protocol.InputKey{Kind: protocol.KeyArrowRight}, true
	case tea.KeyEnter:
		return protocol.InputKey{Kind: protocol.KeyEnter}, true
	case tea.KeyEsc:
		return protocol.InputKey{Kind: protocol.KeyEsc}, true
	case tea.KeyTab:
		return protocol.InputKey{Kind: protocol.KeyTab}, true
	case tea.KeyShiftTab:
		return protocol.InputKey{Kind: protocol.KeyBackTab}, true
	case tea.KeyBackspace:
		return protocol.InputKey{Kind: protocol.KeyBackspace}, true
	case tea.KeyDelete:
		return protocol.InputKey{Kind: protocol.KeyDelete}, true
	case tea.KeyHome:
		return protocol.InputKey{Kind: protocol.KeyHome}, true
	case tea.KeyEnd:
		return protocol.InputKey{Kind: protocol.KeyEnd}, true
	case tea.KeyPgUp:
		return protocol.InputKey{Kind: protocol.KeyPageUp}, true
	case tea.KeyPgDown:
		return protocol.InputKey{Kind: protocol.KeyPageDown}, true
	case tea.KeyCtrlA, tea.KeyCtrlB, tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyCtrlE,
		tea.KeyCtrlF, tea.KeyCtrlG, tea.KeyCtrlH, tea.KeyCtrlJ, tea.KeyCtrlK,
		tea.KeyCtrlL, tea.KeyCtrlN, tea.KeyCtrlO, tea.KeyCtrlP, tea.KeyCtrlQ,
		tea.KeyCtrlR, tea.KeyCtrlS, tea.KeyCtrlT, tea.KeyCtrlU, tea.KeyCtrlV,
		tea.KeyCtrlW, tea.KeyCtrlX, tea.KeyCtrlY, tea.KeyCtrlZ:
		return protocol.CtrlChar(ctrlRune(msg.Type)), true
	case tea.KeyRunes, tea.KeySpace:
		if len(msg.Runes) == 0 {
			return protocol.InputKey{}, false
		}
		return protocol.Char(msg.Runes[0]), true
	case tea.KeyF1, tea.KeyF2, tea.KeyF3, tea.KeyF4, tea.KeyF5, tea.KeyF6,
		tea.KeyF7, tea.KeyF8, tea.KeyF9, tea.KeyF10, tea.KeyF11, tea.KeyF12:
		return protocol.Function(functionNumber(msg.Type)), true
	default:
		return protocol.InputKey{}, false
	}
}

// ctrlRune recovers the letter a Ctrl-modified key chord was built from.
func ctrlRune(t tea.KeyType) rune {
	ctrlLetters := map[tea.KeyType]rune{
		tea.KeyCtrlA: 'a', tea.KeyCtrlB: 'b', tea.KeyCtrlC: 'c', tea.KeyCtrlD: 'd',
		tea.KeyCtrlE: 'e', tea.KeyCtrlF: 'f', tea.KeyCtrlG: 'g', tea.KeyCtrlH: 'h',
		tea.KeyCtrlJ: 'j', tea.KeyCtrlK: 'k', tea.KeyCtrlL: 'l', tea.KeyCtrlN: 'n',
		tea.KeyCtrlO: 'o', tea.KeyCtrlP: 'p', tea.KeyCtrlQ: 'q', tea.KeyCtrlR: 'r',
		tea.KeyCtrlS: 's', tea.KeyCtrlT: 't', tea.KeyCtrlU: 'u', tea.KeyCtrlV: 'v',
		tea.KeyCtrlW: 'w', tea.KeyCtrlX: 'x', tea.KeyCtrlY: 'y', tea.KeyCtrlZ: 'z',
	}
	return ctrlLetters[t]
}

func functionNumber(t tea.KeyType) int {
	switch t {
	case tea.KeyF1:
		return 1
	case tea.KeyF2:
		return 2
	case tea.KeyF3:
		return 3
	case tea.KeyF4:
		return 4
	case tea.KeyF5:
		return 5
	case tea.KeyF6:
		return 6
	case tea.KeyF7:
		return 7
	case tea.KeyF8:
		return 8
	case tea.KeyF9:
		return 9
	case tea.KeyF10:
		return 10
	case tea.KeyF11:
		return 11
	case tea.KeyF12:
		return 12
	default:
		return 0
	}
}
