package protocol

// KeyKind enumerates the closed alphabet of keystrokes the engine core
// understands. The TUI front-end is the sole translator from its terminal
// library's key events into an InputKey; the core never imports a terminal
// package.
type KeyKind int

const (
	KeyChar KeyKind = iota
	KeyCtrlChar
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyEnter
	KeyEsc
	KeyTab
	KeyBackTab
	KeyBackspace
	KeyDelete
	KeyFunction
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

// InputKey is the abstract keystroke delivered to update() as Message{Key}.
type InputKey struct {
	Kind KeyKind
	// Rune holds the printable character for KeyChar/KeyCtrlChar.
	Rune rune
	// Function holds the function-key number (1..12) for KeyFunction.
	Function int
}

// Char constructs a printable-character key.
func Char(r rune) InputKey { return InputKey{Kind: KeyChar, Rune: r} }

// CtrlChar constructs a control-modified character key.
func CtrlChar(r rune) InputKey { return InputKey{Kind: KeyCtrlChar, Rune: r} }

// Function constructs a function key (F1..F12).
func Function(n int) InputKey { return InputKey{Kind: KeyFunction, Function: n} }
