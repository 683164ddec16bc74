package logpipeline

import "strings"

// LogBlockState tracks an application Logger's multi-line `┌─ … └─` block
// so that continuation lines inherit the level detected on the header line
// (spec §4.1, glossary "Logger block").
type LogBlockState struct {
	active bool
	level  Level
}

// Open marks the start of a Logger block at the given level.
func (s *LogBlockState) Open(level Level) {
	s.active = true
	s.level = level
}

// Close ends the current block, if any.
func (s *LogBlockState) Close() {
	s.active = false
}

// Active reports whether a block is currently open.
func (s *LogBlockState) Active() bool { return s.active }

// Level returns the level continuation lines should inherit.
func (s *LogBlockState) Level() Level { return s.level }

// IsBlockHeader reports whether the line opens a Logger block.
func IsBlockHeader(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "┌─")
}

// IsBlockFooter reports whether the line closes a Logger block.
func IsBlockFooter(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "└─")
}
