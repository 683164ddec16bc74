package logpipeline

import "time"

// Pipeline turns one raw stdout/stderr line into zero-or-one LogEntry,
// per the four-step routing in spec §4.1: ANSI strip, exception assembly,
// level detection with Logger-block propagation, then emission.
type Pipeline struct {
	exceptions *ExceptionBlockParser
	block      LogBlockState
	now        func() time.Time
}

// NewPipeline constructs a pipeline. now is injectable for deterministic
// tests; production callers pass time.Now.
func NewPipeline(now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{exceptions: NewExceptionBlockParser(), now: now}
}

// Feed processes one raw line (already known to be stderr or a non-JSON
// stdout line) and returns the LogEntry to append, if any.
func (p *Pipeline) Feed(line string, isStderr bool) (LogEntry, bool) {
	stripped := StripANSI(line)

	if block, ok := p.exceptions.Feed(stripped); ok {
		return block.ToLogEntry(func() LogEntry {
			return LogEntry{Timestamp: p.now()}
		}), true
	}

	// The exception parser is mid-block; it owns this line and nothing is
	// emitted until the block completes.
	if p.exceptions.state != stateIdle {
		return LogEntry{}, false
	}

	if IsBlockHeader(stripped) {
		lvl := DetectLevel(stripped)
		p.block.Open(lvl)
		return LogEntry{Timestamp: p.now(), Level: lvl, Source: sourceFor(isStderr), Message: stripped}, true
	}
	if IsBlockFooter(stripped) {
		entry := LogEntry{Timestamp: p.now(), Level: p.block.Level(), Source: sourceFor(isStderr), Message: stripped}
		p.block.Close()
		return entry, true
	}

	lvl := DetectLevel(stripped)
	if p.block.Active() {
		lvl = p.block.Level()
	}
	if stripped == "" {
		return LogEntry{}, false
	}
	return LogEntry{Timestamp: p.now(), Level: lvl, Source: sourceFor(isStderr), Message: stripped}, true
}

// Flush force-completes any partial exception block, for session-exit
// handling (spec §4.2 failure semantics).
func (p *Pipeline) Flush() (LogEntry, bool) {
	if block, ok := p.exceptions.Flush(); ok {
		return block.ToLogEntry(func() LogEntry {
			return LogEntry{Timestamp: p.now()}
		}), true
	}
	return LogEntry{}, false
}

func sourceFor(isStderr bool) Source {
	if isStderr {
		return SourceFlutter
	}
	return SourceApp
}
