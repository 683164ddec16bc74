package logpipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxExceptionBlockLines force-completes a block to prevent unbounded
// buffering if a footer is never seen (spec §4.1).
const MaxExceptionBlockLines = 500

var (
	exceptionHeaderRe = regexp.MustCompile(`^═+╡\s*EXCEPTION CAUGHT BY (.+?)\s*╞═+`)
	footerRe          = regexp.MustCompile(`^═{10,}$`)
	stackFrameRe      = regexp.MustCompile(`^#(\d+)\s+(\S+)\s*(?:\((.*)\))?`)
	anotherExceptionRe = regexp.MustCompile(`^Another exception was thrown: (.*)$`)
)

const (
	widgetMarker = "The relevant error-causing widget was:"
	stackMarker  = "When the exception was thrown, this was the stack:"
)

type parserState int

const (
	stateIdle parserState = iota
	stateInBody
	stateInStackTrace
)

// ExceptionBlock is a complete framework exception assembled from a run of
// stripped stdout/stderr lines.
type ExceptionBlock struct {
	Library          string
	Description      []string
	WidgetName       string
	WidgetLocation   string
	StackTraceRaw    []string
	StackTraceFrames []StackFrame
	LineCount        int
}

// ToLogEntry converts a completed block into its single Error-level
// LogEntry, per spec §4.1.
func (b ExceptionBlock) ToLogEntry(ts func() LogEntry) LogEntry {
	desc := strings.Join(b.Description, " ")
	if len(desc) > 120 {
		desc = desc[:120]
	}
	msg := "[EXCEPTION] " + b.Library
	if b.WidgetName != "" {
		msg += " widget=" + b.WidgetName
	}
	if desc != "" {
		msg += ": " + desc
	}
	entry := ts()
	entry.Level = Error
	entry.Source = SourceFlutter
	entry.Message = msg
	entry.Stack = b.StackTraceFrames
	return entry
}

// ExceptionBlockParser is the three-state machine described in spec §4.1.
// It owns its own partial buffer across calls to Feed.
type ExceptionBlockParser struct {
	state   parserState
	block   ExceptionBlock
	lines   int
	awaiting string // "" | "widget_name" | "widget_location"
}

// NewExceptionBlockParser returns a parser starting in the Idle state.
func NewExceptionBlockParser() *ExceptionBlockParser {
	return &ExceptionBlockParser{state: stateIdle}
}

// Feed processes one already-ANSI-stripped line. It returns a completed
// block (ok=true) when the line finishes one, either via footer or via the
// MaxExceptionBlockLines safety cap. A one-liner "Another exception was
// thrown: ..." is reported as a single-line block even outside any
// multi-line exception.
func (p *ExceptionBlockParser) Feed(line string) (ExceptionBlock, bool) {
	if p.state == stateIdle {
		if m := exceptionHeaderRe.FindStringSubmatch(line); m != nil {
			p.state = stateInBody
			p.block = ExceptionBlock{Library: m[1]}
			p.lines = 1
			return ExceptionBlock{}, false
		}
		if m := anotherExceptionRe.FindStringSubmatch(line); m != nil {
			return ExceptionBlock{Library: "", Description: []string{m[1]}}, true
		}
		return ExceptionBlock{}, false
	}

	p.lines++
	trimmed := strings.TrimRight(line, " \t")

	if footerRe.MatchString(strings.TrimSpace(line)) {
		return p.complete()
	}

	switch p.state {
	case stateInBody:
		switch p.awaiting {
		case "widget_name":
			if strings.TrimSpace(trimmed) != "" {
				p.block.WidgetName = strings.TrimSpace(trimmed)
				p.awaiting = "widget_location"
			}
		case "widget_location":
			if strings.Contains(trimmed, ":") {
				p.block.WidgetLocation = strings.TrimSpace(trimmed)
				p.awaiting = ""
			}
		default:
			if trimmed == widgetMarker {
				p.awaiting = "widget_name"
			} else if trimmed == stackMarker || stackFrameRe.MatchString(trimmed) {
				p.state = stateInStackTrace
				if stackFrameRe.MatchString(trimmed) {
					p.appendStackLine(trimmed)
				}
			} else if trimmed != "" {
				p.block.Description = append(p.block.Description, trimmed)
			}
		}
	case stateInStackTrace:
		p.appendStackLine(trimmed)
	}

	if p.lines >= MaxExceptionBlockLines {
		return p.complete()
	}
	return ExceptionBlock{}, false
}

func (p *ExceptionBlockParser) appendStackLine(line string) {
	if line == "" {
		return
	}
	p.block.StackTraceRaw = append(p.block.StackTraceRaw, line)
	if m := stackFrameRe.FindStringSubmatch(line); m != nil {
		frame := StackFrame{Function: m[2], Location: m[3]}
		if idx, err := strconv.Atoi(m[1]); err == nil {
			frame.Index = idx
		}
		p.block.StackTraceFrames = append(p.block.StackTraceFrames, frame)
	}
}

func (p *ExceptionBlockParser) complete() (ExceptionBlock, bool) {
	p.block.LineCount = p.lines
	result := p.block
	p.state = stateIdle
	p.block = ExceptionBlock{}
	p.lines = 0
	p.awaiting = ""
	return result, true
}

// Flush force-completes any partial block, for use at session exit
// (spec §4.1, §4.2 failure semantics).
func (p *ExceptionBlockParser) Flush() (ExceptionBlock, bool) {
	if p.state == stateIdle {
		return ExceptionBlock{}, false
	}
	return p.complete()
}
