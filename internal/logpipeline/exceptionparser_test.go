package logpipeline

import "testing"

func TestExceptionBlockParserCompleteBlock(t *testing.T) {
	p := NewExceptionBlockParser()
	lines := []string{
		"══╡ EXCEPTION CAUGHT BY WIDGETS LIBRARY ╞═══════════════════════",
		"A RenderFlex overflowed by 12 pixels.",
		"The relevant error-causing widget was:",
		"Column",
		"lib/main.dart:42:10",
		"When the exception was thrown, this was the stack:",
		"#0      RenderFlex.performLayout (package:flutter/src/rendering/flex.dart:845:13)",
		"════════════════════════════════════════════════════",
	}

	completed := 0
	var block ExceptionBlock
	for _, l := range lines {
		if b, ok := p.Feed(l); ok {
			completed++
			block = b
		}
	}

	if completed != 1 {
		t.Fatalf("expected exactly one completed block, got %d", completed)
	}
	if block.Library != "WIDGETS LIBRARY" {
		t.Fatalf("library = %q", block.Library)
	}
	if block.WidgetName != "Column" {
		t.Fatalf("widget name = %q", block.WidgetName)
	}
	if len(block.StackTraceFrames) != 1 {
		t.Fatalf("expected 1 stack frame, got %d", len(block.StackTraceFrames))
	}
}

func TestExceptionBlockParserForceCompletesAtCap(t *testing.T) {
	p := NewExceptionBlockParser()
	p.Feed("══╡ EXCEPTION CAUGHT BY RENDERING LIBRARY ╞═══")

	completions := 0
	for i := 0; i < MaxExceptionBlockLines+10; i++ {
		if _, ok := p.Feed("filler line"); ok {
			completions++
		}
	}
	if completions != 1 {
		t.Fatalf("expected exactly one forced completion, got %d", completions)
	}
}

func TestExceptionBlockParserFlushReturnsPartial(t *testing.T) {
	p := NewExceptionBlockParser()
	p.Feed("══╡ EXCEPTION CAUGHT BY WIDGETS LIBRARY ╞═══")
	p.Feed("partial description")

	block, ok := p.Flush()
	if !ok {
		t.Fatal("expected flush to return the partial block")
	}
	if block.Library != "WIDGETS LIBRARY" {
		t.Fatalf("library = %q", block.Library)
	}

	// A second flush with nothing pending returns false.
	if _, ok := p.Flush(); ok {
		t.Fatal("expected second flush to be a no-op")
	}
}

func TestAnotherExceptionOneLiner(t *testing.T) {
	p := NewExceptionBlockParser()
	block, ok := p.Feed("Another exception was thrown: setState() called after dispose()")
	if !ok {
		t.Fatal("expected the one-liner to complete immediately")
	}
	if len(block.Description) != 1 || block.Description[0] != "setState() called after dispose()" {
		t.Fatalf("description = %v", block.Description)
	}
}

// Invariant: the number of LogEntrys emitted for exception input equals the
// number of complete-or-force-completed blocks (spec §8 invariant 9).
func TestExceptionCountMatchesEmittedEntries(t *testing.T) {
	pipeline := NewPipeline(nil)
	lines := []string{
		"══╡ EXCEPTION CAUGHT BY WIDGETS LIBRARY ╞═══",
		"first exception body",
		"════════════",
		"plain log line",
		"══╡ EXCEPTION CAUGHT BY GESTURE LIBRARY ╞═══",
		"second exception body",
		"════════════",
	}

	emitted := 0
	exceptionEntries := 0
	for _, l := range lines {
		if entry, ok := pipeline.Feed(l, true); ok {
			emitted++
			if entry.Level == Error {
				exceptionEntries++
			}
		}
	}

	if exceptionEntries != 2 {
		t.Fatalf("expected 2 exception entries, got %d (emitted=%d)", exceptionEntries, emitted)
	}
}
