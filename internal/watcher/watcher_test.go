package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flutter-demon/fdemon/internal/protocol"
)

type fakeSink struct {
	messages chan protocol.Message
}

func (f *fakeSink) Send(m protocol.Message) { f.messages <- m }

func TestIsWatchedHonorsExtensionsAndPubspec(t *testing.T) {
	assert.True(t, isWatched("main.dart"))
	assert.True(t, isWatched("analysis_options.yaml"))
	assert.True(t, isWatched("config.yml"))
	assert.True(t, isWatched("pubspec.yaml"))
	assert.False(t, isWatched("README.md"))
	assert.False(t, isWatched("main.dart.js"))
}

func TestRunEmitsFileChangedOnModification(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "lib", "main.dart")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte("void main() {}"), 0o644))

	sink := &fakeSink{messages: make(chan protocol.Message, 8)}
	w := New(dir, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the watcher time to complete its seed walk before mutating.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(target, []byte("void main() { print(1); }"), 0o644))

	select {
	case msg := <-sink.messages:
		assert.Equal(t, protocol.MsgFileChanged, msg.Type)
		payload, err := protocol.GetPayload[protocol.FileChangedPayload](msg)
		require.NoError(t, err)
		assert.Equal(t, target, payload.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for file-changed notification")
	}
}

func TestRunCoalescesBurstsWithinDebounceWindow(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "main.dart")
	require.NoError(t, os.WriteFile(target, []byte("a"), 0o644))

	sink := &fakeSink{messages: make(chan protocol.Message, 8)}
	w := New(dir, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(target, []byte("b"), 0o644))
	time.Sleep(DebounceInterval / 2)
	require.NoError(t, os.WriteFile(target, []byte("c"), 0o644))

	select {
	case <-sink.messages:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first notification")
	}

	select {
	case msg := <-sink.messages:
		t.Fatalf("unexpected second notification within debounce window: %+v", msg)
	case <-time.After(DebounceInterval):
	}
}
