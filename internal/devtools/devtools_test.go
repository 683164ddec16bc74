package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flutter-demon/fdemon/internal/protocol"
)

type fakeVM struct {
	calls   []string
	results map[string]json.RawMessage
	err     error
}

func (f *fakeVM) Request(ctx context.Context, sessionID protocol.SessionID, method string, params interface{}) (json.RawMessage, error) {
	f.calls = append(f.calls, method)
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.results[method]; ok {
		return r, nil
	}
	return json.RawMessage(`{}`), nil
}

type fakeSink struct {
	messages []protocol.Message
}

func (f *fakeSink) Send(m protocol.Message) { f.messages = append(f.messages, m) }

func TestFetchWidgetTreeSendsFetchedMessage(t *testing.T) {
	vm := &fakeVM{results: map[string]json.RawMessage{
		"ext.flutter.inspector.getRootWidgetTree": json.RawMessage(`{"description":"root"}`),
	}}
	sink := &fakeSink{}
	p := New(vm, sink)
	sessionID := protocol.NewSessionID()

	require.NoError(t, p.FetchWidgetTree(context.Background(), sessionID))

	require.Len(t, sink.messages, 1)
	assert.Equal(t, protocol.MsgWidgetTreeFetched, sink.messages[0].Type)
}

func TestFetchWidgetTreeDisposesPriorGroupOnSecondFetch(t *testing.T) {
	vm := &fakeVM{results: map[string]json.RawMessage{
		"ext.flutter.inspector.getRootWidgetTree": json.RawMessage(`{}`),
	}}
	sink := &fakeSink{}
	p := New(vm, sink)
	sessionID := protocol.NewSessionID()

	require.NoError(t, p.FetchWidgetTree(context.Background(), sessionID))
	require.NoError(t, p.FetchWidgetTree(context.Background(), sessionID))

	disposeCalls := 0
	for _, c := range vm.calls {
		if c == "ext.flutter.inspector.disposeGroup" {
			disposeCalls++
		}
	}
	assert.Equal(t, 1, disposeCalls)
}

func TestFetchWidgetTreePropagatesRequestError(t *testing.T) {
	vm := &fakeVM{err: errors.New("boom")}
	sink := &fakeSink{}
	p := New(vm, sink)

	err := p.FetchWidgetTree(context.Background(), protocol.NewSessionID())
	assert.Error(t, err)
	assert.Empty(t, sink.messages)
}

func TestFetchLayoutDataSendsFetchedMessage(t *testing.T) {
	vm := &fakeVM{results: map[string]json.RawMessage{
		"ext.flutter.inspector.getLayoutExplorerNode": json.RawMessage(`{"size":[1,2]}`),
	}}
	sink := &fakeSink{}
	p := New(vm, sink)

	require.NoError(t, p.FetchLayoutData(context.Background(), protocol.NewSessionID()))
	require.Len(t, sink.messages, 1)
	assert.Equal(t, protocol.MsgLayoutDataFetched, sink.messages[0].Type)
}

func TestToggleOverlaySendsEnabledFlag(t *testing.T) {
	vm := &fakeVM{}
	p := New(vm, &fakeSink{})

	require.NoError(t, p.ToggleOverlay(context.Background(), protocol.NewSessionID(), "ext.flutter.debugPaint", true))
	assert.Contains(t, vm.calls, "ext.flutter.debugPaint")
}

func TestDisposeGroupsIsNoOpWhenNothingFetched(t *testing.T) {
	vm := &fakeVM{}
	p := New(vm, &fakeSink{})

	require.NoError(t, p.DisposeGroups(context.Background(), protocol.NewSessionID()))
	assert.Empty(t, vm.calls)
}

func TestDisposeGroupsDisposesBothAfterFetches(t *testing.T) {
	vm := &fakeVM{}
	sink := &fakeSink{}
	p := New(vm, sink)
	sessionID := protocol.NewSessionID()

	require.NoError(t, p.FetchWidgetTree(context.Background(), sessionID))
	require.NoError(t, p.FetchLayoutData(context.Background(), sessionID))
	require.NoError(t, p.DisposeGroups(context.Background(), sessionID))

	disposeCalls := 0
	for _, c := range vm.calls {
		if c == "ext.flutter.inspector.disposeGroup" {
			disposeCalls++
		}
	}
	assert.Equal(t, 2, disposeCalls)
}
