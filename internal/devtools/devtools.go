// Package devtools proxies Dart VM Service inspector/layout-explorer
// service extensions: widget tree and layout data fetch, object-group
// lifecycle, debug-overlay toggles, and opening the DevTools web UI in a
// browser (spec §4.7).
package devtools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkg/browser"

	"github.com/flutter-demon/fdemon/internal/protocol"
)

const (
	widgetTreeGroup = "fdemon-inspector-1"
	layoutGroup     = "devtools-layout"
)

// MessageSink receives the fetch-completed messages DevTools produces,
// normally an *engine.Engine's Send method.
type MessageSink interface {
	Send(protocol.Message)
}

// VMServiceClient is the subset of *vmservice.Client DevTools needs to
// issue service-extension RPCs.
type VMServiceClient interface {
	Request(ctx context.Context, sessionID protocol.SessionID, method string, params interface{}) (json.RawMessage, error)
}

// Proxy implements engine.DevTools on top of a VM Service client,
// tracking each session's active inspector/layout object groups so a
// fresh fetch can dispose the prior group first (idempotent: disposing a
// nonexistent group is a no-op on the VM Service side).
type Proxy struct {
	mu     sync.Mutex
	groups map[protocol.SessionID]*activeGroups
	vm     VMServiceClient
	sink   MessageSink
}

type activeGroups struct {
	widgetTree string
	layout     string
}

// New constructs a DevTools proxy reporting fetch results through sink.
func New(vm VMServiceClient, sink MessageSink) *Proxy {
	return &Proxy{
		groups: make(map[protocol.SessionID]*activeGroups),
		vm:     vm,
		sink:   sink,
	}
}

func (p *Proxy) groupsFor(sessionID protocol.SessionID) *activeGroups {
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.groups[sessionID]
	if !ok {
		g = &activeGroups{}
		p.groups[sessionID] = g
	}
	return g
}

// FetchWidgetTree disposes the session's previous inspector group, then
// requests a fresh root widget tree under the fixed widgetTreeGroup name.
func (p *Proxy) FetchWidgetTree(ctx context.Context, sessionID protocol.SessionID) error {
	g := p.groupsFor(sessionID)
	if g.widgetTree != "" {
		p.disposeGroup(ctx, sessionID, g.widgetTree)
	}
	g.widgetTree = widgetTreeGroup

	result, err := p.vm.Request(ctx, sessionID, "ext.flutter.inspector.getRootWidgetTree", map[string]interface{}{
		"groupName":     widgetTreeGroup,
		"isSummaryTree": true,
		"withPreviews":  true,
		"fullDetails":   false,
	})
	if err != nil {
		return fmt.Errorf("devtools: fetch widget tree: %w", err)
	}

	var tree interface{}
	if err := json.Unmarshal(result, &tree); err != nil {
		return fmt.Errorf("devtools: decode widget tree: %w", err)
	}

	p.sink.Send(protocol.NewMessage(protocol.MsgWidgetTreeFetched, sessionID, protocol.WidgetTreeFetchedPayload{Tree: tree}))
	return nil
}

// FetchLayoutData disposes the session's previous layout group, then
// requests a fresh layout-explorer snapshot under the fixed layoutGroup
// name.
func (p *Proxy) FetchLayoutData(ctx context.Context, sessionID protocol.SessionID) error {
	g := p.groupsFor(sessionID)
	if g.layout != "" {
		p.disposeGroup(ctx, sessionID, g.layout)
	}
	g.layout = layoutGroup

	result, err := p.vm.Request(ctx, sessionID, "ext.flutter.inspector.getLayoutExplorerNode", map[string]interface{}{
		"groupName":    layoutGroup,
		"subtreeDepth": 1,
	})
	if err != nil {
		return fmt.Errorf("devtools: fetch layout data: %w", err)
	}

	var layout interface{}
	if err := json.Unmarshal(result, &layout); err != nil {
		return fmt.Errorf("devtools: decode layout data: %w", err)
	}

	p.sink.Send(protocol.NewMessage(protocol.MsgLayoutDataFetched, sessionID, protocol.LayoutDataFetchedPayload{Layout: layout}))
	return nil
}

// ToggleOverlay flips a boolean debug service extension, e.g.
// ext.flutter.debugPaint or ext.flutter.showPerformanceOverlay.
func (p *Proxy) ToggleOverlay(ctx context.Context, sessionID protocol.SessionID, extension string, enabled bool) error {
	_, err := p.vm.Request(ctx, sessionID, extension, map[string]interface{}{"enabled": enabled})
	if err != nil {
		return fmt.Errorf("devtools: toggle %s: %w", extension, err)
	}
	return nil
}

// DisposeGroups releases both the inspector and layout-explorer object
// groups for a session, called when the user leaves DevTools mode.
func (p *Proxy) DisposeGroups(ctx context.Context, sessionID protocol.SessionID) error {
	g := p.groupsFor(sessionID)
	if g.widgetTree != "" {
		p.disposeGroup(ctx, sessionID, g.widgetTree)
		g.widgetTree = ""
	}
	if g.layout != "" {
		p.disposeGroup(ctx, sessionID, g.layout)
		g.layout = ""
	}
	return nil
}

// disposeGroup is best-effort: disposing an already-gone group (or one
// from a session whose isolate has since restarted) is not an error
// worth surfacing.
func (p *Proxy) disposeGroup(ctx context.Context, sessionID protocol.SessionID, group string) {
	_, _ = p.vm.Request(ctx, sessionID, "ext.flutter.inspector.disposeGroup", map[string]interface{}{"objectGroup": group})
}

// OpenBrowser launches the system's default browser against url. browser
// is currently advisory only; pkg/browser picks the platform-appropriate
// opener (xdg-open, "open", or rundll32) and there is no portable way to
// force a specific one.
func (p *Proxy) OpenBrowser(ctx context.Context, url, browserBin string) error {
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("devtools: open browser: %w", err)
	}
	return nil
}
