package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/flutter-demon/fdemon/internal/audit"
	"github.com/flutter-demon/fdemon/internal/config"
	"github.com/flutter-demon/fdemon/internal/devtools"
	"github.com/flutter-demon/fdemon/internal/emitter"
	"github.com/flutter-demon/fdemon/internal/engine"
	"github.com/flutter-demon/fdemon/internal/logging"
	"github.com/flutter-demon/fdemon/internal/metrics"
	"github.com/flutter-demon/fdemon/internal/protocol"
	"github.com/flutter-demon/fdemon/internal/supervisor"
	"github.com/flutter-demon/fdemon/internal/tui"
	"github.com/flutter-demon/fdemon/internal/vmservice"
	"github.com/flutter-demon/fdemon/internal/watcher"
)

var metricsAddr string

var rootCmd = &cobra.Command{
	Use:   "fdemon [PATH]",
	Short: "fdemon drives concurrent flutter run --machine sessions",
	Long:  "fdemon is a session orchestrator for Flutter development: it supervises one or more flutter run --machine subprocesses and their Dart VM Service connections from a single terminal, as a TUI when attached to one and as an NDJSON stream otherwise.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (disabled if empty)")
}

// Execute runs the root command. It is the sole entry point main calls.
func Execute() error {
	return rootCmd.Execute()
}

func runRoot(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	repoPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("fdemon: %w", err)
	}

	cfg, err := config.Load(repoPath)
	if err != nil {
		return fmt.Errorf("fdemon: failed to load config: %w", err)
	}

	logger := logging.Default()
	auditLog, err := audit.New(repoPath)
	if err != nil {
		return fmt.Errorf("fdemon: failed to open audit log: %w", err)
	}
	defer auditLog.Close()

	collector := metrics.New()
	if metricsAddr != "" {
		go serveMetrics(metricsAddr, collector, logger)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	headless := !isatty.IsTerminal(os.Stdout.Fd())

	events := make(chan protocol.EngineEvent, 256)
	emitterEvents := make(chan protocol.EngineEvent, 256)
	go forwardEvents(ctx, events, auditLog, emitterEvents, headless)

	eng := engine.New(engine.DefaultConfig(), events, nil, collector, logger)

	vm := vmservice.New(eng)
	dt := devtools.New(vm, eng)
	sup := supervisor.New(eng)
	devices := supervisor.NewDeviceDiscoverer()

	dispatcher := engine.NewDispatcher(sup, vm, dt, devices, eng.MessageChan())
	eng.SetDispatcher(dispatcher)

	state := eng.State()
	state.Config = cfg
	state.Settings = engine.Settings{
		AutoRestore: cfg.GetAutoRestore(),
		MinimalMode: cfg.GetMinimalMode(),
	}
	state.Tools = detectTools()
	state.Startup = engine.StartupReady

	fw := watcher.New(repoPath, eng)
	go fw.Run(ctx)

	eng.Start(ctx)
	defer func() {
		if err := eng.Stop(); err != nil {
			logger.Error("engine shutdown failed", "error", err)
		}
	}()

	if !headless {
		app := tui.NewApp(ctx, eng, cfg, logger)
		return app.Run()
	}

	em := emitter.New(os.Stdout, logger)
	return em.Run(ctx, emitterEvents)
}

// forwardEvents drains the engine's single broadcast channel into the
// audit trail on every event, and additionally relays to emitterEvents
// when running headless. The TUI renders AppState snapshots between
// ticks and never consumes the broadcast itself (internal/tui), so the
// audit trail is the events channel's only consumer in TUI mode.
func forwardEvents(ctx context.Context, events <-chan protocol.EngineEvent, auditLog *audit.Logger, emitterEvents chan<- protocol.EngineEvent, headless bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			recordAuditEvent(auditLog, evt)
			if headless {
				select {
				case emitterEvents <- evt:
				default:
				}
			}
		}
	}
}

func recordAuditEvent(auditLog *audit.Logger, evt protocol.EngineEvent) {
	switch evt.Type {
	case protocol.EventSessionCreated:
		if snap, ok := evt.Payload.(protocol.SessionSnapshot); ok {
			auditLog.LogSessionCreated(string(snap.ID), snap.DeviceID, true, nil)
		}
	case protocol.EventSessionRemoved:
		auditLog.LogSessionRemoved(string(evt.Metadata.SessionID), true, nil)
	case protocol.EventVmConnectionChanged:
		if p, ok := evt.Payload.(protocol.VmConnectionChangedPayload); ok {
			var vmErr error
			if p.Error != "" {
				vmErr = errors.New(p.Error)
			}
			auditLog.LogVmConnectionChange(string(evt.Metadata.SessionID), p.Connected, vmErr)
		}
	}
}

func detectTools() engine.ToolAvailability {
	avail := engine.ToolAvailability{}
	if path, err := exec.LookPath("flutter"); err == nil {
		avail.FlutterFound = true
		avail.FlutterPath = path
	}
	if path, err := exec.LookPath("dart"); err == nil {
		avail.DartFound = true
		avail.DartPath = path
	}
	return avail
}

func serveMetrics(addr string, collector *metrics.Collector, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server exited", "error", err)
	}
}
