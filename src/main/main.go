package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"screenshots/src/config"
	"screenshots/src/display"
	"screenshots/src/eventloop"
	"screenshots/src/filesave"
	"screenshots/src/logutil"
	"screenshots/src/messages"
	"screenshots/src/runtimeinit"
	"screenshots/src/session"
	"screenshots/src/singleinstance"
	"screenshots/src/surface"
	"screenshots/src/tray"
)

type mainOptions struct {
	runOnce     bool
	language    string
	surfaceAddr string
	logLevel    string
}

func main() {
	// Ensure DPI awareness before querying any display metrics
	enableDPIAwareness()

	// The tray's native loop must own the main thread
	runtime.LockOSThread()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"screenshots"}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screenshots",
		Short:         "Resident screen capture with region selection and annotation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.runOnce {
				return runOnce(*opts)
			}
			return runResident(*opts)
		},
	}

	cmd.Flags().BoolVar(&opts.runOnce, "run-once", false, "Start one capture (on the resident if running) and exit")
	cmd.Flags().StringVar(&opts.language, "language", "", "UI language as a BCP 47 tag (overrides LANGUAGE)")
	cmd.Flags().StringVar(&opts.surfaceAddr, "surface-addr", "", "Listen address for the rendering surface (overrides SURFACE_ADDR)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "trace|debug|info|warn|error (overrides LOG_LEVEL)")

	return cmd
}

// normalizeLegacyArgs maps single-dash long flags to their GNU form.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	normalized := make([]string, len(args))
	copy(normalized, args)

	long := []string{"run-once", "language", "surface-addr", "log-level"}
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range long {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}
	return normalized
}

func (o mainOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		LanguageOverride:    o.language,
		SurfaceAddrOverride: o.surfaceAddr,
		LogLevelOverride:    o.logLevel,
	}
}

// runOnceTimeout covers the resident waiting for its surface before it
// answers a delegated capture.
const runOnceTimeout = eventloop.DefaultStartTimeout + 5*time.Second

type captureClient interface {
	TryCapture(ctx context.Context) (bool, error)
}

// handleRunOnceWithDelegation asks a running resident to capture and falls
// back to a standalone capture when there is none or it cannot be reached.
func handleRunOnceWithDelegation(ctx context.Context, client captureClient, fallback func() error) error {
	log := logutil.WithComponent("main")
	delegated, err := client.TryCapture(ctx)
	switch {
	case delegated && err == nil:
		log.Info().Msg("delegated capture to resident")
		return nil
	case delegated:
		// the resident answered; its error is the outcome
		return fmt.Errorf("resident: %w", err)
	case err != nil:
		log.Warn().Err(err).Msg("delegation failed, running standalone")
	default:
		log.Info().Msg("no resident detected, running standalone")
	}
	return fallback()
}

func runOnce(opts mainOptions) error {
	// Load .env early so SINGLEINSTANCE_PORT_* apply to the delegation scan
	_, _ = config.LoadWithOptions(opts.loadOptions())

	ctx, cancel := context.WithTimeout(context.Background(), runOnceTimeout)
	defer cancel()
	return handleRunOnceWithDelegation(ctx, singleinstance.NewClient(), func() error {
		return serve(opts, true)
	})
}

func runResident(opts mainOptions) error {
	// Load .env early so SINGLEINSTANCE_PORT_* are available for pre-flight
	_, _ = config.LoadWithOptions(opts.loadOptions())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	port, found := singleinstance.DetectResidentPort(ctx)
	cancel()
	if found {
		fmt.Printf("one is already running on port %d\n", port)
		return fmt.Errorf("resident already running on port %d", port)
	}
	return serve(opts, false)
}

// surfaceBridge routes surface traffic: readiness straight to the
// controller, outcomes through the loop.
type surfaceBridge struct {
	ctrl *session.Controller
	loop *eventloop.Loop
}

func (b *surfaceBridge) OnReady() { b.ctrl.MarkReady() }

func (b *surfaceBridge) OnMessage(msg messages.Message) { b.loop.Post(msg) }

// serve runs the controller. once runs a single capture without tray,
// hotkey or run-once endpoint and returns when it ends.
func serve(opts mainOptions, once bool) error {
	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:  opts.loadOptions(),
		SetupLogging: logutil.Setup,
	})
	if err != nil {
		return err
	}
	cfg := rt.Config
	log := logutil.WithComponent("main")
	logDisplays()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge := &surfaceBridge{}
	srv := surface.NewServer(cfg.SurfaceDir, bridge)

	var prompter filesave.Prompter = srv
	if native, ok := filesave.Native(); ok {
		prompter = native
	}
	saveDir := cfg.SaveDir
	if saveDir == "" {
		saveDir = filesave.DefaultDir(nil)
	}

	ctrl := session.New(session.Options{
		Lang:         rt.Lang,
		SingleWindow: cfg.SingleWindow,
		Window:       srv.Window(),
		Prompter:     prompter,
		SaveDir:      saveDir,
	})
	var resident singleinstance.Server
	if !once {
		resident = singleinstance.NewServer()
	}
	loop := eventloop.New(ctrl, resident)
	bridge.ctrl, bridge.loop = ctrl, loop

	go func() {
		if err := srv.Serve(ctx, cfg.SurfaceAddr); err != nil {
			log.Error().Err(err).Msg("surface server stopped")
			stop()
		}
	}()

	if once {
		loop.SetExitWhenIdle(true)
		loop.Trigger("run-once")
		err := loop.Run(ctx)
		ctrl.Close()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	if err := loop.StartHotkey(ctx, cfg.Hotkey); err != nil {
		log.Warn().Err(err).Msg("hotkey unavailable, use the tray or --run-once")
	}
	tooltip := fmt.Sprintf("Screenshots - Press %s to capture", cfg.Hotkey)
	loop.SetTooltipFunc(tray.UpdateTooltip)

	loopErr := make(chan error, 1)
	go func() {
		err := loop.Run(ctx)
		ctrl.Close()
		tray.Quit()
		loopErr <- err
	}()

	tray.Run(tray.Options{
		Tooltip:   tooltip,
		OnCapture: func() { loop.Trigger("tray") },
		OnQuit:    stop,
	})
	stop()

	if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("event loop stopped: %w", err)
	}
	return nil
}

func logDisplays() {
	log := logutil.WithComponent("display")
	monitors := display.NewPlatformScreen().Monitors()
	log.Info().Int("count", len(monitors)).Msg("displays detected")
	for _, m := range monitors {
		log.Debug().
			Int("id", m.ID).
			Str("bounds", m.Bounds.String()).
			Float64("scale", m.Scale).
			Msg("display")
	}
}
