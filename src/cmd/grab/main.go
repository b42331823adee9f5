package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"screenshots/src/display"
	"screenshots/src/filesave"
	"screenshots/src/logutil"
	"screenshots/src/screenshot"
)

type cliOptions struct {
	out        string
	jsonOutput bool
	verbose    bool
	list       bool
	timeout    time.Duration
}

// deps are the collaborators the command uses, swappable in tests.
type deps struct {
	resolver interface {
		Resolve() (display.Display, error)
	}
	screen   display.Screen
	acquirer interface {
		Capture(ctx context.Context, d display.Display) ([]byte, error)
	}
	fs     afero.Fs
	stdout io.Writer
	now    func() time.Time
}

func defaultDeps() deps {
	screen := display.NewPlatformScreen()
	return deps{
		resolver: display.NewResolver(screen),
		screen:   screen,
		acquirer: screenshot.NewAcquirer(nil, nil),
		fs:       afero.NewOsFs(),
		stdout:   os.Stdout,
		now:      time.Now,
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args), defaultDeps())
}

func runWithArgs(args []string, d deps) error {
	if len(args) == 0 {
		args = []string{"grab"}
	}
	opts := &cliOptions{}
	cmd := newRootCmd(opts, d)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grab",
		Short:         "Capture the display under the pointer to a PNG without the overlay",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd.Context(), *opts, d)
		},
	}

	cmd.Flags().StringVar(&opts.out, "out", "", "Output PNG path ('-' for stdout, default: timestamped name)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print a JSON summary instead of the path")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().BoolVar(&opts.list, "list", false, "List displays as JSON and exit")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Capture timeout")

	return cmd
}

func runWithOptions(ctx context.Context, opts cliOptions, d deps) error {
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logutil.Setup(false, level)

	if opts.list {
		return listDisplays(d)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	start := d.now()
	target, err := d.resolver.Resolve()
	if err != nil {
		return fmt.Errorf("resolve display: %w", err)
	}
	data, err := d.acquirer.Capture(ctx, target)
	if err != nil {
		return fmt.Errorf("capture display %d: %w", target.ID, err)
	}

	if opts.out == "-" {
		_, err := d.stdout.Write(data)
		return err
	}
	path := opts.out
	if path == "" {
		path = filesave.Filename(start)
	}
	if err := filesave.Write(d.fs, path, data); err != nil {
		return err
	}
	return outputResult(d.stdout, GrabResult{
		Path:     path,
		Display:  target,
		Bytes:    len(data),
		Duration: d.now().Sub(start).Seconds(),
	}, opts.jsonOutput)
}

type GrabResult struct {
	Path     string          `json:"path"`
	Display  display.Display `json:"display"`
	Bytes    int             `json:"bytes"`
	Duration float64         `json:"duration_seconds"`
}

func outputResult(w io.Writer, res GrabResult, jsonOutput bool) error {
	if !jsonOutput {
		_, err := fmt.Fprintln(w, res.Path)
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(res); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

func listDisplays(d deps) error {
	monitors := d.screen.Monitors()
	if len(monitors) == 0 {
		return display.ErrNoDisplays
	}
	out := make([]display.Display, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, display.Scaled(m))
	}
	encoder := json.NewEncoder(d.stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"out", "json", "verbose", "list", "timeout"} {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}
	return normalized
}
