package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screenshots/src/singleinstance"
)

type stressOptions struct {
	n        int
	deadline time.Duration
}

type captureClient interface {
	TryCapture(ctx context.Context) (bool, error)
}

type tally struct {
	ok, busy, notFound, err int32
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-runonce",
		Short:         "Stress test run-once capture delegation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := hammer(*opts, func() captureClient { return singleinstance.NewClient() })
			report(os.Stdout, opts.n, t)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", singleinstance.CaptureTimeout, "per-client timeout")

	return cmd
}

// hammer fires n concurrent capture requests. Against an idle resident
// exactly one should succeed and the rest report busy.
func hammer(opts stressOptions, newClient func() captureClient) tally {
	var wg sync.WaitGroup
	var t tally
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			delegated, err := newClient().TryCapture(ctx)
			switch {
			case err != nil && strings.Contains(strings.ToLower(err.Error()), "busy"):
				atomic.AddInt32(&t.busy, 1)
			case err != nil:
				atomic.AddInt32(&t.err, 1)
			case !delegated:
				atomic.AddInt32(&t.notFound, 1)
			default:
				atomic.AddInt32(&t.ok, 1)
			}
		}()
	}
	wg.Wait()
	return t
}

func report(w io.Writer, n int, t tally) {
	fmt.Fprintf(w, "launched=%d ok=%d busy=%d no-resident=%d err=%d\n", n, t.ok, t.busy, t.notFound, t.err)
}
