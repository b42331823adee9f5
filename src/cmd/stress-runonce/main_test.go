package main

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenshots/src/singleinstance"
)

func TestNewRootCmdDefaults(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{}))
	assert.Equal(t, 50, opts.n)
	assert.Equal(t, singleinstance.CaptureTimeout, opts.deadline)
}

func TestNewRootCmdCustomFlags(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--n", "3", "--deadline", "7s"}))
	assert.Equal(t, 3, opts.n)
	assert.Equal(t, 7*time.Second, opts.deadline)
}

// firstWins accepts the first request and reports busy afterwards.
type firstWins struct{ taken *atomic.Bool }

func (f firstWins) TryCapture(ctx context.Context) (bool, error) {
	if f.taken.CompareAndSwap(false, true) {
		return true, nil
	}
	return true, errors.New("resident: busy, a capture is already open")
}

func TestHammerTallies(t *testing.T) {
	var taken atomic.Bool
	got := hammer(stressOptions{n: 10, deadline: time.Second}, func() captureClient { return firstWins{&taken} })

	assert.EqualValues(t, 1, got.ok)
	assert.EqualValues(t, 9, got.busy)
	assert.Zero(t, got.err)

	var buf bytes.Buffer
	report(&buf, 10, got)
	assert.Equal(t, "launched=10 ok=1 busy=9 no-resident=0 err=0\n", buf.String())
}
