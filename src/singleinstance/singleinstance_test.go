package singleinstance

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useFreePortRange(t *testing.T, port int) {
	t.Helper()
	t.Setenv("SINGLEINSTANCE_PORT_START", strconv.Itoa(port))
	t.Setenv("SINGLEINSTANCE_PORT_END", strconv.Itoa(port))
}

func startServer(t *testing.T, ctx context.Context) Server {
	t.Helper()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback port unavailable in this environment: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func TestServerClientCaptureRoundTrip(t *testing.T) {
	useFreePortRange(t, 49531)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := startServer(t, ctx)

	port, found := DetectResidentPort(ctx)
	require.True(t, found)
	assert.Equal(t, srv.Port(), port)

	type result struct {
		delegated bool
		err       error
	}
	done := make(chan result, 1)
	go func() {
		delegated, err := NewClient().TryCapture(ctx)
		done <- result{delegated, err}
	}()

	conn, err := srv.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, CommandCapture, conn.Request().Command)
	require.NoError(t, conn.RespondSuccess())
	conn.Close()

	res := <-done
	require.NoError(t, res.err)
	assert.True(t, res.delegated)
}

func TestClientReceivesResidentError(t *testing.T) {
	useFreePortRange(t, 49532)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := startServer(t, ctx)

	done := make(chan error, 1)
	go func() {
		_, err := NewClient().TryCapture(ctx)
		done <- err
	}()

	conn, err := srv.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, conn.RespondError("capture display 0:\nsource not found"))
	conn.Close()

	err = <-done
	require.Error(t, err)
	assert.Equal(t, "capture display 0: source not found", err.Error())
}

func TestClientWithoutResident(t *testing.T) {
	useFreePortRange(t, 49533)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	delegated, err := NewClient().TryCapture(ctx)
	require.NoError(t, err)
	assert.False(t, delegated)
}

func TestUnknownCommandRejected(t *testing.T) {
	useFreePortRange(t, 49534)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	startServer(t, ctx)

	err := sendCommand("127.0.0.1:49534", "STDOUT", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestPortRange(t *testing.T) {
	t.Setenv("SINGLEINSTANCE_PORT_START", "80")
	t.Setenv("SINGLEINSTANCE_PORT_END", "70000")
	start, end := getPortRange()
	assert.Equal(t, 1024, start)
	assert.Equal(t, 65535, end)

	t.Setenv("SINGLEINSTANCE_PORT_START", "50010")
	t.Setenv("SINGLEINSTANCE_PORT_END", "50000")
	start, end = getPortRange()
	assert.Equal(t, 50000, start)
	assert.Equal(t, 50010, end)

	t.Setenv("SINGLEINSTANCE_PORT_START", "")
	t.Setenv("SINGLEINSTANCE_PORT_END", "bogus")
	start, end = getPortRange()
	assert.Equal(t, defaultPortStart, start)
	assert.Equal(t, defaultPortEnd, end)
}
