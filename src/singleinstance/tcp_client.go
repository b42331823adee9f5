package singleinstance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type tcpClient struct{}

func newTcpClient() *tcpClient { return &tcpClient{} }

func (c *tcpClient) TryCapture(ctx context.Context) (bool, error) {
	addr, ok := findResident(ctx)
	if !ok {
		return false, nil
	}
	// the resident answers only after its session is open
	return true, sendCommand(addr, CommandCapture, timeoutFrom(ctx, CaptureTimeout))
}

func sendCommand(addr, cmd string, timeout time.Duration) error {
	status, err := exchange(addr, cmd+"\n", timeout)
	if err != nil {
		return fmt.Errorf("resident %s: %w", cmd, err)
	}
	switch {
	case status == successLine:
		return nil
	case strings.HasPrefix(status, errorPrefix):
		return errors.New(strings.TrimSpace(strings.TrimPrefix(status, errorPrefix)))
	default:
		return fmt.Errorf("unexpected resident response %q", strings.TrimSpace(status))
	}
}
