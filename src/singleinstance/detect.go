package singleinstance

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"time"
)

const detectTimeout = 300 * time.Millisecond

// DetectResidentPort returns the first port in range whose listener answers PING.
func DetectResidentPort(ctx context.Context) (int, bool) {
	addr, ok := findResident(ctx)
	if !ok {
		return 0, false
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return 0, false
	}
	return n, true
}

// findResident scans the port range. Each probe is capped at detectTimeout
// so a long caller deadline does not stall the scan on a silent port.
func findResident(ctx context.Context) (string, bool) {
	timeout := min(timeoutFrom(ctx, detectTimeout), detectTimeout)
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		if ctx.Err() != nil {
			return "", false
		}
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if ping(addr, timeout) {
			return addr, true
		}
	}
	return "", false
}

func timeoutFrom(ctx context.Context, fallback time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return fallback
}

func ping(addr string, timeout time.Duration) bool {
	resp, err := exchange(addr, pingRequest, timeout)
	return err == nil && resp == pongResponse
}

// exchange writes one request line and reads one response line.
func exchange(addr, line string, timeout time.Duration) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(line); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return bufio.NewReader(conn).ReadString('\n')
}
